package service

import (
	"context"

	"taskboard/internal/models/task"

	"github.com/google/uuid"
)

// TaskRepository - хранилище задач; GetByID, Update и Delete
// возвращают repository.ErrNotFound, если записи нет
type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	List(context.Context, task.Filter, task.Page) ([]*task.Task, error)
	Count(context.Context, task.Filter) (int, error)
	Update(context.Context, *task.Task) error
	Delete(context.Context, uuid.UUID) error
}
