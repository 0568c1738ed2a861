package handlers

import (
	"context"

	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"github.com/google/uuid"
)

type Service interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, string, string) (*task.Task, error)
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	ListTasks(context.Context, task.Filter, task.Page) (*service.TaskList, error)
	UpdateTask(context.Context, uuid.UUID, ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
}
