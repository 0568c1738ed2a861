package service

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	rep "taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

type Summary struct {
	Total     int
	Completed int
}

type TaskList struct {
	Tasks   []*task.Task
	Filter  task.Filter
	Page    task.Page
	Summary Summary
}

func (l *TaskList) TotalPages() int {
	return l.Page.TotalPages(l.Summary.Total)
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, title, color string) (*task.Task, error) {
	newTask := &task.Task{
		Title:     title,
		Color:     color,
		Completed: false,
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.String("task_id", newTask.UUID.String()))
	return newTask, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return found, nil
}

// ListTasks возвращает страницу задач и сводку по всему отфильтрованному набору
func (s *TaskService) ListTasks(ctx context.Context, filter task.Filter, page task.Page) (*TaskList, error) {
	tasks, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	summary, err := s.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &TaskList{
		Tasks:   tasks,
		Filter:  filter,
		Page:    page,
		Summary: summary,
	}, nil
}

// Summary считает общее число и число выполненных задач, подходящих под фильтр.
// Если фильтр уже задаёт completed, второй запрос не нужен.
func (s *TaskService) Summary(ctx context.Context, filter task.Filter) (Summary, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("подсчёт задач: %w", err)
	}

	if filter.Completed != nil {
		if *filter.Completed {
			return Summary{Total: total, Completed: total}, nil
		}
		return Summary{Total: total, Completed: 0}, nil
	}

	completed := true
	completedFilter := filter
	completedFilter.Completed = &completed

	done, err := s.repo.Count(ctx, completedFilter)
	if err != nil {
		return Summary{}, fmt.Errorf("подсчёт выполненных задач: %w", err)
	}

	return Summary{Total: total, Completed: done}, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	task.Apply(existing, options...)

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.lookupError(id, err)
	}
	return existing, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.lookupError(id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(id, err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) lookupError(id uuid.UUID, err error) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound(err)
	}
	return fmt.Errorf("задача %s: %w", id.String(), err)
}
