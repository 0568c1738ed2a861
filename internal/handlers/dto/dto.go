package dto

import (
	"time"

	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title string `json:"title" validate:"required,title_max"`
	Color string `json:"color" validate:"required"`
}

// UpdateTaskRequest - все поля необязательны, nil означает "не менять"
type UpdateTaskRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitnil,title_max,notblank"`
	Color     *string `json:"color,omitempty" validate:"omitnil,notblank"`
	Completed *bool   `json:"completed,omitempty"`
}

func (r UpdateTaskRequest) Options() []task.TaskOption {
	return []task.TaskOption{
		task.WithTitle(r.Title),
		task.WithColor(r.Color),
		task.WithCompleted(r.Completed),
	}
}

type TaskResponse struct {
	UUID      uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		UUID:      t.UUID,
		Title:     t.Title,
		Color:     t.Color,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type PaginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type SummaryResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type ListTasksResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Filters    task.Filter        `json:"filters"`
	Pagination PaginationResponse `json:"pagination"`
	Summary    SummaryResponse    `json:"summary"`
}

func FromTaskListResult(list *service.TaskList) ListTasksResponse {
	return ListTasksResponse{
		Tasks:   FromTaskList(list.Tasks),
		Filters: list.Filter,
		Pagination: PaginationResponse{
			Total:      list.Summary.Total,
			Page:       list.Page.Page,
			Limit:      list.Page.Limit,
			TotalPages: list.TotalPages(),
		},
		Summary: SummaryResponse{
			Total:     list.Summary.Total,
			Completed: list.Summary.Completed,
		},
	}
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
}

// ErrorResponse - конверт ошибок обработчиков
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ValidationErrorResponse - конверт ошибок валидации тела запроса
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}
