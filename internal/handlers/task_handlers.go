package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// Readiness проверяет доступность хранилища
func (s *TaskHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	request, ok := r.Context().Value(createRequestKey).(dto.CreateTaskRequest)
	if !ok {
		logger.Error("HTTP: Нет проверенного тела запроса", nil, zap.String("path", r.URL.Path))
		responseWithError(w, http.StatusInternalServerError, service.CodeServerError, "Failed to create task")
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), request.Title, request.Color)
	if err != nil {
		handleError(w, r, err, "Failed to create task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (s *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "Failed to fetch task")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(found))
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	filter, page := parseListQuery(r.URL.Query())

	list, err := s.TaskService.ListTasks(r.Context(), filter, page)
	if err != nil {
		handleError(w, r, err, "Failed to retrieve tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(list.Tasks)),
		zap.Int("total", list.Summary.Total),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTaskListResult(list))
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	request, ok := r.Context().Value(updateRequestKey).(dto.UpdateTaskRequest)
	if !ok {
		logger.Error("HTTP: Нет проверенного тела запроса", nil, zap.String("path", r.URL.Path))
		responseWithError(w, http.StatusInternalServerError, service.CodeServerError, "Failed to update task")
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.Options()...)
	if err != nil {
		handleError(w, r, err, "Failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err, "Failed to delete task")
		return
	}

	responseNoContent(w)
}

// taskID берёт id, проверенный ValidateTaskID, иначе проверяет параметр сам
func (s *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if id, ok := r.Context().Value(taskIDKey).(uuid.UUID); ok {
		return id, true
	}

	id, ok := parseTaskID(chi.URLParam(r, "id"))
	if !ok {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", chi.URLParam(r, "id")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, service.CodeInvalidInput, msgInvalidTaskID)
		return uuid.Nil, false
	}
	return id, true
}

// parseListQuery: неверные page/limit заменяются значениями по умолчанию,
// completed истинно только для строки "true"
func parseListQuery(query url.Values) (task.Filter, task.Page) {
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	var filter task.Filter
	if query.Has("completed") {
		completed := query.Get("completed") == "true"
		filter.Completed = &completed
	}
	if color := query.Get("color"); color != "" {
		filter.Color = &color
	}
	if search := query.Get("search"); search != "" {
		filter.Search = &search
	}

	return filter, task.NewPage(page, limit)
}
