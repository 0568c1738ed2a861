package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes возвращает таблицу маршрутов /tasks; монтируется под префиксом /api
func (s *TaskHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.ListTasks)
		r.With(ValidateCreateTask).Post("/", s.CreateTask)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(ValidateTaskID)

			r.Get("/", s.GetTask)
			r.With(ValidateUpdateTask).Put("/", s.UpdateTask)
			r.Delete("/", s.DeleteTask)
		})
	})

	return r
}
