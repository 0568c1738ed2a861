package handlers

import (
	"errors"
	"net/http"

	"taskboard/internal/logger"
	"taskboard/internal/service"

	"go.uber.org/zap"
)

// handleError отвечает клиенту за любую ошибку сервиса; внутренние детали
// только логируются
func handleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if handleBusinessError(w, err) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", message),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, service.CodeServerError, message)
}

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithError(w, statusCode, businessErr.Code, businessErr.Message)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeTaskNotFound:
		return http.StatusNotFound
	case service.CodeInvalidInput:
		return http.StatusBadRequest
	case service.CodeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
