package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgInvalidJSON      = "Invalid JSON body"
	msgInvalidTaskID    = "Invalid task ID format"
	msgCompletedNotBool = "Completed must be a boolean"
	msgBodyTooLarge     = "Request body too large"
)

// maxBodyBytes - предел тела запроса, как у express.json()
const maxBodyBytes = 100 << 10

type ctxKey string

const (
	createRequestKey ctxKey = "create_task_request"
	updateRequestKey ctxKey = "update_task_request"
	taskIDKey        ctxKey = "task_id"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}

	// title_max раскрывается в max=task.MaxTitleLength
	validate.RegisterAlias("title_max", "max="+strconv.Itoa(task.MaxTitleLength))

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	translator, found = uni.GetTranslator("en")
	if !found {
		panic("translator en not found")
	}

	addTranslation("required", "{0} is required")
	addTranslation("title_max", "{0} must be less than {1} characters")
	addTranslation("notblank", "{0} cannot be empty")
}

func addTranslation(tag, text string) {
	err := validate.RegisterTranslation(tag, translator, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, fe.Field(), fe.Param())
		return t
	})
	if err != nil {
		panic(err)
	}
}

// translate пропускает поля, для которых уже сообщили о неверном типе
func translate(err error, skip map[string]bool) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		if skip[fieldError.Field()] {
			continue
		}
		messages = append(messages, fieldError.Translate(translator))
	}
	return messages
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// readBody разбирает тело как JSON-объект; тело без JSON Content-Type
// и пустое тело считаются пустым объектом
func readBody(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if !checkContentType(r, "application/json") {
		return fields, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(&fields)
	if errors.Is(err, io.EOF) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	if fields == nil {
		// тело было литералом null
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

// decodeField заполняет target, если поле передано и не null;
// false означает, что значение не того типа
func decodeField(fields map[string]json.RawMessage, key string, target any) bool {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return true
	}
	return json.Unmarshal(raw, target) == nil
}

// decodeStrings разбирает строковые поля title и color; имена полей с неверным
// типом возвращаются вместе с сообщениями
func decodeStrings(fields map[string]json.RawMessage, title, color any) ([]string, map[string]bool) {
	messages := []string{}
	wrongType := map[string]bool{}

	if !decodeField(fields, "title", title) {
		messages = append(messages, "Title must be a string")
		wrongType["Title"] = true
	}
	if !decodeField(fields, "color", color) {
		messages = append(messages, "Color must be a string")
		wrongType["Color"] = true
	}
	return messages, wrongType
}

// readPayload отвечает 413 на слишком большое тело и 400 на неверный JSON
func readPayload(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	fields, err := readBody(w, r)
	if err == nil {
		return fields, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Warn("HTTP: Слишком большое тело запроса",
			zap.Int64("limit", tooLarge.Limit),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusRequestEntityTooLarge, service.CodeInvalidInput, msgBodyTooLarge)
		return nil, false
	}

	rejectPayload(w, r, []string{msgInvalidJSON})
	return nil, false
}

func rejectPayload(w http.ResponseWriter, r *http.Request, messages []string) {
	logger.Warn("HTTP: Ошибка валидации",
		zap.Strings("errors", messages),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))

	responseWithValidationErrors(w, messages)
}

// ValidateCreateTask собирает все нарушения в теле запроса на создание
func ValidateCreateTask(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields, ok := readPayload(w, r)
		if !ok {
			return
		}

		var request dto.CreateTaskRequest
		messages, wrongType := decodeStrings(fields, &request.Title, &request.Color)

		if err := validate.Struct(request); err != nil {
			messages = append(messages, translate(err, wrongType)...)
		}

		if len(messages) > 0 {
			rejectPayload(w, r, messages)
			return
		}

		ctx := context.WithValue(r.Context(), createRequestKey, request)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateUpdateTask проверяет только переданные поля
func ValidateUpdateTask(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields, ok := readPayload(w, r)
		if !ok {
			return
		}

		var request dto.UpdateTaskRequest
		messages, wrongType := decodeStrings(fields, &request.Title, &request.Color)

		if err := validate.Struct(request); err != nil {
			messages = append(messages, translate(err, wrongType)...)
		}

		if !decodeField(fields, "completed", &request.Completed) {
			messages = append(messages, msgCompletedNotBool)
		}

		if len(messages) > 0 {
			rejectPayload(w, r, messages)
			return
		}

		ctx := context.WithValue(r.Context(), updateRequestKey, request)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateTaskID пропускает только UUID v4 в параметре {id}
func ValidateTaskID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseTaskID(chi.URLParam(r, "id"))
		if !ok {
			logger.Warn("HTTP: Неверное значение id",
				zap.String("id", chi.URLParam(r, "id")),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, service.CodeInvalidInput, msgInvalidTaskID)
			return
		}

		ctx := context.WithValue(r.Context(), taskIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseTaskID(raw string) (uuid.UUID, bool) {
	if err := validate.Var(strings.ToLower(raw), "required,uuid4"); err != nil {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
