package service

import "fmt"

const (
	CodeTaskNotFound = "TASK_NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeServerError  = "SERVER_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewNotFound(err error) *BusinessError {
	return NewBusinessError(CodeTaskNotFound, "Task not found", err)
}

func NewInvalidInput(message string) *BusinessError {
	return NewBusinessError(CodeInvalidInput, message, nil)
}
