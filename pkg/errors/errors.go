package errors

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrConflict   = fmt.Errorf("конфликт данных")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// HttpError несет HTTP-код и пользовательское сообщение отдельно от
// технической ошибки: наружу уходит только Message и Details.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
}

// NewNotFoundError — 404 с человекочитаемым сообщением.
func NewNotFoundError(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message, ErrNotFound, nil)
}

// NewConflictError — 400 для нарушений бизнес-инвариантов
// (дубликат номера, повторная выдача, повторный возврат и т.д.).
func NewConflictError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, ErrConflict, nil)
}

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
