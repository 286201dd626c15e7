// Package errors define los errores HTTP que no son errores OAuth2: defectos de
// configuración, rate limiting, rutas inexistentes. El body es {code, message}.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// AppError es un error del host con su status HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail devuelve una COPIA con detail; los errores base son globales.
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

var (
	ErrConfiguration = &AppError{
		Code:       "configuration_error",
		Message:    "the token service is misconfigured",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrInternal = &AppError{
		Code:       "internal_error",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrRateLimited = &AppError{
		Code:       "rate_limited",
		Message:    "too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "resource not found",
		HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code:       "method_not_allowed",
		Message:    "method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// FromError: cualquier error que no sea *AppError es un 500 genérico.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WriteError escribe {code, message, detail}. La causa nunca sale al cliente.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}
