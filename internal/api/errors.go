package api

import (
	"fmt"
	"net/http"
)

// Error codes returned in the response envelope.
const (
	CodeInvalidPlan     = "ERR_INVALID_PLAN"
	CodeUnknownMaterial = "ERR_UNKNOWN_MATERIAL"
	CodeBadRequest      = "ERR_BAD_REQUEST"
	CodeNotFound        = "ERR_NOT_FOUND"
	CodeInternal        = "ERR_INTERNAL"
	CodeUnknown         = "ERR_UNKNOWN"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value any) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// InvalidPlanError creates a 400 error for a plan with no usable rows.
func InvalidPlanError(field string, err error) *AppError {
	return NewAppError(CodeInvalidPlan, field,
		"plan has no valid (period, volumeTons) rows", http.StatusBadRequest).WithError(err)
}

// UnknownMaterialError creates a 400 error for a material missing from the catalog.
func UnknownMaterialError(field, material string, err error) *AppError {
	return NewAppError(CodeUnknownMaterial, field,
		fmt.Sprintf("unknown material %q", material), http.StatusBadRequest).
		WithParam("material", material).
		WithError(err)
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, "", message, http.StatusBadRequest)
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, "", message, http.StatusNotFound)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
