package utils

import (
	"errors"
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/gofiber/fiber/v3"
)

type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewBadRequestError(message string, details any) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		Details:    details,
	}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
	}
}

func NewConflictError(message string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusConflict,
		Code:       "CONFLICT",
		Message:    message,
	}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
	}
}

func NewInternalError(err error) *APIError {
	return &APIError{
		StatusCode: fiber.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "An internal error occurred",
		Details:    err.Error(), // Only in development
	}
}

var badRequestErrors = []error{
	services.ErrInvalidAmount,
	services.ErrInvalidDate,
	services.ErrInvalidDayOfMonth,
	services.ErrInvalidMonth,
	services.ErrInvalidRecurrence,
	services.ErrUnknownCategory,
	services.ErrInvalidLookup,
	services.ErrInvalidInput,
}

// FromDomainError maps a service error onto the API error it should surface as.
func FromDomainError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, services.ErrNotFound) {
		return &APIError{
			StatusCode: fiber.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    err.Error(),
		}
	}
	if errors.Is(err, services.ErrAccountInactive) {
		return NewConflictError(err.Error())
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return NewBadRequestError(err.Error(), nil)
		}
	}
	return NewInternalError(err)
}

// ErrorHandler is a middleware to handle APIError
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(&APIError{
			StatusCode: fiberErr.Code,
			Code:       "HTTP_ERROR",
			Message:    fiberErr.Message,
		})
	}

	apiErr := FromDomainError(err)
	return c.Status(apiErr.StatusCode).JSON(apiErr)
}
