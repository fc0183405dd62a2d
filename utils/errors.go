package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error carries a message meant for the client alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func BadRequest(message string) error {
	return &Error{Kind: ErrBadRequest, Message: message}
}

func Unauthenticated(message string) error {
	return &Error{Kind: ErrUnauthenticated, Message: message}
}

// Category names the kind of err for error payloads.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrBadRequest):
		return "BAD_REQUEST"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	default:
		return "INTERNAL"
	}
}

// Message returns the client-safe text of err. Unclassified errors never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

var statusByCategory = map[string]int{
	"NOT_FOUND":       fiber.StatusNotFound,
	"FORBIDDEN":       fiber.StatusForbidden,
	"CONFLICT":        fiber.StatusConflict,
	"BAD_REQUEST":     fiber.StatusBadRequest,
	"UNAUTHENTICATED": fiber.StatusUnauthorized,
}

// Status is the HTTP status answering err. Unclassified errors are 500.
func Status(err error) int {
	if status, ok := statusByCategory[Category(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}
