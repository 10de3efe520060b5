package errors

import (
	"errors"
	"net/http"

	"github.com/culturepass/cp-stock/pkg/status"
)

// ApplicationError carries the HTTP status code and machine-readable status
// alongside the operator-facing message.
type ApplicationError struct {
	HTTPStatusCode int
	Status         string
	Message        string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

func New(httpStatusCode int, stat string, message string) error {
	return &ApplicationError{
		HTTPStatusCode: httpStatusCode,
		Status:         stat,
		Message:        message,
	}
}

// Destruct extracts an ApplicationError from err, defaulting to an internal
// server error for anything unknown.
func Destruct(err error) *ApplicationError {
	var ae *ApplicationError
	if errors.As(err, &ae) {
		return ae
	}

	return &ApplicationError{
		HTTPStatusCode: http.StatusInternalServerError,
		Status:         status.INTERNAL_SERVER_ERROR,
		Message:        err.Error(),
	}
}
