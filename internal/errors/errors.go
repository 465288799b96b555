package errors

import (
	defErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError is the error shape every handler/service returns. Status and
// Message are what the client sees; Internal is kept for logging only.
type APIError struct {
	Status   int    `json:"-"`
	Message  string `json:"error"`
	Internal error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped internal error
func (e *APIError) Unwrap() error {
	return e.Internal
}

func newError(status int, message string, err error) *APIError {
	return &APIError{
		Status:   status,
		Message:  message,
		Internal: err,
	}
}

func BadRequest(message string, err error) *APIError {
	return newError(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return newError(http.StatusUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return newError(http.StatusForbidden, message, err)
}

func NotFound(message string, err error) *APIError {
	return newError(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *APIError {
	return newError(http.StatusConflict, message, err)
}

func UnprocessableEntity(message string, err error) *APIError {
	return newError(http.StatusUnprocessableEntity, message, err)
}

// BadGateway marks a failure of an upstream provider (storage upload)
func BadGateway(message string, err error) *APIError {
	return newError(http.StatusBadGateway, message, err)
}

func Internal(err error) *APIError {
	return newError(http.StatusInternalServerError, "Internal server error", err)
}

// NewValidationError converts gin binding errors into a readable 400
func NewValidationError(err error) *APIError {
	var vErrs validator.ValidationErrors
	if defErrors.As(err, &vErrs) {
		msgs := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return BadRequest(strings.Join(msgs, ", "), err)
	}
	return BadRequest("Invalid input", err)
}
