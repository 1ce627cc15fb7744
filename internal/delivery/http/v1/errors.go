package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgInvalidTaskID      = "Invalid task id"
	msgInvalidTaskStatus  = "Invalid task status"
	msgTaskNotFound       = "Task not found"
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"detail": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newUnprocessableEntityError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// newServiceError maps a task service error to the response sent to
// the client. Unknown errors never leak their message.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrInvalidTaskStatus):
		return newUnprocessableEntityError(msgInvalidTaskStatus)
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(msgTaskNotFound)
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}

// newBindingError describes why a request body was rejected.
func newBindingError(err error) apiError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return newUnprocessableEntityError(msgInvalidRequestBody)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		if fieldErr.Tag() == taskStatusTag {
			return newUnprocessableEntityError(msgInvalidTaskStatus)
		}
		messages = append(messages, fmt.Sprintf("field %q is %s", jsonFieldName(fieldErr), fieldErr.Tag()))
	}
	return newUnprocessableEntityError(strings.Join(messages, "; "))
}

func jsonFieldName(fieldErr validator.FieldError) string {
	return strings.ToLower(fieldErr.Field())
}
