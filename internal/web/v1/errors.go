package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgzerolog "github.com/duynhne/recipe-service/internal/logger/zerolog"
)

// DefaultErrorMessage is used when an APIError is built without messages.
const DefaultErrorMessage = "An unknown error occurred."

// APIError is an error that knows how it is rendered on the wire:
// {...Payload, "errors": Messages} with status Status.
type APIError struct {
	Messages []string
	Status   int
	Payload  map[string]any
}

// NewAPIError builds an APIError. A zero status becomes 500 and an empty
// message list becomes a single generic message, so Messages is never empty.
func NewAPIError(status int, payload map[string]any, messages ...string) *APIError {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	msgs := make([]string, 0, len(messages))
	for _, m := range messages {
		if m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		msgs = []string{DefaultErrorMessage}
	}

	return &APIError{Messages: msgs, Status: status, Payload: payload}
}

func (e *APIError) Error() string {
	return http.StatusText(e.Status) + ": " + strings.Join(e.Messages, "; ")
}

// Body returns the JSON body. "errors" always wins over a payload key of the same name.
func (e *APIError) Body() gin.H {
	body := make(gin.H, len(e.Payload)+1)
	for k, v := range e.Payload {
		body[k] = v
	}
	body["errors"] = e.Messages
	return body
}

// ErrorTranslator renders the last error attached with c.Error when the
// handler did not write a response itself. Errors other than *APIError are
// logged and rendered as the default APIError; their text never reaches the client.
func ErrorTranslator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			pkgzerolog.FromContext(c.Request.Context()).Error().Err(err).Msg("Unhandled error")
			apiErr = NewAPIError(0, nil)
		}

		c.JSON(apiErr.Status, apiErr.Body())
	}
}

// RecoveryHandler renders a recovered panic as the default APIError.
// Use with gin.CustomRecovery.
func RecoveryHandler(c *gin.Context, recovered any) {
	pkgzerolog.FromContext(c.Request.Context()).Error().
		Interface("panic", recovered).
		Str("path", c.Request.URL.Path).
		Msg("Recovered from panic")

	apiErr := NewAPIError(0, nil)
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Body())
}
