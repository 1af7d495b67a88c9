// Package response implements the JSON envelope used by every endpoint:
// a statusCode field, a human-readable message, an optional payload under a
// route-specific key, and an errors array for accumulated validation failures.
package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
)

// Envelope is the base shape of every response body. Payload keys vary per
// endpoint (user, classes, homeworks...), so bodies are built as gin.H maps;
// Envelope exists for swagger documentation.
type Envelope struct {
	StatusCode   int      `json:"statusCode"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors,omitempty"`
	TokenExpired bool     `json:"tokenExpired,omitempty"`
}

// OK writes a success envelope. payloadKey names the field the payload is
// nested under; pass an empty key for message-only responses.
func OK(c *gin.Context, status int, message, payloadKey string, payload interface{}) {
	body := gin.H{
		"statusCode": status,
		"message":    message,
	}
	if payloadKey != "" {
		body[payloadKey] = payload
	}
	c.JSON(status, body)
}

// WithToken sets the Authorization header before writing the envelope. Used
// by login and by profile updates that reissue the token.
func WithToken(c *gin.Context, status int, message, token, payloadKey string, payload interface{}) {
	c.Header("Authorization", token)
	OK(c, status, message, payloadKey, payload)
}

// Error normalises err into the envelope, including the accumulated
// validation details and the tokenExpired flag when present.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	body := gin.H{
		"statusCode": appErr.Status,
		"message":    appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body["errors"] = appErr.Details
	}
	if appErr.TokenExpired {
		body["tokenExpired"] = true
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}

// ValidationFailed writes the 400 envelope with a summary message and the
// full list of reasons the request was rejected.
func ValidationFailed(c *gin.Context, message string, details []string) {
	Error(c, appErrors.Validation(message, details))
}

// BadRequest is a shorthand for malformed input outside of the accumulated
// validation flow (unparseable JSON, missing route params).
func BadRequest(c *gin.Context, message string) {
	Error(c, appErrors.Clone(appErrors.ErrValidation, message))
}

// Internal hides the underlying cause behind a generic 500 envelope.
func Internal(c *gin.Context) {
	Error(c, appErrors.ErrInternal)
}

// NotFound writes a 404 envelope with a custom message.
func NotFound(c *gin.Context, message string) {
	Error(c, appErrors.Clone(appErrors.ErrNotFound, message))
}
