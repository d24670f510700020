// Package handlers implements the HTTP request handlers for the REST API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DiazoScreen/pkg/errors"
)

// ErrorResponse is the standard error body for every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an application error to its HTTP status and renders the
// standard error body.  Internal errors are masked to avoid leaking detail.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(code),
		Message: message,
	})
}

// writeBindError renders a 400 for a malformed request body.
func writeBindError(c *gin.Context, err error) {
	writeError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid request body"))
}
