// Package httpx holds the JSON envelopes every HTTP response uses.
package httpx

import "github.com/gin-gonic/gin"

const (
	StatusAdded     = "added"
	StatusUpdated   = "updated"
	StatusDeleted   = "deleted"
	StatusCancelled = "cancelled"
	StatusOK        = "ok"
	statusError     = "error"
)

const (
	CodeValidation   = "validation_failed"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeSeatTaken    = "seat_taken"
	CodeCancelled    = "reservation_cancelled"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

type Envelope struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func Success(c *gin.Context, httpStatus int, status string, data any) {
	c.JSON(httpStatus, Envelope{Status: status, Data: data})
}

func Error(c *gin.Context, httpStatus int, code, message string) {
	ErrorFields(c, httpStatus, code, message, nil)
}

func ErrorFields(c *gin.Context, httpStatus int, code, message string, fields map[string]string) {
	c.AbortWithStatusJSON(httpStatus, Envelope{
		Status: statusError,
		Error:  &ErrorBody{Code: code, Message: message, Fields: fields},
	})
}
