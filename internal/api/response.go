// internal/api/response.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "chronocost/internal/common/errors"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Code int         `json:"code"` // 0 success, -1 failure
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	// Error carries the taxonomy code of a failure.
	Error apperrors.ErrorCode `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "success", Data: data})
}

func Created(c *gin.Context, location string, data interface{}) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, Response{Code: 0, Msg: "success", Data: data})
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: -1, Msg: msg})
}


// FailWithError answers with the message and code of a standardized error.
// data may be nil.
func FailWithError(c *gin.Context, status int, stdErr *apperrors.StandardError, data interface{}) {
	c.AbortWithStatusJSON(status, Response{Code: -1, Msg: stdErr.Message, Data: data, Error: stdErr.Code})
}
