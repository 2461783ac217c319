package util

import (
	"github.com/gin-gonic/gin"
)

// business error codes
const (
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Error writes the unified error envelope. Handlers map every failure
// through here; internal causes are logged, never sent to the client.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}
