package public

import (
	"strings"

	handlershared "github.com/jobdesk-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.unauthorized", "error.internal_error")
}

func getRequestID(c *gin.Context) string {
	if rid, ok := c.Get("request_id"); ok {
		if value, ok := rid.(string); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
