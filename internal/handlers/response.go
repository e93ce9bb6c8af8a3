package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
)

// respondError maps any service error onto the stable wire shape:
// {"error": {"code": ..., "message": ..., "fields": [...]}}. Unknown errors
// come out as a 500 storage error.
func respondError(c *gin.Context, err error) {
	apiErr := apierr.AsError(err)
	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Error(),
	}
	if len(apiErr.Fields) > 0 {
		body["fields"] = apiErr.Fields
	}
	c.JSON(apiErr.Status, gin.H{"error": body})
}
