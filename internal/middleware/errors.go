package middleware

import (
	"github.com/gin-gonic/gin"

	"eldrix/admin/internal/apperr"
)

func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Status, gin.H{"error": err})
}
