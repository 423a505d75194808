package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/utils"
)

// TerminalIdMiddleware propagates the submitting terminal's identifier from
// the x-terminal-id header into the request context. Unlike correlation ids
// nothing is generated: a terminal either identifies itself or the field
// stays empty.
func TerminalIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tid := c.GetHeader("x-terminal-id"); tid != "" {
			c.Request = c.Request.WithContext(utils.SetTerminalIdInContext(c.Request.Context(), tid))
		}
		c.Next()
	}
}
