package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext extracts the request context, falling back to context.Background
// when the handler runs outside a real HTTP request.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
