package middleware

import (
	"strings"

	"caja/src/shared/infrastructure/requestctx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUser      = "X-User"
)

// RequestContext copia la identidad del operador, el token y el request id al
// context.Context de la petición para que los clientes del backend los reenvíen.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := requestctx.WithRequestID(c.Request.Context(), requestID)
		if user := strings.TrimSpace(c.GetHeader(HeaderUser)); user != "" {
			ctx = requestctx.WithUser(ctx, user)
		}
		if token := c.GetHeader("Authorization"); token != "" {
			ctx = requestctx.WithAuthToken(ctx, token)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
