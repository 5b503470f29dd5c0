package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestIDKey stores the request id inside Gin context.
const ContextRequestIDKey = "request_id"

// RequestID tags every request with a uuid, echoed in the X-Request-Id
// response header and picked up by the access logger. An id supplied by
// the client is kept so upstream proxies can correlate.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set(ContextRequestIDKey, rid)
		ctx.Writer.Header().Set("X-Request-Id", rid)
		ctx.Next()
	}
}
