package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"listingstudio.app/studio/common/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates or assigns a request id and attaches it to the log
// fields of the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: logger.Ptr(rid)})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
