package middleware

import (
	"fmt"
	"time"

	"paysofter-checkout/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const RequestIdKey = "request_id"

// RequestInit tags every request with an id and logs the access line once
// the handler chain completes.
func RequestInit() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader("X-Request-Id")
		if requestId == "" {
			gid, err := gonanoid.New()
			if err == nil {
				requestId = fmt.Sprintf("req_%s", gid)
			}
		}

		c.Set(RequestIdKey, requestId)
		c.Writer.Header().Set("X-Request-Id", requestId)

		start := time.Now()
		c.Next()

		logger.HTTP.Printf("%s %s %d %s %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			requestId,
		)
	}
}
