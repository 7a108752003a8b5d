package middleware

import (
	"net/http"

	types "paysofter-checkout/internal/common/type"

	"github.com/gin-gonic/gin"
)

// ResponseInit places the "send" function on the context; handlers fetch it
// with c.MustGet("send") and pass every service response through it.
func ResponseInit() gin.HandlerFunc {
	return func(c *gin.Context) {
		send := func(r *types.Response) {
			if r == nil {
				r = &types.Response{Code: http.StatusInternalServerError}
			}

			api := types.ResponseAPI{
				Code:    r.Code,
				Message: r.Message,
				Data:    r.Data,
			}
			if r.Error != nil && r.Code >= http.StatusBadRequest {
				api.Error = r.Error.Error()
			}

			c.JSON(r.Code, api)
			c.Abort()
		}

		c.Set("send", send)
		c.Next()
	}
}
