package checkout

import (
	"paysofter-checkout/internal/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) NewRoutes(e *gin.RouterGroup) {
	sessions := e.Group("/v1/checkout/sessions")

	sessions.POST("", h.OpenSession)
	sessions.GET("/:session_id", h.GetState)
	sessions.POST("/:session_id/select-option", h.SelectOption)
	sessions.POST("/:session_id/accept-terms", h.AcceptTerms)
	sessions.POST("/:session_id/duration", h.SetDuration)
	sessions.POST("/:session_id/submit-promise", h.SubmitPromise)
	sessions.POST("/:session_id/fund-account", h.FundAccount)
	sessions.POST("/:session_id/verify-otp", h.VerifyOTP)
	sessions.POST("/:session_id/resend-otp", h.ResendOTP)
	sessions.POST("/:session_id/close", h.CloseSession)

	settlements := e.Group("/v1/checkout/settlements", middleware.AuthMiddleware())
	settlements.GET("", h.ListSettlements)
	settlements.GET("/:session_id/receipt", h.GetReceipt)
}
