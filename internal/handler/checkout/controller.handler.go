package checkout

import (
	"context"
	"net/http"

	types "paysofter-checkout/internal/common/type"
	"paysofter-checkout/internal/pkg/helper"
	checkoutService "paysofter-checkout/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ctx             context.Context
	checkoutService checkoutService.IService
}

type IHandler interface {
	NewRoutes(e *gin.RouterGroup)
}

func NewHandler(ctx context.Context, checkoutService checkoutService.IService) IHandler {
	return &Handler{
		ctx:             ctx,
		checkoutService: checkoutService,
	}
}

// OpenSession godoc
// @Summary      Open a checkout session
// @Description  Resolves the merchant public key to live or test mode and returns the initial session state with the enabled payment options
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request  body      checkoutService.OpenSessionRequest  true  "Checkout session request"
// @Success      201      {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400      {object}  types.ResponseAPI
// @Failure      422      {object}  types.ResponseAPI
// @Failure      502      {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions [post]
func (h *Handler) OpenSession(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req checkoutService.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.checkoutService.OpenSession(&req))
}

// GetState godoc
// @Summary      Get checkout session state
// @Tags         Checkout
// @Produce      json
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      404         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id} [get]
func (h *Handler) GetState(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))
	send(h.checkoutService.GetState(c.Param("session_id")))
}

// SelectOption godoc
// @Summary      Switch the active payment option
// @Description  Selecting a disabled or already-active option leaves the session unchanged
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        session_id  path      string                               true  "Session ID"
// @Param        request     body      checkoutService.SelectOptionRequest  true  "Payment option"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/select-option [post]
func (h *Handler) SelectOption(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req checkoutService.SelectOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.checkoutService.SelectOption(c.Param("session_id"), &req))
}

// AcceptTerms godoc
// @Summary      Accept the promise terms
// @Tags         Checkout
// @Produce      json
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/accept-terms [post]
func (h *Handler) AcceptTerms(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))
	send(h.checkoutService.AcceptTerms(c.Param("session_id")))
}

// SetDuration godoc
// @Summary      Set the promised settlement duration
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        session_id  path      string                              true  "Session ID"
// @Param        request     body      checkoutService.SetDurationRequest  true  "Settlement duration"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/duration [post]
func (h *Handler) SetDuration(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req checkoutService.SetDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.checkoutService.SetDuration(c.Param("session_id"), &req))
}

// SubmitPromise godoc
// @Summary      Submit the promise and move to the fund account form
// @Description  Rejected until the promise terms are accepted
// @Tags         Checkout
// @Produce      json
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/submit-promise [post]
func (h *Handler) SubmitPromise(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))
	send(h.checkoutService.SubmitPromise(c.Param("session_id")))
}

// FundAccount godoc
// @Summary      Start the fund account debit
// @Description  Issues an OTP to the account owner (live mode) or generates one locally (test mode) and moves the flow to OTP entry
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        session_id  path      string                              true  "Session ID"
// @Param        request     body      checkoutService.FundAccountRequest  true  "Fund account credentials"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Failure      422         {object}  types.ResponseAPI
// @Failure      502         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/fund-account [post]
func (h *Handler) FundAccount(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req checkoutService.FundAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.checkoutService.FundAccount(c.Param("session_id"), &req))
}

// VerifyOTP godoc
// @Summary      Verify the OTP and settle the payment
// @Description  On success the transaction is initiated immediately; failures leave the flow retryable with a displayable message
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        session_id  path      string                            true  "Session ID"
// @Param        request     body      checkoutService.VerifyOTPRequest  true  "One-time code"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      400         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Failure      422         {object}  types.ResponseAPI
// @Failure      502         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/verify-otp [post]
func (h *Handler) VerifyOTP(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req checkoutService.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.checkoutService.VerifyOTP(c.Param("session_id"), &req))
}

// ResendOTP godoc
// @Summary      Resend the OTP confirmation
// @Description  Rate limited by a cooldown; calls during the cooldown are rejected without side effects
// @Tags         Checkout
// @Produce      json
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.SessionState}
// @Failure      404         {object}  types.ResponseAPI
// @Failure      429         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/resend-otp [post]
func (h *Handler) ResendOTP(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))
	send(h.checkoutService.ResendOTP(c.Param("session_id")))
}

// CloseSession godoc
// @Summary      Close a checkout session
// @Description  Idempotent; closing an unknown or already-closed session succeeds
// @Tags         Checkout
// @Produce      json
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  types.ResponseAPI
// @Router       /v1/checkout/sessions/{session_id}/close [post]
func (h *Handler) CloseSession(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))
	send(h.checkoutService.CloseSession(c.Param("session_id")))
}

// ListSettlements godoc
// @Summary      List recorded settlements
// @Tags         Settlements
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {object}  types.ResponseAPI{data=checkoutService.ListSettlementsResponse}
// @Failure      401     {object}  types.ResponseAPI
// @Failure      500     {object}  types.ResponseAPI
// @Router       /v1/checkout/settlements [get]
func (h *Handler) ListSettlements(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req checkoutService.ListSettlementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid query parameters",
			Error:   err,
		}))
		return
	}

	send(h.checkoutService.ListSettlements(&req))
}

// GetReceipt godoc
// @Summary      Get a settlement receipt download URL
// @Description  Returns a time-limited presigned URL for the archived receipt of a settled session
// @Tags         Settlements
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  types.ResponseAPI{data=checkoutService.ReceiptResponse}
// @Failure      401         {object}  types.ResponseAPI
// @Failure      404         {object}  types.ResponseAPI
// @Failure      500         {object}  types.ResponseAPI
// @Router       /v1/checkout/settlements/{session_id}/receipt [get]
func (h *Handler) GetReceipt(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))
	send(h.checkoutService.GetReceipt(c.Param("session_id")))
}
