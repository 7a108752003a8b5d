package checkout

import (
	"errors"
	"net/http"
	"time"

	"paysofter-checkout/internal/common/enum"
	types "paysofter-checkout/internal/common/type"
	"paysofter-checkout/internal/pkg/helper"
	"paysofter-checkout/internal/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const defaultQty = 1

func (s *Service) OpenSession(req *OpenSessionRequest) *types.Response {
	if req.Qty <= 0 {
		req.Qty = defaultQty
	}

	flagOrDefault := func(v *bool) bool {
		if v == nil {
			return true
		}
		return *v
	}

	gid, err := gonanoid.New()
	if err != nil {
		return helper.ParseResponse(&types.Response{
			Code:    http.StatusInternalServerError,
			Message: "Failed to allocate session id",
			Error:   err,
		})
	}
	sessionId := "cs_" + gid

	payReq := PaymentRequest{
		Amount:       req.Amount,
		Currency:     req.Currency,
		Email:        req.Email,
		PublicApiKey: req.PublicApiKey,
		Promises:     req.Promises,
		ReferenceId:  req.ReferenceId,
		Qty:          req.Qty,
		ProductName:  req.ProductName,
		BuyerName:    req.BuyerName,
		BuyerPhone:   req.BuyerPhone,
		Flags: OptionFlags{
			ShowPromiseOption: flagOrDefault(req.ShowPromiseOption),
			ShowCardOption:    flagOrDefault(req.ShowCardOption),
			ShowFundOption:    flagOrDefault(req.ShowFundOption),
		},
	}

	var session *Session
	session = NewSession(sessionId, payReq, s.backend, s.store, Callbacks{
		OnSuccess: func() { s.publishSettled(session) },
		OnClose:   func() { s.removeSession(sessionId) },
	}, s.opts)

	if err := session.Open(s.ctx); err != nil {
		return helper.ParseResponse(&types.Response{
			Code:    flowErrorCode(err),
			Message: "Failed to open checkout session",
			Error:   err,
		})
	}

	s.mu.Lock()
	s.sessions[sessionId] = session
	s.mu.Unlock()

	return helper.ParseResponse(&types.Response{
		Code:    http.StatusCreated,
		Message: "Checkout session opened",
		Data:    session.State(),
	})
}

func (s *Service) GetState(sessionId string) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) SelectOption(sessionId string, req *SelectOptionRequest) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.SelectOption(req.Option); err != nil {
		return s.flowFailure("Failed to select payment option", err)
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) AcceptTerms(sessionId string) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.AcceptTerms(); err != nil {
		return s.flowFailure("Failed to accept promise terms", err)
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) SetDuration(sessionId string, req *SetDurationRequest) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.SetDuration(req.Duration); err != nil {
		return s.flowFailure("Failed to set settlement duration", err)
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) SubmitPromise(sessionId string) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.SubmitPromise(); err != nil {
		return s.flowFailure("Failed to submit promise", err)
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) FundAccount(sessionId string, req *FundAccountRequest) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.FundAccount(s.ctx, req.AccountId, req.SecurityCode); err != nil {
		return s.flowFailure("Failed to start fund account debit", err)
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) VerifyOTP(sessionId string, req *VerifyOTPRequest) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.VerifyOTP(s.ctx, req.OTP); err != nil {
		return s.flowFailure("OTP verification failed", err)
	}

	return helper.ParseResponse(&types.Response{
		Code:    http.StatusOK,
		Message: "OTP verified",
		Data:    session.State(),
	})
}

func (s *Service) ResendOTP(sessionId string) *types.Response {
	session, resp := s.session(sessionId)
	if resp != nil {
		return resp
	}

	if err := session.ResendOTP(); err != nil {
		return s.flowFailure("Failed to resend OTP", err)
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: session.State(),
	})
}

func (s *Service) CloseSession(sessionId string) *types.Response {
	s.mu.RLock()
	session, ok := s.sessions[sessionId]
	s.mu.RUnlock()

	if !ok {
		// closing an unknown or already-closed session is not an error
		return helper.ParseResponse(&types.Response{
			Code:    http.StatusOK,
			Message: "Checkout session closed",
		})
	}

	session.Close()

	return helper.ParseResponse(&types.Response{
		Code:    http.StatusOK,
		Message: "Checkout session closed",
	})
}

func (s *Service) ListSettlements(req *ListSettlementsRequest) *types.Response {
	rows, total, err := s.rp.Settlement.List(s.ctx, req.Limit, req.Offset)
	if err != nil {
		logger.Error.Printf("Failed to list settlements: %v", err)
		return helper.ParseResponse(&types.Response{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list settlements",
			Error:   err,
		})
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: ListSettlementsResponse{
			Total: total,
			Rows:  rows,
		},
	})
}

// GetReceipt resolves the archived receipt of a settled session to a
// time-limited download URL.
func (s *Service) GetReceipt(sessionId string) *types.Response {
	if s.s3 == nil {
		return helper.ParseResponse(&types.Response{
			Code:    http.StatusNotFound,
			Message: "Receipt archive is not configured",
			Error:   ErrReceiptNotFound,
		})
	}

	stl, err := s.rp.Settlement.FindBySessionID(s.ctx, sessionId)
	if err != nil || stl == nil || stl.ReceiptKey == "" {
		return helper.ParseResponse(&types.Response{
			Code:    http.StatusNotFound,
			Message: "Receipt not found",
			Error:   ErrReceiptNotFound,
		})
	}

	url, err := s.s3.GetPresignedURL(stl.ReceiptKey)
	if err != nil {
		logger.Error.Printf("Failed to presign receipt for session %s: %v", sessionId, err)
		return helper.ParseResponse(&types.Response{
			Code:    http.StatusInternalServerError,
			Message: "Failed to generate receipt URL",
			Error:   err,
		})
	}

	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: ReceiptResponse{
			SessionId: sessionId,
			Url:       url,
		},
	})
}

func (s *Service) session(sessionId string) (*Session, *types.Response) {
	s.mu.RLock()
	session, ok := s.sessions[sessionId]
	s.mu.RUnlock()

	if !ok {
		return nil, helper.ParseResponse(&types.Response{
			Code:    http.StatusNotFound,
			Message: "Checkout session not found",
			Error:   ErrSessionNotFound,
		})
	}
	return session, nil
}

func (s *Service) removeSession(sessionId string) {
	s.mu.Lock()
	delete(s.sessions, sessionId)
	s.mu.Unlock()
}

// publishSettled emits the settlement event for the worker. A publish
// failure is logged but never surfaces to the buyer; the payment itself
// already settled on the backend.
func (s *Service) publishSettled(session *Session) {
	if s.publisher == nil {
		return
	}

	session.mu.Lock()
	event := SettledEvent{
		SessionId:     session.id,
		ReferenceId:   session.req.ReferenceId,
		BuyerEmail:    session.req.Email,
		BuyerName:     session.req.BuyerName,
		BuyerPhone:    session.req.BuyerPhone,
		Amount:        session.req.Amount,
		Currency:      session.req.Currency,
		ProductName:   session.req.ProductName,
		Qty:           session.req.Qty,
		PaymentMethod: paymentMethod,
		PaymentOption: session.selector.Selected().ToString(),
		KeyMode:       session.mode.ToString(),
		SettledAt:     session.settledAt,
	}
	if session.selector.Selected() == enum.PAY_OPTION_PROMISE {
		event.Duration = session.terms.Duration()
	}
	if event.SettledAt.IsZero() {
		event.SettledAt = time.Now()
	}
	session.mu.Unlock()

	if err := s.publisher.Publish(SettledQueue, event, nil); err != nil {
		logger.Error.Printf("Failed to publish settled event for session %s: %v", event.SessionId, err)
	}
}

// flowFailure maps engine errors to HTTP codes: guard violations are client
// errors, backend rejections pass their detail through, transport problems
// read as upstream failures.
func (s *Service) flowFailure(message string, err error) *types.Response {
	return helper.ParseResponse(&types.Response{
		Code:    flowErrorCode(err),
		Message: message,
		Error:   err,
	})
}

func flowErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotOpen),
		errors.Is(err, ErrTermsNotAccepted),
		errors.Is(err, ErrFlowNotReady),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrAlreadyOpen):
		return http.StatusBadRequest
	case errors.Is(err, ErrResendDisabled):
		return http.StatusTooManyRequests
	}

	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		if flowErr.Kind == TransportError {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
