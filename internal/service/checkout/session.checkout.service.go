package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"paysofter-checkout/internal/common/enum"
	"paysofter-checkout/internal/pkg/helper"
	"paysofter-checkout/internal/pkg/logger"
	"paysofter-checkout/internal/pkg/paysofter"

	"github.com/shopspring/decimal"
)

const (
	otpLength     = 6
	paymentMethod = "Paysofter Account Fund"

	// createdAtLayout matches what the settlement backend expects for the
	// created_at field: long en-US weekday, date, zero-padded 12-hour time
	// and the zone abbreviation.
	createdAtLayout = "Monday, January 2, 2006 at 03:04:05 PM MST"

	testOtpMessage        = "OTP has been automatically generated for testing purposes."
	promiseSuccessMessage = "Promise successfully created!"
	paymentSuccessMessage = "Payment made successfully!"

	// shown on the terminal screen after a promise settles
	promiseConfirmInfo = "Is Promise fulfilled? Check your email or login to your Paysofter account to check out the Promise status to confirm."
	promiseConfirmURL  = "https://paysofter.com/promise/buyer"
)

// FlowState is the OTP verification and settlement state machine.
type FlowState string

const (
	FLOW_IDLE               FlowState = "idle"
	FLOW_OTP_ISSUED         FlowState = "otp_issued"
	FLOW_VERIFYING          FlowState = "verifying"
	FLOW_VERIFY_FAILED      FlowState = "verify_failed"
	FLOW_SETTLEMENT_PENDING FlowState = "settlement_pending"
	FLOW_SETTLED            FlowState = "settled"
	FLOW_SETTLEMENT_FAILED  FlowState = "settlement_failed"
)

// Step is the pane the buyer currently sees within the selected option.
type Step string

const (
	STEP_SELECT       Step = "select"
	STEP_FUND_ACCOUNT Step = "fund_account"
	STEP_VERIFY_OTP   Step = "verify_otp"
	STEP_SETTLED      Step = "settled"
)

// PaymentRequest is everything the merchant passes when opening a checkout.
type PaymentRequest struct {
	Amount       decimal.Decimal
	Currency     string
	Email        string
	PublicApiKey string
	Promises     []string
	ReferenceId  string
	Qty          int
	ProductName  string
	BuyerName    string
	BuyerPhone   string
	Flags        OptionFlags
}

// Callbacks are the merchant-facing hooks. OnSuccess fires at most once per
// session no matter how many settlement confirmations arrive; OnClose fires
// exactly once per opened session.
type Callbacks struct {
	OnSuccess func()
	OnClose   func()
}

// EngineOptions tune the session timers. Zero values select production
// defaults; tests inject short intervals.
type EngineOptions struct {
	ResendCooldown int
	TickInterval   time.Duration
	SuccessDelay   time.Duration
}

const defaultSuccessDelay = 3 * time.Second

// Session drives one buyer through option selection, the promise terms
// gate, fund-account debit, OTP verification and settlement. All state
// transitions happen under s.mu; backend calls happen outside it, guarded
// by an epoch counter so results landing after a close or an option switch
// are dropped instead of resurrecting stale state.
type Session struct {
	mu sync.Mutex

	id        string
	req       PaymentRequest
	backend   paysofter.IClient
	store     IFundSessionStore
	callbacks Callbacks
	opts      EngineOptions

	epoch   int
	opened  bool
	opening bool
	mode    enum.KeyStatusEnum

	selector *optionSelector
	terms    *termsGate
	step     Step

	flowState         FlowState
	generatedOtp      string
	otpMessage        string
	resendMessage     string
	lastError         string
	hasHandledSuccess bool
	showSuccessMsg    bool
	showSuccessScreen bool
	settledAt         time.Time
	successTimer      *time.Timer
	countdown         *resendCountdown
	createdAt         string
}

func NewSession(id string, req PaymentRequest, backend paysofter.IClient, store IFundSessionStore, callbacks Callbacks, opts EngineOptions) *Session {
	if opts.SuccessDelay <= 0 {
		opts.SuccessDelay = defaultSuccessDelay
	}
	if store == nil {
		store = NewMemoryFundSessionStore()
	}

	return &Session{
		id:        id,
		req:       req,
		backend:   backend,
		store:     store,
		callbacks: callbacks,
		opts:      opts,
		selector:  newOptionSelector(req.Flags),
		terms:     newTermsGate(req.Promises),
		step:      STEP_SELECT,
		flowState: FLOW_IDLE,
		countdown: newResendCountdown(opts.ResendCooldown, opts.TickInterval),
	}
}

func (s *Session) Id() string {
	return s.id
}

// Open resolves the merchant key to live or test mode. Exactly one lookup
// runs per open attempt; a failed lookup leaves the session closed so the
// merchant can retry.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened || s.opening {
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	s.opening = true
	epoch := s.epoch
	key := s.req.PublicApiKey
	s.mu.Unlock()

	mode, err := s.backend.GetAPIKeyStatus(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opening = false

	if s.epoch != epoch {
		// closed while the lookup was in flight
		return nil
	}

	if err != nil {
		s.lastError = paysofter.ErrorMessage(err)
		logger.Warning.Printf("key status lookup failed for session %s: %s", s.id, s.lastError)
		return &FlowError{Kind: KeyStatusLookupFailed, Message: s.lastError, Err: err}
	}

	s.mode = mode
	s.opened = true
	s.lastError = ""
	s.step = STEP_SELECT
	logger.Info.Printf("checkout session %s opened in %s mode", s.id, mode.ToString())
	return nil
}

// SelectOption switches the active payment option. Selecting a disabled,
// unknown or already-active option is a silent no-op. A real switch resets
// the sub-flow and invalidates in-flight backend results.
func (s *Session) SelectOption(opt enum.PayOptionEnum) error {
	s.mu.Lock()
	if !s.mode.IsResolved() {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}

	if !s.selector.Select(opt) {
		s.mu.Unlock()
		return nil
	}

	s.resetSubFlowLocked()
	s.mu.Unlock()

	_ = s.store.Clear(s.id)
	return nil
}

// AcceptTerms marks the promise lines as accepted. It has no effect outside
// an open session.
func (s *Session) AcceptTerms() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mode.IsResolved() {
		return ErrSessionNotOpen
	}
	s.terms.Accept()
	return nil
}

// SetDuration records the promised settlement window.
func (s *Session) SetDuration(d string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mode.IsResolved() {
		return ErrSessionNotOpen
	}
	return s.terms.SetDuration(d)
}

// SubmitPromise advances the promise flow to the fund-account form. It is
// rejected until the terms gate is open.
func (s *Session) SubmitPromise() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mode.IsResolved() {
		return ErrSessionNotOpen
	}
	if s.selector.Selected() != enum.PAY_OPTION_PROMISE {
		return ErrFlowNotReady
	}
	if !s.terms.Accepted() {
		return ErrTermsNotAccepted
	}
	s.step = STEP_FUND_ACCOUNT
	return nil
}

// FundAccount takes the payer's account id and security code, asks the
// backend to issue an OTP (live mode) or generates one locally (test mode),
// persists the debit context and moves the flow to OTP entry.
func (s *Session) FundAccount(ctx context.Context, accountId, securityCode string) error {
	s.mu.Lock()
	if !s.mode.IsResolved() {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}

	switch s.selector.Selected() {
	case enum.PAY_OPTION_FUND:
		// the fund option goes straight to the debit form
	case enum.PAY_OPTION_PROMISE:
		if !s.terms.Accepted() {
			s.mu.Unlock()
			return ErrTermsNotAccepted
		}
		if s.step != STEP_FUND_ACCOUNT {
			s.mu.Unlock()
			return ErrFlowNotReady
		}
	default:
		s.mu.Unlock()
		return ErrFlowNotReady
	}

	epoch := s.epoch
	mode := s.mode
	req := s.req
	s.mu.Unlock()

	if mode == enum.KEY_STATUS_LIVE {
		err := s.backend.SendDebitFundAccountOTP(ctx, &paysofter.DebitFundAccountRequest{
			AccountID:    accountId,
			SecurityCode: securityCode,
			Amount:       req.Amount,
			Currency:     req.Currency,
			PublicAPIKey: req.PublicApiKey,
			BuyerEmail:   req.Email,
		})
		if err != nil {
			return s.recordFailure(epoch, FLOW_IDLE, classifyKind(err, OtpRejected), err)
		}
	}

	fs := &FundSession{
		AccountId:    accountId,
		Email:        req.Email,
		Amount:       req.Amount,
		Currency:     req.Currency,
		PublicApiKey: req.PublicApiKey,
	}
	if err := s.store.Save(s.id, fs); err != nil {
		return s.recordFailure(epoch, FLOW_IDLE, TransportError, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}

	s.flowState = FLOW_OTP_ISSUED
	s.step = STEP_VERIFY_OTP
	s.lastError = ""
	s.resendMessage = ""
	s.createdAt = time.Now().Format(createdAtLayout)

	if mode == enum.KEY_STATUS_TEST {
		s.generatedOtp = helper.GenerateRandomNum(otpLength)
		s.otpMessage = testOtpMessage
	} else {
		s.generatedOtp = ""
		s.otpMessage = ""
	}

	return nil
}

// VerifyOTP submits the buyer-entered code, then chains straight into
// settlement on success. Failures park the flow in a retryable state with
// a displayable message.
func (s *Session) VerifyOTP(ctx context.Context, otp string) error {
	s.mu.Lock()
	if !s.mode.IsResolved() {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	if s.flowState != FLOW_OTP_ISSUED && s.flowState != FLOW_VERIFY_FAILED {
		s.mu.Unlock()
		return ErrFlowNotReady
	}

	s.flowState = FLOW_VERIFYING
	s.lastError = ""
	epoch := s.epoch
	duration := s.terms.Duration()
	selected := s.selector.Selected()
	req := s.req
	createdAt := s.createdAt
	s.mu.Unlock()

	fs, err := s.store.Load(s.id)
	if err != nil {
		return s.recordFailure(epoch, FLOW_VERIFY_FAILED, TransportError, err)
	}
	if fs == nil {
		return s.recordFailure(epoch, FLOW_VERIFY_FAILED, TransportError, ErrFlowNotReady)
	}

	err = s.backend.VerifyOTP(ctx, &paysofter.VerifyOTPRequest{
		OTP:          otp,
		AccountID:    fs.AccountId,
		Amount:       fs.Amount,
		Currency:     fs.Currency,
		PublicAPIKey: fs.PublicApiKey,
		BuyerEmail:   fs.Email,
	})
	if err != nil {
		return s.recordFailure(epoch, FLOW_VERIFY_FAILED, classifyKind(err, OtpRejected), err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return nil
	}
	s.flowState = FLOW_SETTLEMENT_PENDING
	s.mu.Unlock()

	initiate := &paysofter.InitiateTransactionRequest{
		BuyerEmail:    fs.Email,
		Amount:        fs.Amount,
		Currency:      fs.Currency,
		AccountID:     fs.AccountId,
		PublicAPIKey:  fs.PublicApiKey,
		Qty:           req.Qty,
		ProductName:   req.ProductName,
		ReferenceID:   req.ReferenceId,
		CreatedAt:     createdAt,
		PaymentMethod: paymentMethod,
	}
	if selected == enum.PAY_OPTION_PROMISE {
		initiate.Duration = duration
	}

	if err := s.backend.InitiateTransaction(ctx, initiate); err != nil {
		return s.recordFailure(epoch, FLOW_SETTLEMENT_FAILED, classifyKind(err, SettlementRejected), err)
	}

	s.settle(epoch, selected)
	return nil
}

// settle flips the session to its terminal success state. The merchant
// callback fires at most once per session; the success banner holds for the
// configured delay before the terminal screen replaces it.
func (s *Session) settle(epoch int, selected enum.PayOptionEnum) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}

	s.flowState = FLOW_SETTLED
	s.settledAt = time.Now()
	s.lastError = ""

	fire := false
	if !s.hasHandledSuccess {
		s.hasHandledSuccess = true
		s.showSuccessMsg = true
		fire = true

		if selected == enum.PAY_OPTION_PROMISE {
			s.otpMessage = promiseSuccessMessage
		} else {
			s.otpMessage = paymentSuccessMessage
		}

		s.successTimer = time.AfterFunc(s.opts.SuccessDelay, func() {
			s.mu.Lock()
			if s.epoch != epoch {
				s.mu.Unlock()
				return
			}
			s.showSuccessMsg = false
			s.showSuccessScreen = true
			s.step = STEP_SETTLED
			s.mu.Unlock()

			_ = s.store.Clear(s.id)
		})
	}
	cb := s.callbacks.OnSuccess
	s.mu.Unlock()

	if fire {
		logger.Info.Printf("checkout session %s settled via %s", s.id, selected.ToString())
		if cb != nil {
			cb()
		}
	}
}

// ResendOTP restarts the resend cooldown and surfaces a confirmation
// message. It performs no backend call; the originally issued code stays
// valid. Calls while the cooldown runs are rejected without side effects.
// The whole call holds s.mu so a concurrent Close cannot slip between the
// flow-state check and arming the countdown and be left with a live ticker
// on a torn-down session.
func (s *Session) ResendOTP() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.IsResolved() {
		return ErrSessionNotOpen
	}
	if s.flowState != FLOW_OTP_ISSUED && s.flowState != FLOW_VERIFY_FAILED {
		return ErrFlowNotReady
	}

	if !s.countdown.Start() {
		return ErrResendDisabled
	}

	s.resendMessage = "OTP resent to " + helper.MaskEmail(s.req.Email) + " successfully."
	return nil
}

// Close tears the session down. It is idempotent: the first call on an
// opened session fires OnClose, clears the persisted debit context, cancels
// timers and resets every field, the option selection included; later calls
// do nothing observable.
func (s *Session) Close() {
	s.mu.Lock()
	wasOpen := s.opened
	s.epoch++
	s.opened = false
	s.mode = enum.KEY_STATUS_UNKNOWN
	s.selector = newOptionSelector(s.req.Flags)
	s.resetSubFlowLocked()
	s.hasHandledSuccess = false
	cb := s.callbacks.OnClose
	s.mu.Unlock()

	_ = s.store.Clear(s.id)

	if wasOpen {
		logger.Info.Printf("checkout session %s closed", s.id)
		if cb != nil {
			cb()
		}
	}
}

// resetSubFlowLocked clears everything below the option selector. Callers
// hold s.mu. The epoch bump makes any in-flight backend result a no-op.
func (s *Session) resetSubFlowLocked() {
	s.epoch++
	s.terms.Reset()
	s.step = STEP_SELECT
	s.flowState = FLOW_IDLE
	s.generatedOtp = ""
	s.otpMessage = ""
	s.resendMessage = ""
	s.lastError = ""
	s.showSuccessMsg = false
	s.showSuccessScreen = false
	s.settledAt = time.Time{}
	s.createdAt = ""

	if s.successTimer != nil {
		s.successTimer.Stop()
		s.successTimer = nil
	}
	s.countdown.Stop()
}

// recordFailure stores a displayable error and parks the flow in the given
// state, unless the session moved on while the backend call was in flight.
func (s *Session) recordFailure(epoch int, state FlowState, kind ErrorKind, err error) error {
	msg := paysofter.ErrorMessage(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}

	s.flowState = state
	s.lastError = msg
	logger.Warning.Printf("checkout session %s: %s: %s", s.id, kind, msg)
	return &FlowError{Kind: kind, Message: msg, Err: err}
}

// classifyKind maps a structured backend rejection to the step-specific
// kind and everything else to a transport error.
func classifyKind(err error, rejected ErrorKind) ErrorKind {
	var apiErr *paysofter.APIError
	if errors.As(err, &apiErr) {
		return rejected
	}
	return TransportError
}
