package checkout

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"paysofter-checkout/internal/common/enum"
	"paysofter-checkout/internal/pkg/logger"
	"paysofter-checkout/internal/pkg/paysofter"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Setup()
}

// stubBackend is a scriptable paysofter.IClient.
type stubBackend struct {
	mu sync.Mutex

	keyStatus enum.KeyStatusEnum
	keyErr    error
	keyCalls  int

	debitErr   error
	debitCalls int

	verifyErr   error
	verifyCalls int
	verifyGate  chan struct{}
	lastVerify  *paysofter.VerifyOTPRequest

	initiateErr   error
	initiateCalls int
	lastInitiate  *paysofter.InitiateTransactionRequest
}

func (b *stubBackend) GetAPIKeyStatus(ctx context.Context, publicAPIKey string) (enum.KeyStatusEnum, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keyCalls++
	if b.keyErr != nil {
		return enum.KEY_STATUS_UNKNOWN, b.keyErr
	}
	return b.keyStatus, nil
}

func (b *stubBackend) SendDebitFundAccountOTP(ctx context.Context, req *paysofter.DebitFundAccountRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.debitCalls++
	return b.debitErr
}

func (b *stubBackend) VerifyOTP(ctx context.Context, req *paysofter.VerifyOTPRequest) error {
	b.mu.Lock()
	gate := b.verifyGate
	b.verifyCalls++
	b.lastVerify = req
	err := b.verifyErr
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (b *stubBackend) InitiateTransaction(ctx context.Context, req *paysofter.InitiateTransactionRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initiateCalls++
	b.lastInitiate = req
	return b.initiateErr
}

func testRequest() PaymentRequest {
	return PaymentRequest{
		Amount:       decimal.NewFromInt(5000),
		Currency:     "NGN",
		Email:        "buyer@example.com",
		PublicApiKey: "test_pk_abc",
		ReferenceId:  "ref-001",
		Qty:          1,
		ProductName:  "Headphones",
		Flags:        OptionFlags{ShowPromiseOption: true, ShowCardOption: true, ShowFundOption: true},
	}
}

func testOptions() EngineOptions {
	return EngineOptions{
		ResendCooldown: 2,
		TickInterval:   5 * time.Millisecond,
		SuccessDelay:   20 * time.Millisecond,
	}
}

func newTestSession(t *testing.T, backend *stubBackend, cb Callbacks) (*Session, *MemoryFundSessionStore) {
	t.Helper()
	store := NewMemoryFundSessionStore()
	s := NewSession("cs_test", testRequest(), backend, store, cb, testOptions())
	return s, store
}

func openTestSession(t *testing.T, backend *stubBackend, cb Callbacks) (*Session, *MemoryFundSessionStore) {
	t.Helper()
	s, store := newTestSession(t, backend, cb)
	require.NoError(t, s.Open(context.Background()))
	return s, store
}

func TestOpenResolvesMode(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := newTestSession(t, backend, Callbacks{})

	require.NoError(t, s.Open(context.Background()))

	state := s.State()
	assert.True(t, state.Opened)
	assert.Equal(t, "test", state.Mode)
	assert.Equal(t, 1, backend.keyCalls)
	assert.Equal(t, []string{"promise", "card", "fund"}, state.EnabledOptions)
	assert.Equal(t, "promise", state.SelectedOption)
	assert.Equal(t, "5,000.00", state.FormattedAmount)
	assert.Equal(t, "b***r@example.com", state.MaskedEmail)

	// re-opening an open session must not trigger another lookup
	assert.ErrorIs(t, s.Open(context.Background()), ErrAlreadyOpen)
	assert.Equal(t, 1, backend.keyCalls)
}

func TestOpenInvalidKey(t *testing.T) {
	backend := &stubBackend{
		keyErr: &paysofter.APIError{StatusCode: http.StatusUnauthorized, Detail: "Invalid API key"},
	}
	s, _ := newTestSession(t, backend, Callbacks{})

	err := s.Open(context.Background())
	require.Error(t, err)

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, KeyStatusLookupFailed, flowErr.Kind)
	assert.Equal(t, "Invalid API key", flowErr.Message)

	state := s.State()
	assert.False(t, state.Opened)
	assert.Equal(t, "Invalid API key", state.Error)

	// the session stays closed so the merchant can retry
	backend.keyErr = nil
	backend.keyStatus = enum.KEY_STATUS_LIVE
	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, "live", s.State().Mode)
}

func TestOpenTransportErrorMessage(t *testing.T) {
	backend := &stubBackend{keyErr: errors.New("dial tcp: connection refused")}
	s, _ := newTestSession(t, backend, Callbacks{})

	err := s.Open(context.Background())
	require.Error(t, err)

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Contains(t, flowErr.Message, "connection refused")
}

func TestDefaultOptionPriority(t *testing.T) {
	cases := []struct {
		flags OptionFlags
		want  string
	}{
		{OptionFlags{ShowPromiseOption: true, ShowCardOption: true, ShowFundOption: true}, "promise"},
		{OptionFlags{ShowCardOption: true, ShowFundOption: true}, "card"},
		{OptionFlags{ShowFundOption: true}, "fund"},
		// every option disabled still falls back to promise
		{OptionFlags{}, "promise"},
	}

	for _, c := range cases {
		sel := newOptionSelector(c.flags)
		assert.Equal(t, c.want, sel.Selected().ToString())
	}
}

func TestSelectOptionRules(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := newTestSession(t, backend, Callbacks{})

	// before open every selection is rejected
	assert.ErrorIs(t, s.SelectOption(enum.PAY_OPTION_CARD), ErrSessionNotOpen)

	require.NoError(t, s.Open(context.Background()))

	// disabled and unknown options are silent no-ops
	require.NoError(t, s.SelectOption(enum.PAY_OPTION_BANK))
	assert.Equal(t, "promise", s.State().SelectedOption)

	require.NoError(t, s.SelectOption(enum.PAY_OPTION_CARD))
	assert.Equal(t, "card", s.State().SelectedOption)

	// re-selecting the active option changes nothing
	require.NoError(t, s.SelectOption(enum.PAY_OPTION_CARD))
	assert.Equal(t, "card", s.State().SelectedOption)
}

func TestSwitchingOptionResetsPromiseFlow(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := openTestSession(t, backend, Callbacks{})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	assert.Equal(t, string(STEP_FUND_ACCOUNT), s.State().Step)

	require.NoError(t, s.SelectOption(enum.PAY_OPTION_FUND))
	require.NoError(t, s.SelectOption(enum.PAY_OPTION_PROMISE))

	state := s.State()
	assert.False(t, state.TermsAccepted)
	assert.Equal(t, string(STEP_SELECT), state.Step)
}

func TestTermsGateBlocksPromise(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := openTestSession(t, backend, Callbacks{})

	assert.ErrorIs(t, s.SubmitPromise(), ErrTermsNotAccepted)
	assert.ErrorIs(t, s.FundAccount(context.Background(), "1209334573", "1180"), ErrTermsNotAccepted)

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	assert.Equal(t, string(STEP_FUND_ACCOUNT), s.State().Step)
}

func TestDefaultPromisesAndDuration(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := openTestSession(t, backend, Callbacks{})

	state := s.State()
	assert.Equal(t, defaultPromises, state.Promises)
	assert.Equal(t, "Within 1 day", state.Duration)

	require.NoError(t, s.SetDuration("2 days"))
	assert.Equal(t, "2 days", s.State().Duration)

	assert.ErrorIs(t, s.SetDuration("whenever"), ErrInvalidDuration)
}

func TestFundAccountTestMode(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, store := openTestSession(t, backend, Callbacks{})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	state := s.State()
	assert.Equal(t, string(FLOW_OTP_ISSUED), state.FlowState)
	assert.Equal(t, string(STEP_VERIFY_OTP), state.Step)
	assert.Len(t, state.GeneratedOtp, 6)
	assert.Equal(t, testOtpMessage, state.OtpMessage)

	// test mode never hits the debit endpoint
	assert.Equal(t, 0, backend.debitCalls)

	fs, err := store.Load("cs_test")
	require.NoError(t, err)
	require.NotNil(t, fs)
	assert.Equal(t, "1209334573", fs.AccountId)
	assert.Equal(t, "buyer@example.com", fs.Email)
	assert.True(t, fs.Amount.Equal(decimal.NewFromInt(5000)))
}

func TestFundAccountLiveMode(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_LIVE}
	s, _ := openTestSession(t, backend, Callbacks{})

	require.NoError(t, s.SelectOption(enum.PAY_OPTION_FUND))
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	state := s.State()
	assert.Equal(t, 1, backend.debitCalls)
	assert.Equal(t, string(FLOW_OTP_ISSUED), state.FlowState)
	// the code only exists on the backend side in live mode
	assert.Empty(t, state.GeneratedOtp)
}

func TestFundAccountDebitRejected(t *testing.T) {
	backend := &stubBackend{
		keyStatus: enum.KEY_STATUS_LIVE,
		debitErr:  &paysofter.APIError{StatusCode: http.StatusBadRequest, Detail: "Insufficient balance"},
	}
	s, _ := openTestSession(t, backend, Callbacks{})

	require.NoError(t, s.SelectOption(enum.PAY_OPTION_FUND))
	err := s.FundAccount(context.Background(), "1209334573", "1180")
	require.Error(t, err)

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, OtpRejected, flowErr.Kind)
	assert.Equal(t, "Insufficient balance", s.State().Error)
	assert.Equal(t, string(FLOW_IDLE), s.State().FlowState)
}

func settleTestSession(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))
	require.NoError(t, s.VerifyOTP(context.Background(), s.State().GeneratedOtp))
}

func TestHappyPathSettles(t *testing.T) {
	var successCount atomic.Int32
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, store := openTestSession(t, backend, Callbacks{
		OnSuccess: func() { successCount.Add(1) },
	})

	settleTestSession(t, s)

	state := s.State()
	assert.Equal(t, string(FLOW_SETTLED), state.FlowState)
	assert.True(t, state.ShowSuccessMessage)
	assert.False(t, state.ShowSuccessScreen)
	assert.Equal(t, promiseSuccessMessage, state.OtpMessage)
	assert.Equal(t, int32(1), successCount.Load())

	// verify chains straight into settlement
	assert.Equal(t, 1, backend.verifyCalls)
	assert.Equal(t, 1, backend.initiateCalls)
	require.NotNil(t, backend.lastInitiate)
	assert.Equal(t, "Paysofter Account Fund", backend.lastInitiate.PaymentMethod)
	assert.Equal(t, "Within 1 day", backend.lastInitiate.Duration)
	assert.Equal(t, "ref-001", backend.lastInitiate.ReferenceID)
	_, parseErr := time.Parse(createdAtLayout, backend.lastInitiate.CreatedAt)
	assert.NoError(t, parseErr)

	// after the delay the banner yields to the terminal screen and the
	// persisted debit context is gone
	assert.Eventually(t, func() bool {
		st := s.State()
		return st.ShowSuccessScreen && !st.ShowSuccessMessage
	}, time.Second, 5*time.Millisecond)

	// the terminal screen carries the promise confirmation pointer
	final := s.State()
	assert.Equal(t, promiseConfirmInfo, final.SuccessInfo)
	assert.Equal(t, promiseConfirmURL, final.ConfirmPromiseURL)

	fs, err := store.Load("cs_test")
	require.NoError(t, err)
	assert.Nil(t, fs)

	assert.Equal(t, int32(1), successCount.Load())
}

func TestOnSuccessAtMostOnce(t *testing.T) {
	var successCount atomic.Int32
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := openTestSession(t, backend, Callbacks{
		OnSuccess: func() { successCount.Add(1) },
	})

	settleTestSession(t, s)

	// a second confirmation must not re-fire the merchant callback
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.settle(epoch, enum.PAY_OPTION_PROMISE)
	assert.Equal(t, int32(1), successCount.Load())
}

func TestVerifyRejectedIsRetryable(t *testing.T) {
	backend := &stubBackend{
		keyStatus: enum.KEY_STATUS_TEST,
		verifyErr: &paysofter.APIError{StatusCode: http.StatusBadRequest, Detail: "Invalid OTP. Please try again."},
	}
	s, _ := openTestSession(t, backend, Callbacks{})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	err := s.VerifyOTP(context.Background(), "000000")
	require.Error(t, err)

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, OtpRejected, flowErr.Kind)

	state := s.State()
	assert.Equal(t, string(FLOW_VERIFY_FAILED), state.FlowState)
	assert.Equal(t, "Invalid OTP. Please try again.", state.Error)

	// retry with the right code succeeds
	backend.verifyErr = nil
	require.NoError(t, s.VerifyOTP(context.Background(), state.GeneratedOtp))
	assert.Equal(t, string(FLOW_SETTLED), s.State().FlowState)
}

func TestVerifyTransportError(t *testing.T) {
	backend := &stubBackend{
		keyStatus: enum.KEY_STATUS_TEST,
		verifyErr: errors.New("dial tcp: i/o timeout"),
	}
	s, _ := openTestSession(t, backend, Callbacks{})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	err := s.VerifyOTP(context.Background(), "123456")
	require.Error(t, err)

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, TransportError, flowErr.Kind)
	assert.Contains(t, s.State().Error, "i/o timeout")
}

func TestSettlementFailure(t *testing.T) {
	var successCount atomic.Int32
	backend := &stubBackend{
		keyStatus:   enum.KEY_STATUS_TEST,
		initiateErr: &paysofter.APIError{StatusCode: http.StatusConflict, Detail: "Duplicate reference"},
	}
	s, _ := openTestSession(t, backend, Callbacks{
		OnSuccess: func() { successCount.Add(1) },
	})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	err := s.VerifyOTP(context.Background(), s.State().GeneratedOtp)
	require.Error(t, err)

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, SettlementRejected, flowErr.Kind)
	assert.Equal(t, string(FLOW_SETTLEMENT_FAILED), s.State().FlowState)
	assert.Equal(t, int32(0), successCount.Load())
}

func TestCloseIdempotent(t *testing.T) {
	var closeCount atomic.Int32
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, store := openTestSession(t, backend, Callbacks{
		OnClose: func() { closeCount.Add(1) },
	})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	// move off the default option and repopulate the debit context
	require.NoError(t, s.SelectOption(enum.PAY_OPTION_FUND))
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))
	require.Equal(t, "fund", s.State().SelectedOption)

	s.Close()
	s.Close()

	assert.Equal(t, int32(1), closeCount.Load())

	// the selection returns to the default, not the last user choice
	state := s.State()
	assert.False(t, state.Opened)
	assert.Equal(t, "", state.Mode)
	assert.Equal(t, "promise", state.SelectedOption)
	assert.Equal(t, string(FLOW_IDLE), state.FlowState)
	assert.False(t, state.TermsAccepted)
	assert.Empty(t, state.Error)

	fs, err := store.Load("cs_test")
	require.NoError(t, err)
	assert.Nil(t, fs)
}

func TestCloseWithoutOpenFiresNoCallback(t *testing.T) {
	var closeCount atomic.Int32
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := newTestSession(t, backend, Callbacks{
		OnClose: func() { closeCount.Add(1) },
	})

	s.Close()
	assert.Equal(t, int32(0), closeCount.Load())
}

func TestCloseDropsInFlightVerify(t *testing.T) {
	var successCount atomic.Int32
	gate := make(chan struct{})
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST, verifyGate: gate}
	s, _ := openTestSession(t, backend, Callbacks{
		OnSuccess: func() { successCount.Add(1) },
	})

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))
	otp := s.State().GeneratedOtp

	done := make(chan error, 1)
	go func() {
		done <- s.VerifyOTP(context.Background(), otp)
	}()

	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.verifyCalls == 1
	}, time.Second, time.Millisecond)

	s.Close()
	close(gate)

	require.NoError(t, <-done)

	// the stale result must not resurrect the closed session
	state := s.State()
	assert.False(t, state.Opened)
	assert.Equal(t, string(FLOW_IDLE), state.FlowState)
	assert.Equal(t, int32(0), successCount.Load())
	assert.Equal(t, 0, backend.initiateCalls)
}

func TestResendOTP(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := openTestSession(t, backend, Callbacks{})

	// resend is meaningless before a code was issued
	assert.ErrorIs(t, s.ResendOTP(), ErrFlowNotReady)

	require.NoError(t, s.AcceptTerms())
	require.NoError(t, s.SubmitPromise())
	require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

	require.NoError(t, s.ResendOTP())

	state := s.State()
	assert.Equal(t, "OTP resent to b***r@example.com successfully.", state.ResendMessage)
	assert.True(t, state.ResendDisabled)
	assert.Positive(t, state.ResendCountdown)

	// a second resend during the cooldown is rejected without side effects
	assert.ErrorIs(t, s.ResendOTP(), ErrResendDisabled)

	// the cooldown re-enables on its own and resets the counter
	assert.Eventually(t, func() bool {
		return !s.State().ResendDisabled
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.ResendOTP())
	assert.True(t, s.State().ResendDisabled)

	// resending never touches the backend
	assert.Equal(t, 0, backend.debitCalls)
	assert.Equal(t, 0, backend.verifyCalls)
}

func TestResendRacesClose(t *testing.T) {
	// whichever order the two land in, a closed session must end up with no
	// armed countdown and no resend message
	for i := 0; i < 50; i++ {
		backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
		s, _ := openTestSession(t, backend, Callbacks{})

		require.NoError(t, s.AcceptTerms())
		require.NoError(t, s.SubmitPromise())
		require.NoError(t, s.FundAccount(context.Background(), "1209334573", "1180"))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Close()
		}()
		go func() {
			defer wg.Done()
			// rejected or not depending on who wins the lock
			_ = s.ResendOTP()
		}()
		wg.Wait()

		state := s.State()
		assert.False(t, state.Opened)
		assert.False(t, state.ResendDisabled)
		assert.Empty(t, state.ResendMessage)
	}
}

func TestVerifyBeforeFundIsRejected(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	s, _ := openTestSession(t, backend, Callbacks{})

	assert.ErrorIs(t, s.VerifyOTP(context.Background(), "123456"), ErrFlowNotReady)
	assert.Equal(t, 0, backend.verifyCalls)
}
