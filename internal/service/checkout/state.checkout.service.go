package checkout

import (
	"paysofter-checkout/internal/common/enum"
	"paysofter-checkout/internal/pkg/helper"

	"github.com/samber/lo"
)

// SessionState is the read model a host renders from. It is a plain
// snapshot; mutating it has no effect on the session.
type SessionState struct {
	Id                 string   `json:"id"`
	Opened             bool     `json:"opened"`
	Mode               string   `json:"mode"`
	Step               string   `json:"step"`
	FlowState          string   `json:"flow_state"`
	EnabledOptions     []string `json:"enabled_options"`
	SelectedOption     string   `json:"selected_option"`
	Promises           []string `json:"promises"`
	TermsAccepted      bool     `json:"terms_accepted"`
	Duration           string   `json:"duration"`
	DurationChoices    []string `json:"duration_choices"`
	FormattedAmount    string   `json:"formatted_amount"`
	Currency           string   `json:"currency"`
	MaskedEmail        string   `json:"masked_email"`
	GeneratedOtp       string   `json:"generated_otp,omitempty"`
	OtpMessage         string   `json:"otp_message,omitempty"`
	ResendMessage      string   `json:"resend_message,omitempty"`
	ResendDisabled     bool     `json:"resend_disabled"`
	ResendCountdown    int      `json:"resend_countdown"`
	ShowSuccessMessage bool     `json:"show_success_message"`
	ShowSuccessScreen  bool     `json:"show_success_screen"`
	SuccessInfo        string   `json:"success_info,omitempty"`
	ConfirmPromiseURL  string   `json:"confirm_promise_url,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// State snapshots the session. The generated OTP is exposed in test mode
// only; in live mode the code exists solely on the backend side.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionState{
		Id:        s.id,
		Opened:    s.opened,
		Mode:      s.mode.ToString(),
		Step:      string(s.step),
		FlowState: string(s.flowState),
		EnabledOptions: lo.Map(s.selector.Enabled(), func(opt enum.PayOptionEnum, _ int) string {
			return opt.ToString()
		}),
		SelectedOption:     s.selector.Selected().ToString(),
		Promises:           s.terms.Promises(),
		TermsAccepted:      s.terms.Accepted(),
		Duration:           s.terms.Duration(),
		DurationChoices:    PaymentDurationChoices,
		FormattedAmount:    helper.FormatAmount(s.req.Amount),
		Currency:           s.req.Currency,
		MaskedEmail:        helper.MaskEmail(s.req.Email),
		OtpMessage:         s.otpMessage,
		ResendMessage:      s.resendMessage,
		ResendDisabled:     s.countdown.Disabled(),
		ResendCountdown:    s.countdown.Remaining(),
		ShowSuccessMessage: s.showSuccessMsg,
		ShowSuccessScreen:  s.showSuccessScreen,
		Error:              s.lastError,
	}

	if s.mode == enum.KEY_STATUS_TEST {
		state.GeneratedOtp = s.generatedOtp
	}

	// a settled promise points the buyer at the confirmation flow
	if s.showSuccessScreen && s.selector.Selected() == enum.PAY_OPTION_PROMISE {
		state.SuccessInfo = promiseConfirmInfo
		state.ConfirmPromiseURL = promiseConfirmURL
	}

	return state
}
