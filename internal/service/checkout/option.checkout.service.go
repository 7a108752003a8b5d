package checkout

import (
	"paysofter-checkout/internal/common/enum"

	"github.com/samber/lo"
)

// OptionFlags mirrors the per-merchant toggles that decide which payment
// options a session exposes.
type OptionFlags struct {
	ShowPromiseOption bool `json:"show_promise_option"`
	ShowCardOption    bool `json:"show_card_option"`
	ShowFundOption    bool `json:"show_fund_option"`
}

// optionPriority is the order used both for listing and for picking the
// default selection.
var optionPriority = []enum.PayOptionEnum{
	enum.PAY_OPTION_PROMISE,
	enum.PAY_OPTION_CARD,
	enum.PAY_OPTION_FUND,
}

// optionSelector tracks which payment option the buyer is currently on.
// Selection of a disabled or unknown option is a silent no-op, as is
// re-selecting the current one.
type optionSelector struct {
	flags    OptionFlags
	selected enum.PayOptionEnum
}

func newOptionSelector(flags OptionFlags) *optionSelector {
	s := &optionSelector{flags: flags}
	s.selected = s.defaultOption()
	return s
}

// defaultOption picks the highest-priority enabled option. When every flag
// is off it still falls back to the promise option so the session always has
// a live pane.
func (s *optionSelector) defaultOption() enum.PayOptionEnum {
	for _, opt := range optionPriority {
		if s.enabled(opt) {
			return opt
		}
	}
	return enum.PAY_OPTION_PROMISE
}

func (s *optionSelector) enabled(opt enum.PayOptionEnum) bool {
	switch opt {
	case enum.PAY_OPTION_PROMISE:
		return s.flags.ShowPromiseOption
	case enum.PAY_OPTION_CARD:
		return s.flags.ShowCardOption
	case enum.PAY_OPTION_FUND:
		return s.flags.ShowFundOption
	default:
		return false
	}
}

func (s *optionSelector) Enabled() []enum.PayOptionEnum {
	return lo.Filter(optionPriority, func(opt enum.PayOptionEnum, _ int) bool {
		return s.enabled(opt)
	})
}

// Select switches the active option. It reports whether the selection
// actually changed.
func (s *optionSelector) Select(opt enum.PayOptionEnum) bool {
	if !s.enabled(opt) {
		return false
	}
	if opt == s.selected {
		return false
	}
	s.selected = opt
	return true
}

func (s *optionSelector) Selected() enum.PayOptionEnum {
	return s.selected
}
