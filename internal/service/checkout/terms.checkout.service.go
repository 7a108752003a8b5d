package checkout

// defaultPromises is shown when the merchant passes no promise lines of its
// own.
var defaultPromises = []string{
	"Payment will be made promptly.",
	"I will confirm receipt of the product before payment is settled.",
}

// PaymentDurationChoices are the settlement windows a buyer can promise.
// The first entry is the default.
var PaymentDurationChoices = []string{
	"Within 1 day",
	"2 days",
	"3 days",
	"5 days",
	"1 week",
	"2 weeks",
	"1 month",
}

// termsGate holds the promise lines and blocks the promise flow until the
// buyer accepts them.
type termsGate struct {
	promises []string
	duration string
	accepted bool
}

func newTermsGate(promises []string) *termsGate {
	if len(promises) == 0 {
		promises = defaultPromises
	}
	return &termsGate{
		promises: promises,
		duration: PaymentDurationChoices[0],
	}
}

func (t *termsGate) Promises() []string {
	return t.promises
}

func (t *termsGate) Accept() {
	t.accepted = true
}

func (t *termsGate) Accepted() bool {
	return t.accepted
}

func (t *termsGate) SetDuration(d string) error {
	for _, choice := range PaymentDurationChoices {
		if choice == d {
			t.duration = d
			return nil
		}
	}
	return ErrInvalidDuration
}

func (t *termsGate) Duration() string {
	return t.duration
}

func (t *termsGate) Reset() {
	t.accepted = false
	t.duration = PaymentDurationChoices[0]
}
