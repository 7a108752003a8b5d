package enum

type PayOptionEnum string

const (
	PAY_OPTION_PROMISE  PayOptionEnum = "promise"
	PAY_OPTION_CARD     PayOptionEnum = "card"
	PAY_OPTION_FUND     PayOptionEnum = "fund"
	PAY_OPTION_BANK     PayOptionEnum = "bank"
	PAY_OPTION_TRANSFER PayOptionEnum = "transfer"
	PAY_OPTION_USSD     PayOptionEnum = "ussd"
	PAY_OPTION_QR       PayOptionEnum = "qr"
)

func (e PayOptionEnum) ToString() string {
	switch e {
	case PAY_OPTION_PROMISE:
		return "promise"
	case PAY_OPTION_CARD:
		return "card"
	case PAY_OPTION_FUND:
		return "fund"
	case PAY_OPTION_BANK:
		return "bank"
	case PAY_OPTION_TRANSFER:
		return "transfer"
	case PAY_OPTION_USSD:
		return "ussd"
	case PAY_OPTION_QR:
		return "qr"
	}
	return ""
}

func (e PayOptionEnum) IsValid() bool {
	switch e {
	case PAY_OPTION_PROMISE, PAY_OPTION_CARD, PAY_OPTION_FUND,
		PAY_OPTION_BANK, PAY_OPTION_TRANSFER, PAY_OPTION_USSD, PAY_OPTION_QR:
		return true
	}
	return false
}
