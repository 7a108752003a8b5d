package enum

type KeyStatusEnum string

const (
	KEY_STATUS_UNKNOWN KeyStatusEnum = ""
	KEY_STATUS_LIVE    KeyStatusEnum = "live"
	KEY_STATUS_TEST    KeyStatusEnum = "test"
)

func (e KeyStatusEnum) ToString() string {
	switch e {
	case KEY_STATUS_LIVE:
		return "live"
	case KEY_STATUS_TEST:
		return "test"
	}
	return ""
}

func (e KeyStatusEnum) IsValid() bool {
	switch e {
	case KEY_STATUS_LIVE, KEY_STATUS_TEST:
		return true
	}
	return false
}

// IsResolved reports whether the key status lookup has completed. Payment
// options must never be offered while the status is unresolved.
func (e KeyStatusEnum) IsResolved() bool {
	return e == KEY_STATUS_LIVE || e == KEY_STATUS_TEST
}
