package helper

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateRandomNum returns a uniformly random numeric string of exactly
// length digits. Used for one-time codes, so the value must never be
// written to logs in cleartext.
func GenerateRandomNum(length int) string {
	if length <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			sb.WriteByte('0')
			continue
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String()
}

// MaskEmail hides the local part of an address except its first and last
// character, e.g. "buyer@example.com" -> "b***r@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}

	local := email[:at]
	if len(local) <= 2 {
		return local[:1] + "***" + email[at:]
	}
	return local[:1] + "***" + local[len(local)-1:] + email[at:]
}
