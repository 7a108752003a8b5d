package helper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1000", "1,000.00"},
		{"1234567.5", "1,234,567.50"},
		{"0", "0.00"},
		{"99.999", "100.00"},
		{"45.5", "45.50"},
	}

	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.want, FormatAmount(d), "amount %s", c.in)
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "b***r@example.com", MaskEmail("buyer@example.com"))
	assert.Equal(t, "a***@example.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "a@example.com", MaskEmail("a@example.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}

func TestGenerateRandomNum(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp := GenerateRandomNum(6)
		assert.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q", r)
		}
		seen[otp] = true
	}
	// 50 draws from a million values collide essentially never
	assert.Greater(t, len(seen), 45)

	assert.Equal(t, "", GenerateRandomNum(0))
	assert.Equal(t, "", GenerateRandomNum(-3))
}
