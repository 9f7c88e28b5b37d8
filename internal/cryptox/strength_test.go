package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		pwd  string
		want int
	}{
		{"", 0},
		{"abc", 10},                 // lower only, too short
		{"abcdefgh", 30},            // length 8 + lower
		{"Abcdefgh1", 60},           // upper+lower+digit+mix
		{"Abcdefgh1!xx", 90},        // 12 chars, all categories
		{"Abcdefgh1!xxAbcd", 100},   // capped
		{"0123456789012345", 55},    // long but digits only
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, PasswordStrength(tc.pwd), "pwd=%q", tc.pwd)
	}
}

func TestStrengthLabel_Tiers(t *testing.T) {
	assert.Equal(t, "Casual", StrengthLabel(0))
	assert.Equal(t, "Casual", StrengthLabel(39))
	assert.Equal(t, "Professional", StrengthLabel(40))
	assert.Equal(t, "Professional", StrengthLabel(69))
	assert.Equal(t, "Military Grade", StrengthLabel(70))
	assert.Equal(t, "Military Grade", StrengthLabel(100))
}
