package cryptox

import (
	"strings"
	"unicode"
)

const specialChars = "!@#$%^&*()_+-=[]{}|;:',.<>?/~`"

// PasswordStrength scores a password 0–100.
//
// Breakdown:
//
//	length ≥8  → +20   length ≥12 → +15   length ≥16 → +10
//	upper      → +15   lower      → +10   digit      → +10
//	special    → +15   mix (≥3 categories) → +5
func PasswordStrength(pwd string) int {
	s := 0
	if len(pwd) >= 8 {
		s += 20
	}
	if len(pwd) >= 12 {
		s += 15
	}
	if len(pwd) >= 16 {
		s += 10
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range pwd {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		case strings.ContainsRune(specialChars, c):
			hasSpecial = true
		}
	}

	cats := 0
	for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if ok {
			cats++
		}
	}
	if hasUpper {
		s += 15
	}
	if hasLower {
		s += 10
	}
	if hasDigit {
		s += 10
	}
	if hasSpecial {
		s += 15
	}
	if cats >= 3 {
		s += 5
	}

	if s > 100 {
		s = 100
	}
	return s
}

// StrengthLabel maps a PasswordStrength score onto a display tier.
func StrengthLabel(score int) string {
	switch {
	case score >= 70:
		return "Military Grade"
	case score >= 40:
		return "Professional"
	default:
		return "Casual"
	}
}
