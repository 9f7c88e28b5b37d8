package vault

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Purpose tags what a pending OTP authorizes.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "reset"
)

const (
	// OTPLength is the number of decimal digits in a code.
	OTPLength = 6
	// OTPTTL is how long a pending code stays redeemable.
	OTPTTL = 300 * time.Second
	// MaxOTPAttempts is the number of wrong submissions tolerated before
	// the pending code is invalidated.
	MaxOTPAttempts = 3
)

var (
	// ErrOTPNotFound means no code is pending for the mobile number.
	ErrOTPNotFound = errors.New("no pending code, request a new one")
	// ErrOTPExpired means the pending code outlived its validity window.
	ErrOTPExpired = errors.New("code expired, request a new one")
	// ErrOTPAttempts means the attempt cap was exceeded and the code was
	// invalidated, even if a later guess would have been correct.
	ErrOTPAttempts = errors.New("too many wrong attempts, request a new code")
	// ErrOTPMismatch means the submitted code is wrong; the pending record
	// survives until the attempt cap.
	ErrOTPMismatch = errors.New("incorrect code")
)

// OTP is a pending one-time password, keyed by mobile number.
type OTP struct {
	Code     string
	Expiry   time.Time
	Purpose  Purpose
	Username string
	Attempts int
}

// GenerateOTP draws a uniformly random zero-padded 6-digit code and stores
// it for mobile, overwriting any prior pending code. The code is returned
// in-process for the caller to display; there is no delivery channel.
func (v *Vault) GenerateOTP(mobile string, purpose Purpose, username string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%0*d", OTPLength, n)

	v.pendingOTPs[mobile] = &OTP{
		Code:     code,
		Expiry:   v.now().Add(OTPTTL),
		Purpose:  purpose,
		Username: username,
	}
	v.log.Info(context.Background(), "otp generated", "mobile", mobile, "purpose", purpose)
	return code, nil
}

// VerifyOTP checks a submitted code against the pending record for mobile.
// The attempt counter is incremented before the comparison, so the fourth
// submission always invalidates the record. A successful match leaves the
// record in place for the caller to read purpose and username before
// calling ClearOTP.
func (v *Vault) VerifyOTP(mobile, submitted string) error {
	rec, found := v.pendingOTPs[mobile]
	if !found {
		return ErrOTPNotFound
	}
	if v.now().After(rec.Expiry) {
		delete(v.pendingOTPs, mobile)
		return ErrOTPExpired
	}
	rec.Attempts++
	if rec.Attempts > MaxOTPAttempts {
		delete(v.pendingOTPs, mobile)
		return ErrOTPAttempts
	}
	if strings.TrimSpace(submitted) != rec.Code {
		return ErrOTPMismatch
	}
	return nil
}

// OTPRecord returns the pending record for mobile, if any.
func (v *Vault) OTPRecord(mobile string) (*OTP, bool) {
	rec, found := v.pendingOTPs[mobile]
	return rec, found
}

// ClearOTP discards the pending record for mobile.
func (v *Vault) ClearOTP(mobile string) {
	delete(v.pendingOTPs, mobile)
}
