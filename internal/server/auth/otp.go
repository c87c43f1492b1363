package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999

	// DefaultOTPValidity is the policy lifetime of a one-time passcode.
	DefaultOTPValidity = 10 * time.Minute
)

// GenerateOTP produces a 6-digit numeric code drawn uniformly from
// [100000, 999999] using the crypto/rand source.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}

// OTPExpiry returns the absolute expiry timestamp for a code issued at now.
func OTPExpiry(now time.Time, validity time.Duration) time.Time {
	if validity <= 0 {
		validity = DefaultOTPValidity
	}
	return now.Add(validity)
}
