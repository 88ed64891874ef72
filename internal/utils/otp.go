package utils

import (
	"time" // Code generation window

	"github.com/pquerna/otp"      // OTP algorithm constants
	"github.com/pquerna/otp/totp" // TOTP secret and code generation
)

// OTPTTL is how long a sent verification code stays valid
const OTPTTL = 5 * time.Minute

// GenerateOTP produces a 6-digit verification code from a fresh TOTP secret
// bound to the phone number. The code is what gets delivered to the user; the
// secret is throwaway, the code itself is held in Redis until it expires.
func GenerateOTP(phone string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "antidote",
		AccountName: phone,
	})
	if err != nil {
		return "", err
	}
	return totp.GenerateCodeCustom(key.Secret(), time.Now(), totp.ValidateOpts{
		Period:    uint(OTPTTL / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
