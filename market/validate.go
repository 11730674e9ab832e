package market

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ErrValidation is the root of all input-validation failures. Callers test
// for it with errors.Is; the wrapped message carries the specifics.
var ErrValidation = errors.New("validation failed")

var (
	codeRe     = regexp.MustCompile(`^[A-Z]{2,5}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// ValidateCode normalizes and validates a currency code: 2-5 uppercase
// letters and present in the registry.
func ValidateCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("%w: empty currency code", ErrValidation)
	}
	if !codeRe.MatchString(code) {
		return "", fmt.Errorf("%w: currency code %q must be 2-5 uppercase letters", ErrValidation, code)
	}
	if !IsSupported(code) {
		return "", &CurrencyNotFoundError{Code: code}
	}
	return code, nil
}

// ValidateAmount rejects non-positive and non-finite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", ErrValidation, amount)
	}
	return nil
}

// ValidateUsername normalizes and validates a username: at least three
// characters, letters/digits/underscores only.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return "", fmt.Errorf("%w: username must be at least 3 characters", ErrValidation)
	}
	if !usernameRe.MatchString(username) {
		return "", fmt.Errorf("%w: username may contain only letters, digits and underscores", ErrValidation)
	}
	return username, nil
}

// FormatAmount renders a balance with the conventional precision for the
// currency: none for zero-decimal fiat, eight for crypto, two otherwise.
func FormatAmount(value float64, code string) string {
	decimals := 2
	switch {
	case code == "JPY" || code == "KRW" || code == "VND":
		decimals = 0
	default:
		if _, ok := registry[code].(CryptoCurrency); ok {
			decimals = 8
		}
	}
	return fmt.Sprintf("%.*f %s", decimals, value, code)
}
