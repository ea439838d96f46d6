// Package security analyses the passwords of a database: weak passwords,
// reused passwords and an overall score.
package security

import (
	"strings"
	"unicode/utf8"

	"github.com/forest6511/pw/pkg/entry"
)

// PasswordStrength represents the strength level of a password or API key.
type PasswordStrength int

const (
	// PasswordWeak indicates an insecure password (less than 8 chars for passwords, 16 for API keys).
	PasswordWeak PasswordStrength = iota
	// PasswordFair indicates a minimally acceptable password.
	PasswordFair
	// PasswordGood indicates a good password.
	PasswordGood
	// PasswordStrong indicates a strong password.
	PasswordStrong
)

// String returns a human-readable representation of the password strength.
func (s PasswordStrength) String() string {
	switch s {
	case PasswordWeak:
		return "Weak"
	case PasswordFair:
		return "Fair"
	case PasswordGood:
		return "Good"
	case PasswordStrong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// Points returns the score points for this strength level.
// Used in StrengthScore calculation: Weak=0, Fair=8, Good=17, Strong=25.
func (s PasswordStrength) Points() int {
	switch s {
	case PasswordWeak:
		return 0
	case PasswordFair:
		return 8
	case PasswordGood:
		return 17
	case PasswordStrong:
		return 25
	default:
		return 0
	}
}

// apiKeyMarkers identify entries holding machine-generated tokens.
var apiKeyMarkers = []string{"api_key", "apikey", "token", "access_key", "secret_key"}

// IsAPIKeyEntry reports whether the entry key names a token rather than
// a human-chosen password.
func IsAPIKeyEntry(e entry.Entry) bool {
	for _, m := range apiKeyMarkers {
		if strings.Contains(e.Key, m) {
			return true
		}
	}
	return false
}

// EntryStrength calculates the strength of the entry password.
// Tokens use the entropy-based thresholds, everything else the
// length-first password rules.
func EntryStrength(e entry.Entry) PasswordStrength {
	if IsAPIKeyEntry(e) {
		return calculateAPIKeyStrength(e.Password)
	}
	return calculatePasswordStrength(e.Password)
}

// calculatePasswordStrength evaluates human-created passwords.
// Length is the primary factor per NIST guidelines (composition rules discouraged).
// NIST SP 800-63B recommends:
// - Minimum 8 characters for user-chosen passwords
// - No complexity requirements (uppercase, numbers, symbols)
// - Focus on length and avoiding compromised passwords
func calculatePasswordStrength(value string) PasswordStrength {
	length := utf8.RuneCountInString(value)

	switch {
	case length >= 20:
		return PasswordStrong
	case length >= 14:
		return PasswordGood
	case length >= 8:
		return PasswordFair
	default:
		return PasswordWeak
	}
}

// calculateAPIKeyStrength evaluates machine-generated tokens.
// For random strings, length directly correlates with entropy:
// - 32+ chars (~128 bits for alphanumeric): Strong
// - 20+ chars (~80 bits): Good
// - 16+ chars (~64 bits): Fair
// - Less than 16: Weak
func calculateAPIKeyStrength(value string) PasswordStrength {
	length := utf8.RuneCountInString(value)

	switch {
	case length >= 32:
		return PasswordStrong
	case length >= 20:
		return PasswordGood
	case length >= 16:
		return PasswordFair
	default:
		return PasswordWeak
	}
}
