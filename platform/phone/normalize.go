// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// SuffixLength is the number of trailing digits used to match phone numbers
// across country-code and leading-digit variations.
const SuffixLength = 8

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Digits strips everything but decimal digits from a phone number.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Suffix returns the trailing digits used for duplicate matching, or an
// empty string when the number carries fewer digits than SuffixLength.
func Suffix(input string) string {
	digits := Digits(input)
	if len(digits) < SuffixLength {
		return ""
	}
	return digits[len(digits)-SuffixLength:]
}
