package strutils

import (
	"fmt"
	"strings"
	"unicode"
)

const VALID_HEX_DIGITS = "0123456789abcdefABCDEF"

const STRIPPED_UUID_LENGTH = 32

// Dash positions of the canonical 8-4-4-4-12 form, counted in hex digits
var uuidGroupEnds = []int{8, 12, 16, 20}

// NormalizeSessionID accepts a session id with any dashes and any case and
// returns the canonical lowercase dashed form
func NormalizeSessionID(sessionID string) (string, error) {
	var normalized strings.Builder
	normalized.Grow(STRIPPED_UUID_LENGTH + len(uuidGroupEnds))

	digits := 0
	for _, char := range sessionID {
		if char == '-' {
			continue
		}
		if !strings.ContainsRune(VALID_HEX_DIGITS, char) {
			return "", fmt.Errorf("invalid character in session id. input: '%s'", sessionID)
		}
		if digits >= STRIPPED_UUID_LENGTH {
			return "", fmt.Errorf("session id has incorrect length. input: '%s'", sessionID)
		}
		for _, end := range uuidGroupEnds {
			if digits == end {
				normalized.WriteRune('-')
			}
		}
		normalized.WriteRune(unicode.ToLower(char))
		digits++
	}
	if digits != STRIPPED_UUID_LENGTH {
		return "", fmt.Errorf("session id has incorrect length. input: '%s'", sessionID)
	}
	return normalized.String(), nil
}

func SessionIDIsNormalized(sessionID string) bool {
	normalized, err := NormalizeSessionID(sessionID)
	return err == nil && normalized == sessionID
}
