package chat

import (
	"strings"
	"unicode"
)

// IsValidAddress reports whether s is a wallet-style account address:
// `0x` followed by exactly 40 hex digits, case-insensitive. No checksum
// validation is performed. Note the registry keys addresses as exact
// strings, so two spellings differing only in hex case register as two
// distinct identities.
func IsValidAddress(s string) bool {
	if len(s) != 42 {
		return false
	}
	if s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsValidUsername reports whether s, after trimming, is 3-20 characters
// of letters, digits, underscore or hyphen.
func IsValidUsername(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if r == '_' || r == '-' {
			continue
		}
		if r > unicode.MaxASCII {
			return false
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// SanitizeMessage trims surrounding whitespace and truncates to the first
// MaxMessageLen characters. Truncation counts characters, it is not
// rendering-aware.
func SanitizeMessage(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxMessageLen {
		return string(r[:MaxMessageLen])
	}
	return s
}
