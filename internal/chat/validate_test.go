package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid lowercase", "0x" + strings.Repeat("ab12cd34ef", 4), true},
		{"valid uppercase hex", "0x" + strings.Repeat("AB12CD34EF", 4), true},
		{"valid mixed case", "0xAbCdEf0123456789aBcDeF0123456789abcdef01", true},
		{"missing prefix", strings.Repeat("ab12cd34ef", 4) + "12", false},
		{"39 hex digits", "0x" + strings.Repeat("a", 39), false},
		{"41 hex digits", "0x" + strings.Repeat("a", 41), false},
		{"non-hex character", "0x" + strings.Repeat("a", 39) + "g", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsValidAddress(tt.in))
		})
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"length 3", "abc", true},
		{"length 20", strings.Repeat("a", 20), true},
		{"length 2", "ab", false},
		{"length 21", strings.Repeat("a", 21), false},
		{"underscore and hyphen", "fish_er-42", true},
		{"trimmed before check", "  alice  ", true},
		{"space inside", "a b c", false},
		{"punctuation", "alice!", false},
		{"unicode letter", "ál1ce", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsValidUsername(tt.in))
		})
	}
}

func TestSanitizeMessage(t *testing.T) {
	require.Equal(t, "hello", SanitizeMessage("  hello \n"))
	require.Equal(t, "", SanitizeMessage("   \t\n"))

	long := strings.Repeat("x", MaxMessageLen+100)
	require.Len(t, SanitizeMessage(long), MaxMessageLen)

	// rune truncation, not byte truncation
	runes := strings.Repeat("ä", MaxMessageLen+1)
	require.Equal(t, MaxMessageLen, len([]rune(SanitizeMessage(runes))))
}

func TestReplyQuoteComplete(t *testing.T) {
	require.False(t, (*ReplyQuote)(nil).Complete())
	require.False(t, (&ReplyQuote{ID: "m1", Username: "alice"}).Complete())
	require.False(t, (&ReplyQuote{Username: "alice", Message: "hi"}).Complete())
	require.True(t, (&ReplyQuote{ID: "m1", Username: "alice", Message: "hi"}).Complete())
}
