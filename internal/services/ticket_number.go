package services

import (
	"fmt"
	"strings"
)

const fallbackTicketPrefix = "US"

// TicketPrefix takes the first two ASCII letters of the display name, else of
// the email local part, else "US".
func TicketPrefix(displayName, email string) string {
	if p := firstTwoLetters(displayName); p != "" {
		return p
	}
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	if p := firstTwoLetters(local); p != "" {
		return p
	}
	return fallbackTicketPrefix
}

func firstTwoLetters(s string) string {
	out := make([]byte, 0, 2)
	for i := 0; i < len(s) && len(out) < 2; i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			out = append(out, c)
		}
	}
	if len(out) < 2 {
		return ""
	}
	return strings.ToUpper(string(out))
}

// FormatTicketNo renders seq zero-padded to three digits; larger values keep
// all their digits.
func FormatTicketNo(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}
