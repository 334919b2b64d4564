package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketPrefix(t *testing.T) {
	cases := []struct {
		name, display, email, want string
	}{
		{"display name", "John Doe", "x@y.com", "JO"},
		{"skips non letters", "  1-j.o", "", "JO"},
		{"single letter falls to email", "J", "mary@example.com", "MA"},
		{"email local part only", "", "al.b@example.com", "AL"},
		{"non ascii ignored", "Åsa", "", "SA"},
		{"fallback", "", "42@example.com", "US"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TicketPrefix(tc.display, tc.email))
		})
	}
}

func TestFormatTicketNo(t *testing.T) {
	assert.Equal(t, "JO001", FormatTicketNo("JO", 1))
	assert.Equal(t, "JO002", FormatTicketNo("JO", 2))
	assert.Equal(t, "JO1000", FormatTicketNo("JO", 1000))
}
