package services

import (
	"fmt"
	"strings"

	"bizdesk/pkg/utils"
)

// maxKeyLength is PayPal's custom_id limit; keys travel there unchanged.
const maxKeyLength = 127

// IdempotencyKey derives the transaction document key for an order placed by
// userID at savedAt (unix millis). Keys are never truncated: the owner must
// stay recoverable from the prefix, so an over-long userID is rejected.
func IdempotencyKey(userID string, savedAt int64) (string, error) {
	key := sanitizeKey(fmt.Sprintf("%s_%d", userID, savedAt))
	if len(key) > maxKeyLength {
		return "", fmt.Errorf("%w: user id too long for a transaction key", utils.ErrInvalidRequest)
	}
	return key, nil
}

// sanitizeKey maps every rune outside [A-Za-z0-9_-] to '_'.
func sanitizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// userFromKey recovers the owner from a key built by IdempotencyKey.
func userFromKey(key string) string {
	i := strings.LastIndexByte(key, '_')
	if i <= 0 {
		return ""
	}
	return key[:i]
}
