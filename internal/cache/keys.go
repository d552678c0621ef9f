package cache

import (
	"crypto/sha256"
	"fmt"
)

// SummaryKey generates the Redis key for a provider answer. The key covers the
// provider binding and model so switching either never serves a stale answer.
func SummaryKey(provider, model, text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("summary:v1:%s:%s:%x", provider, model, hash)
}
