package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenerateKey joins prefix and id with a colon.
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// HashKey returns a hex sha256 over the JSON encoding of parts. Struct
// fields encode in declaration order, so equal values hash equally.
func HashKey(parts ...interface{}) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("hash key: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
