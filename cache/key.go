package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveKey maps a repository identifier to its cache key.
// Any string is accepted; the identifier is hashed, never parsed.
//
// Example:
//
//	cache.DeriveKey("https://github.com/my/repo") // 64 hex characters
func DeriveKey(identifier string) Key {
	sum := sha256.Sum256([]byte(identifier))
	return Key(hex.EncodeToString(sum[:]))
}
