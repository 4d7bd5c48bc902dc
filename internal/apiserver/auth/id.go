package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// generateID 生成带前缀的随机 ID，如 usr-a1b2c3d4e5f6
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
