// pkg/download/verify.go - artifact integrity verification.

package download

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// Verify checks whether the file at path matches the expected SHA-256 hash.
// An unreadable file never matches.
func Verify(path, expectedHash string) bool {
	actual := calculateHash(path)
	return actual != "" && strings.EqualFold(actual, expectedHash)
}

func calculateHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return ""
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
