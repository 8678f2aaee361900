package catalog

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewProjectID generates a fresh stable identifier for a project that
// was published without one. IDs are short lowercase hex, safe to use
// directly as blob keys and in share URLs.
func NewProjectID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate project id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
