package html

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// generateCSPNonce returns a base64-encoded 16-byte random nonce for CSP
// script-src. The page uses one nonce for the policy and every script tag.
func generateCSPNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating CSP nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
