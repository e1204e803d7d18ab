package beneficiary

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const accessKeyBytes = 32

// NewAccessKey generates a high-entropy capability token from the OS
// random source. 64 hex characters: infeasible to guess or enumerate.
func NewAccessKey() (string, error) {
	buf := make([]byte, accessKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
