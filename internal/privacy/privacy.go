// Package privacy screens user-provided text before it may be forwarded
// to any third-party text-generation service. It is the privacy boundary
// between the vault and the assistant: hard-block keywords refuse the
// call outright, soft patterns are redacted in place.
package privacy

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenKeywords hard-block a message. Includes Indonesian variants
// carried over from the original keyword list.
var forbiddenKeywords = []string{
	"password", "private key", "seed phrase", "mnemonic",
	"secret", "pin", "cvv", "ssn", "credit card",
	"encryption key", "wallet key", "recovery phrase",
	"kata sandi", "kunci privat", "kunci enkripsi",
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

// sensitivePatterns are redacted, not blocked. Order is fixed so the
// sanitized output is deterministic.
var sensitivePatterns = []pattern{
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b\d{10,15}\b`)},
	{"url", regexp.MustCompile(`https?://[^\s]+`)},
	{"btc", regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)},
	{"eth", regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)},
	{"seed", regexp.MustCompile(`\b(\w+\s+){11,23}\w+\b`)},
	{"credential", regexp.MustCompile(`(?i)\b(password|pwd|pass|key|secret)\s*[:=]\s*\S+`)},
	{"token", regexp.MustCompile(`\b[A-Za-z0-9_-]{20,}\b`)},
}

// longHex matches opaque hexadecimal blobs (hashes, raw keys) that slip
// past the token pattern. Applied per whitespace-separated word with a
// length floor of 30.
var longHex = regexp.MustCompile(`^[a-fA-F0-9]+$`)

// Result reports the outcome of a Sanitize call.
type Result struct {
	Safe           bool
	Sanitized      string
	Warnings       []string
	BlockedReasons []string
}

// Sanitize scans text for forbidden keywords, then redacts sensitive
// patterns. The keyword scan decides Safe; redaction always runs on the
// original text regardless, so callers can log what would have leaked.
func Sanitize(text string) Result {
	result := Result{Safe: true, Sanitized: text}

	lower := strings.ToLower(text)
	for _, keyword := range forbiddenKeywords {
		if strings.Contains(lower, keyword) {
			result.Safe = false
			result.BlockedReasons = append(result.BlockedReasons,
				fmt.Sprintf("sensitive keyword detected: %q", keyword))
		}
	}

	for _, p := range sensitivePatterns {
		if p.re.MatchString(result.Sanitized) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("detected and redacted: %s", p.name))
			result.Sanitized = p.re.ReplaceAllString(result.Sanitized,
				"["+strings.ToUpper(p.name)+"_REDACTED]")
		}
	}

	redactedHex := false
	for _, word := range strings.Fields(text) {
		if len(word) > 30 && longHex.MatchString(word) {
			result.Sanitized = strings.ReplaceAll(result.Sanitized, word, "[HEX_REDACTED]")
			redactedHex = true
		}
	}
	if redactedHex {
		result.Warnings = append(result.Warnings, "detected and redacted: long hexadecimal string")
	}

	return result
}

// IsSafe reports whether text passes the keyword scan.
func IsSafe(text string) bool {
	return Sanitize(text).Safe
}
