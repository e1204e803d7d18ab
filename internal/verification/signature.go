package verification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature indicates the webhook payload could not be
// authenticated. Callers must reject the delivery without touching state.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// DefaultTolerance bounds how old a signed webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

// ComputeSignature produces the hex HMAC-SHA256 of "<unix_ts>.<payload>".
// Exposed for tests and for signing outbound test fixtures.
func ComputeSignature(ts time.Time, payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader renders the provider's signature header for a payload.
func SignatureHeader(ts time.Time, payload, secret []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), ComputeSignature(ts, payload, secret))
}

// VerifySignature checks a provider signature header of the form
// "t=<unix_ts>,v1=<hex hmac>" against the raw payload. Multiple v1
// entries are accepted (key rotation); any one matching passes. A
// timestamp outside the tolerance window fails even with a valid MAC.
func VerifySignature(payload []byte, header string, secret []byte, tolerance time.Duration) error {
	if header == "" || len(secret) == 0 {
		return ErrInvalidSignature
	}

	var ts time.Time
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			unix, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = time.Unix(unix, 0)
		case "v1":
			candidates = append(candidates, v)
		}
	}

	if ts.IsZero() || len(candidates) == 0 {
		return ErrInvalidSignature
	}
	if tolerance > 0 {
		age := time.Since(ts)
		if age > tolerance || age < -tolerance {
			return ErrInvalidSignature
		}
	}

	expected := ComputeSignature(ts, payload, secret)
	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
