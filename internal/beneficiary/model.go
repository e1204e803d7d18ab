package beneficiary

import "time"

// Verification statuses.
const (
	StatusPending  = "PENDING"
	StatusVerified = "VERIFIED"
	StatusFailed   = "FAILED"
)

// Beneficiary is a person designated to receive vault access. The
// AccessKey is a capability token generated once at creation and never
// rotated; it is the sole correlator between the public claim flow and
// the owner's vault.
type Beneficiary struct {
	ID                 string
	UserID             string
	Name               string
	Email              string
	Relationship       string
	AccessKey          string
	VerificationStatus string
	SessionID          string // external identity-check session, may be empty
	AccessGrantedAt    *time.Time
	CreatedAt          time.Time
}
