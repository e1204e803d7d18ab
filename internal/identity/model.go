package identity

import "time"

// DMS statuses. PENDING is reserved for graduated warnings; no automatic
// transition uses it today.
const (
	StatusActive    = "ACTIVE"
	StatusPending   = "PENDING"
	StatusTriggered = "TRIGGERED"
)

// Inactivity period bounds, in days.
const (
	MinPeriodDays = 7
	MaxPeriodDays = 90
)

// User represents a registered vault owner and carries the dead man's
// switch state. DMSStatus is mutated only through the repository's
// conditional primitives, never by plain writes.
type User struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   []byte
	DMSStatus      string
	DMSPeriodDays  int
	LastActiveAt   time.Time
	EmergencyEmail string
	CreatedAt      time.Time
}

// Period returns the configured inactivity window as a duration.
func (u User) Period() time.Duration {
	return time.Duration(u.DMSPeriodDays) * 24 * time.Hour
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
	Name     string
}
