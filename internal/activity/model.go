package activity

import "time"

// Entry types recorded by the audit trail.
const (
	TypeHeartbeat           = "heartbeat"
	TypeAssetAdded          = "asset_added"
	TypeAssetDeleted        = "asset_deleted"
	TypeBeneficiaryAdded    = "beneficiary_added"
	TypeBeneficiaryRemoved  = "beneficiary_removed"
	TypeBeneficiaryVerified = "beneficiary_verified"
	TypeDMSTriggered        = "dms_triggered"
	TypeDMSReactivated      = "dms_reactivated"
	TypeVaultAccessed       = "vault_accessed"
)

// Entry is a single append-only audit record. Entries are never mutated
// or deleted after creation.
type Entry struct {
	ID        string
	UserID    string
	Type      string
	Message   string
	CreatedAt time.Time
}
