package vaultgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/asset"
	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/identity"
)

var (
	// ErrOwnerActive means the owner's switch has not fired.
	ErrOwnerActive = errors.New("vault owner is still active")
	// ErrNotVerified means the beneficiary has not completed identity
	// verification.
	ErrNotVerified = errors.New("beneficiary identity is not verified")
)

// Gate releases encrypted vault contents to a beneficiary. Release
// requires both conditions at the moment of the request: the owner's
// switch is TRIGGERED and the beneficiary is VERIFIED.
type Gate struct {
	beneficiaries beneficiary.Repository
	users         identity.Repository
	assets        *asset.Service
	activity      *activity.Service
	logger        *slog.Logger
}

// NewGate builds a vault access gate.
func NewGate(
	beneficiaries beneficiary.Repository,
	users identity.Repository,
	assets *asset.Service,
	activitySvc *activity.Service,
	logger *slog.Logger,
) *Gate {
	return &Gate{
		beneficiaries: beneficiaries,
		users:         users,
		assets:        assets,
		activity:      activitySvc,
		logger:        logger,
	}
}

// Contents is what a verified beneficiary receives: the owner's name
// and the still-encrypted release forms. Decryption happens on the
// beneficiary's side with the key the owner shared out of band.
type Contents struct {
	OwnerName   string            `json:"owner_name"`
	Beneficiary string            `json:"beneficiary"`
	Assets      []asset.Encrypted `json:"assets"`
}

// Resolve checks both gate conditions for the access key and, when
// they hold, returns the encrypted contents and records the access.
func (g *Gate) Resolve(ctx context.Context, accessKey string) (Contents, error) {
	b, err := g.beneficiaries.FindByAccessKey(ctx, accessKey)
	if err != nil {
		return Contents{}, err
	}

	owner, err := g.users.FindByID(ctx, b.UserID)
	if err != nil {
		return Contents{}, err
	}

	// Order matters: an active owner is reported as such even to a
	// verified beneficiary.
	if owner.DMSStatus != identity.StatusTriggered {
		return Contents{}, ErrOwnerActive
	}
	if b.VerificationStatus != beneficiary.StatusVerified {
		return Contents{}, ErrNotVerified
	}

	encrypted, err := g.assets.EncryptedForUser(ctx, owner.ID)
	if err != nil {
		return Contents{}, err
	}

	g.activity.Record(ctx, owner.ID, activity.TypeVaultAccessed,
		fmt.Sprintf("%s accessed the vault", b.Name))
	g.logger.Info("vault released",
		slog.String("user_id", owner.ID),
		slog.String("beneficiary_id", b.ID),
		slog.Int("assets", len(encrypted)))

	return Contents{
		OwnerName:   owner.Name,
		Beneficiary: b.Name,
		Assets:      encrypted,
	}, nil
}
