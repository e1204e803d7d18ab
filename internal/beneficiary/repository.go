package beneficiary

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no beneficiary matches the lookup.
var ErrNotFound = errors.New("beneficiary not found")

// Repository persists beneficiaries. Verification status changes go
// through single conditional statements; MarkVerified in particular
// reports whether this call performed the transition so a duplicate
// webhook delivery cannot re-notify.
type Repository interface {
	Create(ctx context.Context, b Beneficiary) error
	ListByUser(ctx context.Context, userID string) ([]Beneficiary, error)
	FindByID(ctx context.Context, id string) (Beneficiary, error)
	FindByAccessKey(ctx context.Context, accessKey string) (Beneficiary, error)
	Delete(ctx context.Context, userID, id string) error
	// StartSession records a new external verification session and moves
	// the beneficiary (back) to PENDING.
	StartSession(ctx context.Context, id, sessionID string) error
	// MarkVerified flips to VERIFIED and stamps access_granted_at. Returns
	// false when the beneficiary was already VERIFIED.
	MarkVerified(ctx context.Context, id, sessionID string, at time.Time) (bool, error)
	// MarkFailed flips to FAILED after a canceled provider session.
	MarkFailed(ctx context.Context, id, sessionID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed beneficiary repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, user_id, name, email, relationship, access_key, verification_status, session_id, access_granted_at, created_at`

// Create inserts a new beneficiary.
func (r *PostgresRepository) Create(ctx context.Context, b Beneficiary) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(b.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO beneficiaries (`+columns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, userID, b.Name, b.Email, b.Relationship, b.AccessKey,
		b.VerificationStatus, b.SessionID, b.AccessGrantedAt, b.CreatedAt.UTC())
	return err
}

// ListByUser returns the owner's beneficiaries.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Beneficiary, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM beneficiaries WHERE user_id = $1 ORDER BY created_at`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// FindByID fetches a beneficiary by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Beneficiary, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return Beneficiary{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+columns+` FROM beneficiaries WHERE id = $1`, bid))
}

// FindByAccessKey looks up the capability token.
func (r *PostgresRepository) FindByAccessKey(ctx context.Context, accessKey string) (Beneficiary, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+columns+` FROM beneficiaries WHERE access_key = $1`, accessKey))
}

// Delete removes a beneficiary scoped to its owner.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	bid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM beneficiaries WHERE id = $1 AND user_id = $2`, bid, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// StartSession records a fresh verification session.
func (r *PostgresRepository) StartSession(ctx context.Context, id, sessionID string) error {
	bid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE beneficiaries SET session_id = $1, verification_status = $2 WHERE id = $3`,
		sessionID, StatusPending, bid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkVerified performs the idempotent VERIFIED transition.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id, sessionID string, at time.Time) (bool, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE beneficiaries
        SET verification_status = $1, session_id = $2, access_granted_at = $3
        WHERE id = $4 AND verification_status <> $1`,
		StatusVerified, sessionID, at.UTC(), bid)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// MarkFailed records a canceled verification attempt.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id, sessionID string) error {
	bid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE beneficiaries SET verification_status = $1, session_id = $2 WHERE id = $3`,
		StatusFailed, sessionID, bid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (Beneficiary, error) {
	b, err := scanBeneficiary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Beneficiary{}, ErrNotFound
		}
		return Beneficiary{}, err
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBeneficiary(row rowScanner) (Beneficiary, error) {
	var (
		id     uuid.UUID
		userID uuid.UUID
		b      Beneficiary
	)
	if err := row.Scan(&id, &userID, &b.Name, &b.Email, &b.Relationship, &b.AccessKey,
		&b.VerificationStatus, &b.SessionID, &b.AccessGrantedAt, &b.CreatedAt); err != nil {
		return Beneficiary{}, err
	}
	b.ID = id.String()
	b.UserID = userID.String()
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}
