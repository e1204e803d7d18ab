package asset

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the asset does not exist or belongs to another owner.
var ErrNotFound = errors.New("asset not found")

// Repository persists encrypted assets.
type Repository interface {
	Create(ctx context.Context, a Asset) error
	ListByUser(ctx context.Context, userID string) ([]Asset, error)
	Delete(ctx context.Context, userID, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed asset repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new encrypted asset.
func (r *PostgresRepository) Create(ctx context.Context, a Asset) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(a.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO assets (id, user_id, name, type, platform, ciphertext, iv, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, userID, a.Name, a.Type, a.Platform, a.Ciphertext, a.IV, a.CreatedAt.UTC())
	return err
}

// ListByUser returns the owner's assets, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Asset, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, name, type, platform, ciphertext, iv, created_at
        FROM assets WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var (
			id    uuid.UUID
			owner uuid.UUID
			a     Asset
		)
		if err := rows.Scan(&id, &owner, &a.Name, &a.Type, &a.Platform, &a.Ciphertext, &a.IV, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ID = id.String()
		a.UserID = owner.String()
		a.CreatedAt = a.CreatedAt.UTC()
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Delete removes an asset scoped to its owner.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	assetID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = $1 AND user_id = $2`, assetID, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
