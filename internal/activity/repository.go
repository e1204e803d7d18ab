package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists audit entries. Append-only: there is deliberately
// no update or delete operation.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed activity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a new audit entry.
func (r *PostgresRepository) Append(ctx context.Context, entry Entry) error {
	userID, err := uuid.Parse(entry.UserID)
	if err != nil {
		return err
	}
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.Exec(ctx, `INSERT INTO activity_log (id, user_id, type, message, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, userID, entry.Type, entry.Message, createdAt)
	return err
}

// ListRecent returns the newest entries for a user, newest first.
func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, type, message, created_at
        FROM activity_log WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id    uuid.UUID
			uidDB uuid.UUID
			entry Entry
		)
		if err := rows.Scan(&id, &uidDB, &entry.Type, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.ID = id.String()
		entry.UserID = uidDB.String()
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
