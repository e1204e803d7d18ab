package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("user not found")

// Repository persists users. The DMS pair (dms_status, last_active_at)
// is only ever changed through single conditional statements so two
// concurrent sweeps cannot both decide to trigger.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateSettings(ctx context.Context, id string, periodDays int, emergencyEmail string) error
	// Touch moves last_active_at forward. It never changes dms_status.
	Touch(ctx context.Context, id string, at time.Time) error
	// MarkTriggered flips ACTIVE -> TRIGGERED iff last_active_at is at or
	// before the cutoff. Returns true only for the pass that performed
	// the transition, making the trigger at-most-once per episode.
	MarkTriggered(ctx context.Context, id string, cutoff time.Time) (bool, error)
	// Reactivate flips TRIGGERED -> ACTIVE and resets the clock. Explicit
	// owner action, distinct from a heartbeat.
	Reactivate(ctx context.Context, id string, at time.Time) (bool, error)
	// ListByStatus returns users currently in the given DMS status.
	ListByStatus(ctx context.Context, status string) ([]User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, password_hash, dms_status, dms_period_days, last_active_at, emergency_email, created_at`

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID, user.Email, user.Name, user.PasswordHash, user.DMSStatus,
		user.DMSPeriodDays, user.LastActiveAt.UTC(), user.EmergencyEmail, user.CreatedAt.UTC())
	return err
}

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// UpdateSettings stores the inactivity period and emergency contact.
func (r *PostgresRepository) UpdateSettings(ctx context.Context, id string, periodDays int, emergencyEmail string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET dms_period_days = $1, emergency_email = $2 WHERE id = $3`,
		periodDays, emergencyEmail, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Touch records a heartbeat.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET last_active_at = $1 WHERE id = $2`, at.UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTriggered performs the atomic trigger transition.
func (r *PostgresRepository) MarkTriggered(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET dms_status = $1
        WHERE id = $2 AND dms_status = $3 AND last_active_at <= $4`,
		StatusTriggered, userID, StatusActive, cutoff.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Reactivate performs the explicit owner transition back to ACTIVE.
func (r *PostgresRepository) Reactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET dms_status = $1, last_active_at = $2
        WHERE id = $3 AND dms_status = $4`,
		StatusActive, at.UTC(), userID, StatusTriggered)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// ListByStatus returns users in the given DMS status.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status string) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE dms_status = $1`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row rowScanner) (User, error) {
	var (
		id   uuid.UUID
		user User
	)
	if err := row.Scan(&id, &user.Email, &user.Name, &user.PasswordHash, &user.DMSStatus,
		&user.DMSPeriodDays, &user.LastActiveAt, &user.EmergencyEmail, &user.CreatedAt); err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.LastActiveAt = user.LastActiveAt.UTC()
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
