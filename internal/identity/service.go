package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultPeriodDays = 30

// ErrInvalidCredentials covers both unknown email and wrong password so
// the response does not reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service manages owner account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new owner with the switch armed (ACTIVE) and the
// inactivity clock starting now.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errors.New("valid email is required")
	}
	if len(creds.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:            uuid.New().String(),
		Email:         email,
		Name:          strings.TrimSpace(creds.Name),
		PasswordHash:  hash,
		DMSStatus:     StatusActive,
		DMSPeriodDays: defaultPeriodDays,
		LastActiveAt:  now,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies credentials. A successful login counts as
// authenticated activity, so the caller should follow up with a heartbeat.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateSettings validates and stores the inactivity period and the
// optional emergency contact email.
func (s *Service) UpdateSettings(ctx context.Context, id string, periodDays int, emergencyEmail string) error {
	if periodDays < MinPeriodDays || periodDays > MaxPeriodDays {
		return fmt.Errorf("inactivity period must be between %d and %d days", MinPeriodDays, MaxPeriodDays)
	}
	emergencyEmail = strings.TrimSpace(emergencyEmail)
	if emergencyEmail != "" && !strings.Contains(emergencyEmail, "@") {
		return errors.New("emergency email is invalid")
	}
	return s.repo.UpdateSettings(ctx, id, periodDays, emergencyEmail)
}

// Get fetches an owner by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
