package activity

import (
	"context"
	"log/slog"
)

// Service records audit entries. Recording is best-effort from the
// caller's perspective: a failed append is logged, never propagated,
// so audit trouble cannot block a state transition that already happened.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds an activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an audit entry for the user.
func (s *Service) Record(ctx context.Context, userID, entryType, message string) {
	err := s.repo.Append(ctx, Entry{UserID: userID, Type: entryType, Message: message})
	if err != nil && s.logger != nil {
		s.logger.Error("append activity entry",
			slog.String("user_id", userID),
			slog.String("type", entryType),
			slog.Any("error", err))
	}
}

// Recent lists the newest entries for the dashboard.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, userID, limit)
}
