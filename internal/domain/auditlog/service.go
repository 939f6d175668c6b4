package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RetentionPolicy bounds how long and how much access history is kept.
type RetentionPolicy struct {
	// MaxAge removes records older than this. Zero disables the age pass.
	MaxAge time.Duration
	// MaxPerProfile keeps only the newest N records per profile. Zero
	// disables the trim pass.
	MaxPerProfile int
}

// PurgeResult reports how many records each retention pass removed.
type PurgeResult struct {
	ExpiredRemoved int64 `json:"expired_removed"`
	TrimmedRemoved int64 `json:"trimmed_removed"`
}

type Service struct {
	repo  Repository
	nowFn func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFn: time.Now}
}

// Append validates and stores one access log record.
func (s *Service) Append(ctx context.Context, rec *Record) error {
	if rec.ProfileID == uuid.Nil {
		return fmt.Errorf("profile_id is required")
	}
	if rec.Action == "" {
		return fmt.Errorf("action is required")
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = s.nowFn()
	}
	return s.repo.Append(ctx, rec)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProfile(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByProfile(ctx, profileID, limit, offset)
}

func (s *Service) Search(ctx context.Context, f SearchFilter, limit, offset int) ([]*Record, int, error) {
	return s.repo.Search(ctx, f, limit, offset)
}

// Purge applies the retention policy and reports what was removed.
func (s *Service) Purge(ctx context.Context, policy RetentionPolicy) (PurgeResult, error) {
	var result PurgeResult

	if policy.MaxAge > 0 {
		n, err := s.repo.DeleteOlderThan(ctx, s.nowFn().Add(-policy.MaxAge))
		if err != nil {
			return result, fmt.Errorf("purging expired records: %w", err)
		}
		result.ExpiredRemoved = n
	}

	if policy.MaxPerProfile > 0 {
		n, err := s.repo.TrimProfiles(ctx, policy.MaxPerProfile)
		if err != nil {
			return result, fmt.Errorf("trimming per-profile records: %w", err)
		}
		result.TrimmedRemoved = n
	}

	return result, nil
}

// StartJanitor runs Purge on the given interval until ctx is cancelled.
// Failures are logged and the loop continues.
func (s *Service) StartJanitor(ctx context.Context, policy RetentionPolicy, interval time.Duration, logger zerolog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := s.Purge(ctx, policy)
				if err != nil {
					logger.Error().Err(err).Msg("audit log purge failed")
					continue
				}
				logger.Info().
					Int64("expired_removed", result.ExpiredRemoved).
					Int64("trimmed_removed", result.TrimmedRemoved).
					Msg("audit log purge completed")
			}
		}
	}()
}
