package auditlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchFilter narrows a log search. Zero values mean "any".
type SearchFilter struct {
	ProfileID uuid.UUID
	ViewerID  uuid.UUID
	Action    string
	From      time.Time
	To        time.Time
}

// Repository is the persistence interface for access log records. The log is
// append-only; Purge-related methods are the only deleters.
type Repository interface {
	Append(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Record, int, error)
	Search(ctx context.Context, f SearchFilter, limit, offset int) ([]*Record, int, error)
	// DeleteOlderThan removes records with occurred_at before cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// TrimProfiles keeps only the newest keep records per profile and
	// returns the number removed.
	TrimProfiles(ctx context.Context, keep int) (int64, error)
}
