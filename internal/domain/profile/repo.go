package profile

import (
	"context"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Profile, int, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *EmergencyContact) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error)
	Update(ctx context.Context, c *EmergencyContact) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*EmergencyContact, error)
}

type PrivacyRepository interface {
	Create(ctx context.Context, s *PrivacySettings) error
	GetByProfile(ctx context.Context, profileID uuid.UUID) (*PrivacySettings, error)
	Update(ctx context.Context, s *PrivacySettings) error
}
