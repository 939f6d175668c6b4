package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotOwner is returned when a caller attempts to modify a profile they do
// not own.
var ErrNotOwner = errors.New("profile does not belong to caller")

// ErrPrivacyNotFound is returned by PrivacyRepository implementations when a
// profile has no privacy row. It is the only repo error GetPrivacy maps to
// defaults; anything else surfaces so a failed lookup never unlocks a gated
// profile.
var ErrPrivacyNotFound = errors.New("privacy settings not found")

const minAccessPasswordLen = 6

type Service struct {
	profiles ProfileRepository
	contacts ContactRepository
	privacy  PrivacyRepository

	onPasswordChange func(profileID uuid.UUID)
}

func NewService(profiles ProfileRepository, contacts ContactRepository, privacy PrivacyRepository) *Service {
	return &Service{profiles: profiles, contacts: contacts, privacy: privacy}
}

// OnPasswordChange registers a hook invoked after the access password is set,
// rotated, or cleared. The server uses it to revoke outstanding access grants
// earned under the previous password.
func (s *Service) OnPasswordChange(fn func(profileID uuid.UUID)) {
	s.onPasswordChange = fn
}

func (s *Service) notifyPasswordChange(profileID uuid.UUID) {
	if s.onPasswordChange != nil {
		s.onPasswordChange(profileID)
	}
}

// -- Profile --

// CreateProfile validates and stores a new profile, creating its privacy
// settings row with defaults in the same call.
func (s *Service) CreateProfile(ctx context.Context, p *Profile) error {
	if p.OwnerID == uuid.Nil {
		return fmt.Errorf("owner_id is required")
	}
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return err
	}
	return s.privacy.Create(ctx, DefaultPrivacySettings(p.ID))
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// GetOwnedProfile fetches a profile and verifies the caller owns it.
func (s *Service) GetOwnedProfile(ctx context.Context, ownerID, id uuid.UUID) (*Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, ownerID uuid.UUID, p *Profile) error {
	existing, err := s.GetOwnedProfile(ctx, ownerID, p.ID)
	if err != nil {
		return err
	}
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	p.OwnerID = existing.OwnerID
	return s.profiles.Update(ctx, p)
}

func (s *Service) DeleteProfile(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetOwnedProfile(ctx, ownerID, id); err != nil {
		return err
	}
	return s.profiles.Delete(ctx, id)
}

func (s *Service) ListProfilesByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Profile, int, error) {
	return s.profiles.ListByOwner(ctx, ownerID, limit, offset)
}

// -- Emergency Contacts --

func (s *Service) AddContact(ctx context.Context, ownerID uuid.UUID, c *EmergencyContact) error {
	if _, err := s.GetOwnedProfile(ctx, ownerID, c.ProfileID); err != nil {
		return err
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return s.contacts.Create(ctx, c)
}

func (s *Service) UpdateContact(ctx context.Context, ownerID uuid.UUID, c *EmergencyContact) error {
	existing, err := s.contacts.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if _, err := s.GetOwnedProfile(ctx, ownerID, existing.ProfileID); err != nil {
		return err
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	c.ProfileID = existing.ProfileID
	return s.contacts.Update(ctx, c)
}

func (s *Service) DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error {
	existing, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.GetOwnedProfile(ctx, ownerID, existing.ProfileID); err != nil {
		return err
	}
	return s.contacts.Delete(ctx, id)
}

func (s *Service) ListContacts(ctx context.Context, profileID uuid.UUID) ([]*EmergencyContact, error) {
	return s.contacts.ListByProfile(ctx, profileID)
}

// -- Privacy Settings --

// GetPrivacy returns the privacy settings for a profile. A profile without a
// privacy row (created before defaults existed) evaluates with defaults; any
// other repo error is returned as-is.
func (s *Service) GetPrivacy(ctx context.Context, profileID uuid.UUID) (*PrivacySettings, error) {
	ps, err := s.privacy.GetByProfile(ctx, profileID)
	if errors.Is(err, ErrPrivacyNotFound) {
		return DefaultPrivacySettings(profileID), nil
	}
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// UpdatePrivacy replaces the toggles on a profile's privacy row. The password
// hash is managed separately via SetAccessPassword / ClearAccessPassword.
func (s *Service) UpdatePrivacy(ctx context.Context, ownerID uuid.UUID, ps *PrivacySettings) error {
	if _, err := s.GetOwnedProfile(ctx, ownerID, ps.ProfileID); err != nil {
		return err
	}
	existing, err := s.GetPrivacy(ctx, ps.ProfileID)
	if err != nil {
		return err
	}
	if ps.RequirePassword && existing.AccessPasswordHash == nil {
		return fmt.Errorf("set an access password before enabling require_password")
	}
	ps.AccessPasswordHash = existing.AccessPasswordHash
	return s.privacy.Update(ctx, ps)
}

// SetAccessPassword hashes and stores the profile's access password and turns
// the password gate on.
func (s *Service) SetAccessPassword(ctx context.Context, ownerID, profileID uuid.UUID, password string) error {
	if _, err := s.GetOwnedProfile(ctx, ownerID, profileID); err != nil {
		return err
	}
	if len(password) < minAccessPasswordLen {
		return fmt.Errorf("access password must be at least %d characters", minAccessPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash access password: %w", err)
	}
	ps, err := s.GetPrivacy(ctx, profileID)
	if err != nil {
		return err
	}
	h := string(hash)
	ps.AccessPasswordHash = &h
	ps.RequirePassword = true
	if err := s.privacy.Update(ctx, ps); err != nil {
		return err
	}
	s.notifyPasswordChange(profileID)
	return nil
}

// ClearAccessPassword removes the password gate entirely.
func (s *Service) ClearAccessPassword(ctx context.Context, ownerID, profileID uuid.UUID) error {
	if _, err := s.GetOwnedProfile(ctx, ownerID, profileID); err != nil {
		return err
	}
	ps, err := s.GetPrivacy(ctx, profileID)
	if err != nil {
		return err
	}
	ps.AccessPasswordHash = nil
	ps.RequirePassword = false
	if err := s.privacy.Update(ctx, ps); err != nil {
		return err
	}
	s.notifyPasswordChange(profileID)
	return nil
}
