package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// -- Mock Repositories --

type mockProfileRepo struct {
	profiles map[uuid.UUID]*Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[uuid.UUID]*Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, p *Profile) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockProfileRepo) Update(_ context.Context, p *Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.profiles, id)
	return nil
}

func (m *mockProfileRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*Profile, int, error) {
	var result []*Profile
	for _, p := range m.profiles {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

type mockContactRepo struct {
	contacts map[uuid.UUID]*EmergencyContact
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[uuid.UUID]*EmergencyContact)}
}

func (m *mockContactRepo) Create(_ context.Context, c *EmergencyContact) error {
	c.ID = uuid.New()
	m.contacts[c.ID] = c
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id uuid.UUID) (*EmergencyContact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockContactRepo) Update(_ context.Context, c *EmergencyContact) error {
	m.contacts[c.ID] = c
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.contacts, id)
	return nil
}

func (m *mockContactRepo) ListByProfile(_ context.Context, profileID uuid.UUID) ([]*EmergencyContact, error) {
	var result []*EmergencyContact
	for _, c := range m.contacts {
		if c.ProfileID == profileID {
			result = append(result, c)
		}
	}
	return result, nil
}

type mockPrivacyRepo struct {
	settings map[uuid.UUID]*PrivacySettings
	getErr   error // forced GetByProfile failure
}

func newMockPrivacyRepo() *mockPrivacyRepo {
	return &mockPrivacyRepo{settings: make(map[uuid.UUID]*PrivacySettings)}
}

func (m *mockPrivacyRepo) Create(_ context.Context, ps *PrivacySettings) error {
	m.settings[ps.ProfileID] = ps
	return nil
}

func (m *mockPrivacyRepo) GetByProfile(_ context.Context, profileID uuid.UUID) (*PrivacySettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	ps, ok := m.settings[profileID]
	if !ok {
		return nil, ErrPrivacyNotFound
	}
	return ps, nil
}

func (m *mockPrivacyRepo) Update(_ context.Context, ps *PrivacySettings) error {
	m.settings[ps.ProfileID] = ps
	return nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockProfileRepo(), newMockContactRepo(), newMockPrivacyRepo())
}

func mustCreateProfile(t *testing.T, svc *Service, ownerID uuid.UUID) *Profile {
	t.Helper()
	p := &Profile{OwnerID: ownerID, FirstName: "Jane", LastName: "Doe"}
	if err := svc.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func TestCreateProfile(t *testing.T) {
	svc := newTestService()
	p := mustCreateProfile(t, svc, uuid.New())
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	ps, err := svc.GetPrivacy(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ps.EmergencyAccessEnabled {
		t.Error("expected emergency access enabled by default")
	}
	if ps.RequirePassword {
		t.Error("expected require_password off by default")
	}
}

func TestCreateProfile_NameRequired(t *testing.T) {
	svc := newTestService()
	err := svc.CreateProfile(context.Background(), &Profile{OwnerID: uuid.New(), LastName: "Doe"})
	if err == nil {
		t.Error("expected error for missing first_name")
	}
	err = svc.CreateProfile(context.Background(), &Profile{OwnerID: uuid.New(), FirstName: "Jane"})
	if err == nil {
		t.Error("expected error for missing last_name")
	}
}

func TestGetOwnedProfile_WrongOwner(t *testing.T) {
	svc := newTestService()
	p := mustCreateProfile(t, svc, uuid.New())
	_, err := svc.GetOwnedProfile(context.Background(), uuid.New(), p.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestUpdateProfile_PreservesOwner(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)

	upd := &Profile{ID: p.ID, OwnerID: uuid.New(), FirstName: "Janet", LastName: "Doe"}
	if err := svc.UpdateProfile(context.Background(), owner, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.OwnerID != owner {
		t.Error("expected owner_id to be preserved on update")
	}
}

func TestDeleteProfile_WrongOwner(t *testing.T) {
	svc := newTestService()
	p := mustCreateProfile(t, svc, uuid.New())
	err := svc.DeleteProfile(context.Background(), uuid.New(), p.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestAddContact(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)

	rel := "spouse"
	ec := &EmergencyContact{ProfileID: p.ID, Name: "John Doe", Phone: "+1 555 0100", Relationship: &rel}
	if err := svc.AddContact(context.Background(), owner, ec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ec.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}

	items, err := svc.ListContacts(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 contact, got %d", len(items))
	}
}

func TestAddContact_PhoneRequired(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)
	err := svc.AddContact(context.Background(), owner, &EmergencyContact{ProfileID: p.ID, Name: "John"})
	if err == nil {
		t.Error("expected error for missing phone")
	}
}

func TestAddContact_WrongOwner(t *testing.T) {
	svc := newTestService()
	p := mustCreateProfile(t, svc, uuid.New())
	ec := &EmergencyContact{ProfileID: p.ID, Name: "John", Phone: "+1 555 0100"}
	err := svc.AddContact(context.Background(), uuid.New(), ec)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestUpdateContact_CannotMoveProfiles(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)
	ec := &EmergencyContact{ProfileID: p.ID, Name: "John", Phone: "+1 555 0100"}
	if err := svc.AddContact(context.Background(), owner, ec); err != nil {
		t.Fatalf("add contact: %v", err)
	}

	upd := &EmergencyContact{ID: ec.ID, ProfileID: uuid.New(), Name: "John", Phone: "+1 555 0199"}
	if err := svc.UpdateContact(context.Background(), owner, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.ProfileID != p.ID {
		t.Error("expected profile_id to be preserved on update")
	}
}

func TestSetAccessPassword(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)

	if err := svc.SetAccessPassword(context.Background(), owner, p.ID, "hunter22"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ps, err := svc.GetPrivacy(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ps.RequirePassword {
		t.Error("expected require_password enabled after setting a password")
	}
	if ps.AccessPasswordHash == nil {
		t.Fatal("expected password hash to be stored")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*ps.AccessPasswordHash), []byte("hunter22")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestSetAccessPassword_TooShort(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)
	err := svc.SetAccessPassword(context.Background(), owner, p.ID, "abc")
	if err == nil {
		t.Error("expected error for short password")
	}
}

func TestClearAccessPassword(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)
	if err := svc.SetAccessPassword(context.Background(), owner, p.ID, "hunter22"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := svc.ClearAccessPassword(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ps, _ := svc.GetPrivacy(context.Background(), p.ID)
	if ps.RequirePassword || ps.AccessPasswordHash != nil {
		t.Error("expected password gate fully cleared")
	}
}

func TestUpdatePrivacy_RequirePasswordNeedsHash(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)

	ps := &PrivacySettings{ProfileID: p.ID, EmergencyAccessEnabled: true, RequirePassword: true}
	err := svc.UpdatePrivacy(context.Background(), owner, ps)
	if err == nil {
		t.Error("expected error enabling require_password without a password set")
	}
}

func TestUpdatePrivacy_PreservesHash(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)
	if err := svc.SetAccessPassword(context.Background(), owner, p.ID, "hunter22"); err != nil {
		t.Fatalf("set password: %v", err)
	}

	ps := &PrivacySettings{ProfileID: p.ID, EmergencyAccessEnabled: false, RequirePassword: true}
	if err := svc.UpdatePrivacy(context.Background(), owner, ps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := svc.GetPrivacy(context.Background(), p.ID)
	if stored.AccessPasswordHash == nil {
		t.Error("expected password hash to survive a privacy toggle update")
	}
	if stored.EmergencyAccessEnabled {
		t.Error("expected emergency access disabled")
	}
}

func TestGetPrivacy_MissingRowUsesDefaults(t *testing.T) {
	svc := newTestService()
	ps, err := svc.GetPrivacy(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ps.EmergencyAccessEnabled || ps.RequirePassword {
		t.Error("expected default settings for a profile without a privacy row")
	}
}

func TestGetPrivacy_RepoErrorSurfaces(t *testing.T) {
	privacy := newMockPrivacyRepo()
	svc := NewService(newMockProfileRepo(), newMockContactRepo(), privacy)
	p := mustCreateProfile(t, svc, uuid.New())

	privacy.getErr = errors.New("connection refused")
	ps, err := svc.GetPrivacy(context.Background(), p.ID)
	if err == nil {
		t.Fatalf("expected repo error to surface, got settings %+v", ps)
	}
}

func TestSetAccessPassword_RevokesGrants(t *testing.T) {
	svc := newTestService()
	owner := uuid.New()
	p := mustCreateProfile(t, svc, owner)

	var revoked []uuid.UUID
	svc.OnPasswordChange(func(profileID uuid.UUID) { revoked = append(revoked, profileID) })

	if err := svc.SetAccessPassword(context.Background(), owner, p.ID, "hunter22"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := svc.SetAccessPassword(context.Background(), owner, p.ID, "hunter23"); err != nil {
		t.Fatalf("rotate password: %v", err)
	}
	if err := svc.ClearAccessPassword(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("clear password: %v", err)
	}
	if len(revoked) != 3 {
		t.Fatalf("expected revocation on every password change, got %d", len(revoked))
	}
	for _, id := range revoked {
		if id != p.ID {
			t.Errorf("expected revocation for %s, got %s", p.ID, id)
		}
	}

	// A rejected password must not touch grants.
	revoked = nil
	if err := svc.SetAccessPassword(context.Background(), owner, p.ID, "shor"); err == nil {
		t.Fatal("expected short password rejected")
	}
	if len(revoked) != 0 {
		t.Errorf("expected no revocation on a rejected password, got %d", len(revoked))
	}
}
