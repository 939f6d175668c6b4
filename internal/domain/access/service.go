package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/medid/medid/internal/domain/auditlog"
	"github.com/medid/medid/internal/domain/profile"
)

// ProfileSource is the slice of the profile service the evaluator needs.
type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	GetPrivacy(ctx context.Context, profileID uuid.UUID) (*profile.PrivacySettings, error)
	ListContacts(ctx context.Context, profileID uuid.UUID) ([]*profile.EmergencyContact, error)
}

// AuditSink records access outcomes.
type AuditSink interface {
	Append(ctx context.Context, rec *auditlog.Record) error
}

// RequestMeta carries request attribution into the audit trail.
type RequestMeta struct {
	IPAddress     string
	UserAgent     string
	ViaShareToken bool
}

type Service struct {
	profiles ProfileSource
	audit    AuditSink
	grants   *GrantStore
	shares   *ShareStore
	logger   zerolog.Logger
	nowFn    func() time.Time
}

func NewService(profiles ProfileSource, audit AuditSink, grants *GrantStore, shares *ShareStore, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		audit:    audit,
		grants:   grants,
		shares:   shares,
		logger:   logger.With().Str("component", "access").Logger(),
		nowFn:    time.Now,
	}
}

// record writes one audit row for an access outcome. A failed write is
// logged rather than surfaced so a storage hiccup cannot block emergency
// access to the profile.
func (s *Service) record(ctx context.Context, v Viewer, profileID uuid.UUID, action string, professional bool, meta RequestMeta) {
	rec := &auditlog.Record{
		ProfileID:     profileID,
		ViewerName:    v.Name,
		Action:        action,
		Professional:  professional,
		ViaShareToken: meta.ViaShareToken,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		OccurredAt:    s.nowFn(),
	}
	if v.ID != uuid.Nil {
		id := v.ID
		rec.ViewerID = &id
	}
	if len(v.Roles) > 0 {
		rec.ViewerRole = v.Roles[0]
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Error().Err(err).
			Str("profile_id", profileID.String()).
			Str("action", action).
			Msg("failed to write access log record")
	}
}

// View evaluates the viewer against the profile's privacy settings, records
// the outcome, and returns the profile with its emergency contacts when
// access is granted.
func (s *Service) View(ctx context.Context, v Viewer, profileID uuid.UUID, meta RequestMeta) (*ProfileView, error) {
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	ps, err := s.profiles.GetPrivacy(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("loading privacy settings: %w", err)
	}

	// Anonymous share viewers hold grants under the nil viewer id, so the
	// lookup runs for every viewer.
	grantExpiry := s.grants.ExpiresAt(v.ID, profileID)

	eval := Evaluate(v, p.OwnerID, ps, grantExpiry, s.nowFn())

	switch eval.Decision {
	case DecisionDenied:
		s.record(ctx, v, profileID, auditlog.ActionDenied, false, meta)
		return nil, ErrDenied
	case DecisionPasswordRequired:
		s.record(ctx, v, profileID, auditlog.ActionDenied, false, meta)
		return nil, ErrPasswordRequired
	}

	s.record(ctx, v, profileID, auditlog.ActionView, eval.Professional, meta)

	contacts, err := s.profiles.ListContacts(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}
	return &ProfileView{Profile: p, Contacts: contacts, Evaluation: eval}, nil
}

// VerifyPassword checks the access password and, on success, grants the
// viewer temporary access to the profile.
func (s *Service) VerifyPassword(ctx context.Context, v Viewer, profileID uuid.UUID, password string, meta RequestMeta) (Evaluation, error) {
	ps, err := s.profiles.GetPrivacy(ctx, profileID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("loading privacy settings: %w", err)
	}
	if ps.AccessPasswordHash == nil {
		s.record(ctx, v, profileID, auditlog.ActionPasswordDenied, false, meta)
		return Evaluation{}, ErrNoPasswordSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*ps.AccessPasswordHash), []byte(password)); err != nil {
		s.record(ctx, v, profileID, auditlog.ActionPasswordDenied, false, meta)
		return Evaluation{}, ErrInvalidPassword
	}

	expiry := s.grants.Grant(v.ID, profileID)
	s.record(ctx, v, profileID, auditlog.ActionPasswordGranted, false, meta)
	return Evaluation{Decision: DecisionFull, ExpiresAt: expiry, Reason: "password grant"}, nil
}

// CreateShare issues a share token for a profile the caller owns.
func (s *Service) CreateShare(ctx context.Context, owner Viewer, profileID uuid.UUID, meta RequestMeta) (ShareLink, error) {
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return ShareLink{}, fmt.Errorf("loading profile: %w", err)
	}
	if p.OwnerID != owner.ID {
		return ShareLink{}, profile.ErrNotOwner
	}

	link, err := s.shares.Create(profileID)
	if err != nil {
		return ShareLink{}, err
	}
	s.record(ctx, owner, profileID, auditlog.ActionShareCreated, false, meta)
	return link, nil
}

// ResolveShare maps a share token back to its profile.
func (s *Service) ResolveShare(token string) (ShareLink, error) {
	link, ok := s.shares.Resolve(token)
	if !ok {
		return ShareLink{}, ErrShareNotFound
	}
	return link, nil
}
