package access

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medid/medid/internal/domain/profile"
)

// Decision is the outcome of evaluating a viewer against a profile's privacy
// settings.
type Decision string

const (
	DecisionFull             Decision = "full"
	DecisionPasswordRequired Decision = "password_required"
	DecisionDenied           Decision = "denied"
)

// Evaluation is a decision plus the context it was made with. ExpiresAt is
// non-zero only when access was unlocked by a password grant.
type Evaluation struct {
	Decision     Decision  `json:"decision"`
	Professional bool      `json:"professional"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Reason       string    `json:"reason"`
}

// Viewer identifies who is asking. A Nil ID means anonymous access, which
// happens through share links.
type Viewer struct {
	ID                   uuid.UUID
	Name                 string
	Roles                []string
	ProfessionalVerified bool
}

// Anonymous is the viewer used for unauthenticated share-link access.
func Anonymous() Viewer { return Viewer{} }

// ProfileView is what a permitted viewer sees.
type ProfileView struct {
	Profile    *profile.Profile            `json:"profile"`
	Contacts   []*profile.EmergencyContact `json:"contacts"`
	Evaluation Evaluation                  `json:"evaluation"`
}

var (
	// ErrDenied means the profile owner has locked emergency access down.
	ErrDenied = errors.New("access denied")
	// ErrPasswordRequired means the viewer must verify the access password
	// before the profile is disclosed.
	ErrPasswordRequired = errors.New("access password required")
	// ErrInvalidPassword means the supplied access password did not match.
	ErrInvalidPassword = errors.New("invalid access password")
	// ErrNoPasswordSet means password verification was attempted against a
	// profile without a password gate.
	ErrNoPasswordSet = errors.New("profile has no access password")
	// ErrShareNotFound means the share token is unknown or expired.
	ErrShareNotFound = errors.New("share link not found or expired")
)
