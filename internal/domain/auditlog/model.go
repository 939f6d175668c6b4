package auditlog

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the access log.
const (
	ActionView            = "view"
	ActionPasswordGranted = "password_granted"
	ActionPasswordDenied  = "password_denied"
	ActionDenied          = "denied"
	ActionShareCreated    = "share_created"
)

// Record is one row of the access log. ViewerID is nil for anonymous access
// through a share link.
type Record struct {
	ID            uuid.UUID  `json:"id"`
	ProfileID     uuid.UUID  `json:"profile_id"`
	ViewerID      *uuid.UUID `json:"viewer_id,omitempty"`
	ViewerName    string     `json:"viewer_name,omitempty"`
	ViewerRole    string     `json:"viewer_role,omitempty"`
	Action        string     `json:"action"`
	Professional  bool       `json:"professional"`
	ViaShareToken bool       `json:"via_share_token"`
	IPAddress     string     `json:"ip_address,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}
