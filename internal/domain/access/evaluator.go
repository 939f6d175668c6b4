package access

import (
	"time"

	"github.com/google/uuid"

	"github.com/medid/medid/internal/domain/profile"
)

// Evaluate applies the access rules for one viewer against one profile.
// The rules are checked in order and the first match wins:
//
//  1. The owner always has full access.
//  2. Emergency access disabled denies everyone else.
//  3. A verified medical professional gets full access when the owner
//     allows professionals, bypassing the password gate.
//  4. A password gate requires verification unless the viewer holds an
//     unexpired grant, in which case access is full until the grant expires.
//  5. Everyone else gets full access.
//
// grantExpiresAt is the viewer's password-grant expiry, or the zero time when
// no grant exists. An expired grant behaves as absent.
func Evaluate(v Viewer, ownerID uuid.UUID, ps *profile.PrivacySettings, grantExpiresAt time.Time, now time.Time) Evaluation {
	if v.ID != uuid.Nil && v.ID == ownerID {
		return Evaluation{Decision: DecisionFull, Reason: "owner"}
	}

	if !ps.EmergencyAccessEnabled {
		return Evaluation{Decision: DecisionDenied, Reason: "emergency access disabled"}
	}

	if v.ProfessionalVerified && ps.AllowMedicalProfessionals {
		return Evaluation{Decision: DecisionFull, Professional: true, Reason: "verified medical professional"}
	}

	if ps.RequirePassword {
		if !grantExpiresAt.IsZero() && grantExpiresAt.After(now) {
			return Evaluation{Decision: DecisionFull, ExpiresAt: grantExpiresAt, Reason: "password grant"}
		}
		return Evaluation{Decision: DecisionPasswordRequired, Reason: "password required"}
	}

	return Evaluation{Decision: DecisionFull, Reason: "emergency access"}
}
