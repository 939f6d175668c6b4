package access

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medid/medid/internal/domain/profile"
)

func settingsWith(emergency, professionals, password bool) *profile.PrivacySettings {
	return &profile.PrivacySettings{
		EmergencyAccessEnabled:    emergency,
		AllowMedicalProfessionals: professionals,
		RequirePassword:           password,
	}
}

func TestEvaluate_OwnerAlwaysFull(t *testing.T) {
	owner := uuid.New()
	now := time.Now()
	// Owner wins even with everything locked down.
	eval := Evaluate(Viewer{ID: owner}, owner, settingsWith(false, false, true), time.Time{}, now)
	if eval.Decision != DecisionFull {
		t.Errorf("expected full, got %s", eval.Decision)
	}
	if !eval.ExpiresAt.IsZero() {
		t.Error("owner access must not carry an expiry")
	}
}

func TestEvaluate_EmergencyDisabledDenies(t *testing.T) {
	now := time.Now()
	eval := Evaluate(Viewer{ID: uuid.New()}, uuid.New(), settingsWith(false, true, false), time.Time{}, now)
	if eval.Decision != DecisionDenied {
		t.Errorf("expected denied, got %s", eval.Decision)
	}
}

func TestEvaluate_EmergencyDisabledDeniesProfessional(t *testing.T) {
	now := time.Now()
	v := Viewer{ID: uuid.New(), ProfessionalVerified: true}
	eval := Evaluate(v, uuid.New(), settingsWith(false, true, false), time.Time{}, now)
	if eval.Decision != DecisionDenied {
		t.Errorf("expected denied, got %s", eval.Decision)
	}
}

func TestEvaluate_ProfessionalBypassesPassword(t *testing.T) {
	now := time.Now()
	v := Viewer{ID: uuid.New(), ProfessionalVerified: true}
	eval := Evaluate(v, uuid.New(), settingsWith(true, true, true), time.Time{}, now)
	if eval.Decision != DecisionFull {
		t.Errorf("expected full, got %s", eval.Decision)
	}
	if !eval.Professional {
		t.Error("expected evaluation marked professional")
	}
	if !eval.ExpiresAt.IsZero() {
		t.Error("professional access must not carry an expiry")
	}
}

func TestEvaluate_ProfessionalNotAllowed(t *testing.T) {
	now := time.Now()
	v := Viewer{ID: uuid.New(), ProfessionalVerified: true}
	eval := Evaluate(v, uuid.New(), settingsWith(true, false, true), time.Time{}, now)
	if eval.Decision != DecisionPasswordRequired {
		t.Errorf("expected password_required, got %s", eval.Decision)
	}
	if eval.Professional {
		t.Error("evaluation must not be marked professional when the privilege is off")
	}
}

func TestEvaluate_PasswordRequired(t *testing.T) {
	now := time.Now()
	eval := Evaluate(Viewer{ID: uuid.New()}, uuid.New(), settingsWith(true, true, true), time.Time{}, now)
	if eval.Decision != DecisionPasswordRequired {
		t.Errorf("expected password_required, got %s", eval.Decision)
	}
}

func TestEvaluate_ActiveGrantUnlocks(t *testing.T) {
	now := time.Now()
	expiry := now.Add(10 * time.Minute)
	eval := Evaluate(Viewer{ID: uuid.New()}, uuid.New(), settingsWith(true, true, true), expiry, now)
	if eval.Decision != DecisionFull {
		t.Errorf("expected full, got %s", eval.Decision)
	}
	if !eval.ExpiresAt.Equal(expiry) {
		t.Errorf("expected expiry %v, got %v", expiry, eval.ExpiresAt)
	}
}

func TestEvaluate_ExpiredGrantBehavesAsAbsent(t *testing.T) {
	now := time.Now()
	eval := Evaluate(Viewer{ID: uuid.New()}, uuid.New(), settingsWith(true, true, true), now.Add(-time.Minute), now)
	if eval.Decision != DecisionPasswordRequired {
		t.Errorf("expected password_required, got %s", eval.Decision)
	}
}

func TestEvaluate_NoGateFullAccess(t *testing.T) {
	now := time.Now()
	eval := Evaluate(Viewer{ID: uuid.New()}, uuid.New(), settingsWith(true, true, false), time.Time{}, now)
	if eval.Decision != DecisionFull {
		t.Errorf("expected full, got %s", eval.Decision)
	}
}

func TestEvaluate_AnonymousViewer(t *testing.T) {
	now := time.Now()
	// Anonymous viewers follow the same rules; Nil never matches the owner.
	eval := Evaluate(Anonymous(), uuid.New(), settingsWith(true, true, false), time.Time{}, now)
	if eval.Decision != DecisionFull {
		t.Errorf("expected full, got %s", eval.Decision)
	}
	eval = Evaluate(Anonymous(), uuid.New(), settingsWith(false, true, false), time.Time{}, now)
	if eval.Decision != DecisionDenied {
		t.Errorf("expected denied, got %s", eval.Decision)
	}
}
