package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile maps to the profile table.
type Profile struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OwnerID     uuid.UUID  `db:"owner_id" json:"owner_id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	BloodType   *string    `db:"blood_type" json:"blood_type,omitempty"`
	HeightCm    *int       `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg    *float64   `db:"weight_kg" json:"weight_kg,omitempty"`
	OrganDonor  bool       `db:"organ_donor" json:"organ_donor"`
	Conditions  *string    `db:"conditions" json:"conditions,omitempty"`
	Medications *string    `db:"medications" json:"medications,omitempty"`
	Allergies   *string    `db:"allergies" json:"allergies,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// EmergencyContact maps to the emergency_contact table.
type EmergencyContact struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProfileID    uuid.UUID `db:"profile_id" json:"profile_id"`
	Name         string    `db:"name" json:"name"`
	Relationship *string   `db:"relationship" json:"relationship,omitempty"`
	Phone        string    `db:"phone" json:"phone"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Priority     int       `db:"priority" json:"priority"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PrivacySettings maps to the privacy_settings table, one row per profile.
// AccessPasswordHash is a bcrypt hash and is never serialized.
type PrivacySettings struct {
	ProfileID                 uuid.UUID `db:"profile_id" json:"profile_id"`
	EmergencyAccessEnabled    bool      `db:"emergency_access_enabled" json:"emergency_access_enabled"`
	AllowMedicalProfessionals bool      `db:"allow_medical_professionals" json:"allow_medical_professionals"`
	RequirePassword           bool      `db:"require_password" json:"require_password"`
	AccessPasswordHash        *string   `db:"access_password_hash" json:"-"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultPrivacySettings returns the privacy row created alongside a new
// profile: emergency access on, professional access on, no password gate.
func DefaultPrivacySettings(profileID uuid.UUID) *PrivacySettings {
	return &PrivacySettings{
		ProfileID:                 profileID,
		EmergencyAccessEnabled:    true,
		AllowMedicalProfessionals: true,
		RequirePassword:           false,
	}
}
