package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository { return &profileRepoPG{pool: pool} }

const profileCols = `id, owner_id, first_name, last_name, birth_date, gender, blood_type,
	height_cm, weight_kg, organ_donor, conditions, medications, allergies, notes,
	created_at, updated_at`

func (r *profileRepoPG) scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.OwnerID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender, &p.BloodType,
		&p.HeightCm, &p.WeightKg, &p.OrganDonor, &p.Conditions, &p.Medications, &p.Allergies, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *profileRepoPG) Create(ctx context.Context, p *Profile) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profile (id, owner_id, first_name, last_name, birth_date, gender, blood_type,
			height_cm, weight_kg, organ_donor, conditions, medications, allergies, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.OwnerID, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.BloodType,
		p.HeightCm, p.WeightKg, p.OrganDonor, p.Conditions, p.Medications, p.Allergies, p.Notes)
	return err
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileCols+` FROM profile WHERE id = $1`, id))
}

func (r *profileRepoPG) Update(ctx context.Context, p *Profile) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE profile SET first_name=$2, last_name=$3, birth_date=$4, gender=$5, blood_type=$6,
			height_cm=$7, weight_kg=$8, organ_donor=$9, conditions=$10, medications=$11,
			allergies=$12, notes=$13, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.BloodType,
		p.HeightCm, p.WeightKg, p.OrganDonor, p.Conditions, p.Medications,
		p.Allergies, p.Notes)
	return err
}

func (r *profileRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profile WHERE id = $1`, id)
	return err
}

func (r *profileRepoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Profile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profile WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+profileCols+` FROM profile WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

// =========== Contact Repository ===========

type contactRepoPG struct{ pool *pgxpool.Pool }

func NewContactRepoPG(pool *pgxpool.Pool) ContactRepository { return &contactRepoPG{pool: pool} }

const contactCols = `id, profile_id, name, relationship, phone, email, priority, created_at, updated_at`

func (r *contactRepoPG) scanContact(row pgx.Row) (*EmergencyContact, error) {
	var c EmergencyContact
	err := row.Scan(&c.ID, &c.ProfileID, &c.Name, &c.Relationship, &c.Phone, &c.Email, &c.Priority,
		&c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *contactRepoPG) Create(ctx context.Context, c *EmergencyContact) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO emergency_contact (id, profile_id, name, relationship, phone, email, priority)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.ProfileID, c.Name, c.Relationship, c.Phone, c.Email, c.Priority)
	return err
}

func (r *contactRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error) {
	return r.scanContact(r.pool.QueryRow(ctx, `SELECT `+contactCols+` FROM emergency_contact WHERE id = $1`, id))
}

func (r *contactRepoPG) Update(ctx context.Context, c *EmergencyContact) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE emergency_contact SET name=$2, relationship=$3, phone=$4, email=$5, priority=$6, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Relationship, c.Phone, c.Email, c.Priority)
	return err
}

func (r *contactRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM emergency_contact WHERE id = $1`, id)
	return err
}

func (r *contactRepoPG) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*EmergencyContact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactCols+` FROM emergency_contact
		WHERE profile_id = $1 ORDER BY priority, created_at`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EmergencyContact
	for rows.Next() {
		c, err := r.scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

// =========== Privacy Repository ===========

type privacyRepoPG struct{ pool *pgxpool.Pool }

func NewPrivacyRepoPG(pool *pgxpool.Pool) PrivacyRepository { return &privacyRepoPG{pool: pool} }

const privacyCols = `profile_id, emergency_access_enabled, allow_medical_professionals,
	require_password, access_password_hash, updated_at`

func (r *privacyRepoPG) scanPrivacy(row pgx.Row) (*PrivacySettings, error) {
	var s PrivacySettings
	err := row.Scan(&s.ProfileID, &s.EmergencyAccessEnabled, &s.AllowMedicalProfessionals,
		&s.RequirePassword, &s.AccessPasswordHash, &s.UpdatedAt)
	return &s, err
}

func (r *privacyRepoPG) Create(ctx context.Context, s *PrivacySettings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO privacy_settings (profile_id, emergency_access_enabled, allow_medical_professionals,
			require_password, access_password_hash)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ProfileID, s.EmergencyAccessEnabled, s.AllowMedicalProfessionals,
		s.RequirePassword, s.AccessPasswordHash)
	return err
}

func (r *privacyRepoPG) GetByProfile(ctx context.Context, profileID uuid.UUID) (*PrivacySettings, error) {
	s, err := r.scanPrivacy(r.pool.QueryRow(ctx, `SELECT `+privacyCols+` FROM privacy_settings WHERE profile_id = $1`, profileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrivacyNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *privacyRepoPG) Update(ctx context.Context, s *PrivacySettings) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE privacy_settings SET emergency_access_enabled=$2, allow_medical_professionals=$3,
			require_password=$4, access_password_hash=$5, updated_at=NOW()
		WHERE profile_id = $1`,
		s.ProfileID, s.EmergencyAccessEnabled, s.AllowMedicalProfessionals,
		s.RequirePassword, s.AccessPasswordHash)
	return err
}
