package auditlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, profile_id, viewer_id, viewer_name, viewer_role, action,
	professional, via_share_token, ip_address, user_agent, occurred_at`

func (r *repoPG) scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.ProfileID, &rec.ViewerID, &rec.ViewerName, &rec.ViewerRole,
		&rec.Action, &rec.Professional, &rec.ViaShareToken, &rec.IPAddress, &rec.UserAgent, &rec.OccurredAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) Append(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO access_log (`+recordCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.ProfileID, rec.ViewerID, rec.ViewerName, rec.ViewerRole,
		rec.Action, rec.Professional, rec.ViaShareToken, rec.IPAddress, rec.UserAgent, rec.OccurredAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM access_log WHERE id = $1`, id))
}

func (r *repoPG) ListByProfile(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM access_log WHERE profile_id = $1`, profileID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM access_log
		WHERE profile_id = $1 ORDER BY occurred_at DESC LIMIT $2 OFFSET $3`,
		profileID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repoPG) Search(ctx context.Context, f SearchFilter, limit, offset int) ([]*Record, int, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ProfileID != uuid.Nil {
		conds = append(conds, "profile_id = "+arg(f.ProfileID))
	}
	if f.ViewerID != uuid.Nil {
		conds = append(conds, "viewer_id = "+arg(f.ViewerID))
	}
	if f.Action != "" {
		conds = append(conds, "action = "+arg(f.Action))
	}
	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at < "+arg(f.To))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM access_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordCols + ` FROM access_log` + where +
		` ORDER BY occurred_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repoPG) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM access_log WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) TrimProfiles(ctx context.Context, keep int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM access_log WHERE id IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY profile_id ORDER BY occurred_at DESC) AS rn
			FROM access_log
		) ranked WHERE rn > $1
	)`, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
