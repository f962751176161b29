package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. DB carries the per-owner queries;
// AdminDB is the elevated connection used only by GetPublic and falls back
// to DB when unset.
type PGRepo struct {
	DB      *sql.DB
	AdminDB *sql.DB
}

// Upsert inserts or overwrites a resume row keyed by id.
func (r *PGRepo) Upsert(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO resumes (id, owner_id, title, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  data = EXCLUDED.data,
  updated_at = EXCLUDED.updated_at
WHERE resumes.owner_id = EXCLUDED.owner_id`
	res, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.Title,
		string(rec.Data),
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a resume row by id for an owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	const query = `
SELECT id, owner_id, title, data, created_at, updated_at
FROM resumes
WHERE id = $1 AND owner_id = $2
LIMIT 1`
	return scanRecord(r.DB.QueryRowContext(ctx, query, id, ownerID))
}

// GetPublic returns a resume row by id without owner scoping.
func (r *PGRepo) GetPublic(ctx context.Context, id string) (Record, error) {
	const query = `
SELECT id, owner_id, title, data, created_at, updated_at
FROM resumes
WHERE id = $1
LIMIT 1`
	db := r.AdminDB
	if db == nil {
		db = r.DB
	}
	return scanRecord(db.QueryRowContext(ctx, query, id))
}

// ListByOwner lists an owner's resumes ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	const query = `
SELECT id, owner_id, title, data, created_at, updated_at
FROM resumes
WHERE owner_id = $1
ORDER BY updated_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var title sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &title, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Title = title.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes an owner's resume. Rows of other owners are never matched.
func (r *PGRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRecord(row *sql.Row) (Record, error) {
	var rec Record
	var title sql.NullString
	err := row.Scan(&rec.ID, &rec.OwnerID, &title, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Title = title.String
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
