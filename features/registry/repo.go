package registry

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, doc *Document) error {
	query := `INSERT INTO documents (subject, unit, lecture, name, url) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, doc.Subject, doc.Unit, doc.Lecture, doc.Name, doc.URL).Scan(&doc.ID)
}

func (r *PostgresRepo) ListByLecture(ctx context.Context, subject, unit, lecture string) ([]Document, error) {
	query := `SELECT id, subject, unit, lecture, name, url, COALESCE(artifact, '')
		FROM documents
		WHERE subject = $1 AND unit = $2 AND lecture = $3 AND deleted_at IS NULL
		ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, subject, unit, lecture)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Subject, &d.Unit, &d.Lecture, &d.Name, &d.URL, &d.Artifact); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) SetArtifact(ctx context.Context, id, artifact string) error {
	query := `UPDATE documents SET artifact = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, artifact, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *PostgresRepo) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE documents SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM documents WHERE deleted_at IS NULL`
	err := r.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound also matches the driver-level miss for callers that query by ID
// directly.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
