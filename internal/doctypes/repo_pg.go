package doctypes

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const docTypeColumns = `id, display_name, category, category_code, target_object, document_type, is_recurring, COALESCE(frequency, ''), array_to_string(required_for, ','), created_at, updated_at`

// List returns all document type descriptors ordered by category code.
func (r *PGRepo) List(ctx context.Context) ([]DocType, error) {
	const query = `
SELECT ` + docTypeColumns + `
FROM doc_types
ORDER BY category_code`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocTypes(rows)
}

// GetByID fetches a single descriptor.
func (r *PGRepo) GetByID(ctx context.Context, id string) (DocType, error) {
	const query = `
SELECT ` + docTypeColumns + `
FROM doc_types
WHERE id = $1
LIMIT 1`

	dt, err := scanDocType(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocType{}, ErrNotFound
		}
		return DocType{}, err
	}
	return dt, nil
}

// ListByTarget returns descriptors whose documents attach to the given
// entity kind.
func (r *PGRepo) ListByTarget(ctx context.Context, target TargetObject) ([]DocType, error) {
	const query = `
SELECT ` + docTypeColumns + `
FROM doc_types
WHERE target_object = $1
ORDER BY category_code`

	rows, err := r.DB.QueryContext(ctx, query, string(target))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocTypes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocType(row rowScanner) (DocType, error) {
	var dt DocType
	var category, target, mutability, frequency, requiredFor string
	if err := row.Scan(
		&dt.ID,
		&dt.DisplayName,
		&category,
		&dt.CategoryCode,
		&target,
		&mutability,
		&dt.IsRecurring,
		&frequency,
		&requiredFor,
		&dt.CreatedAt,
		&dt.UpdatedAt,
	); err != nil {
		return DocType{}, err
	}
	dt.Category = ParseCategory(category)
	dt.TargetObject = ParseTargetObject(target)
	dt.Mutability = ParseMutability(mutability)
	dt.Frequency = ParseFrequency(frequency)
	if requiredFor != "" {
		dt.RequiredFor = strings.Split(requiredFor, ",")
	}
	return dt, nil
}

func scanDocTypes(rows *sql.Rows) ([]DocType, error) {
	var out []DocType
	for rows.Next() {
		dt, err := scanDocType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
