package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"cargoconnect/internal/model"
	"cargoconnect/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Status changes go through compare-and-set updates so racing transitions can
// never skip the lifecycle table.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, shipment_id, doc_type, status, file_url, size, content_type, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// translateUnique maps a unique-violation on the partial active index to the
// repository sentinel so the service layer can report a duplicate instead of
// an internal error.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_documents_active" {
		return fmt.Errorf("%w: %v", repository.ErrDuplicateActive, err)
	}
	return err
}

func scanDocument(row rowScanner) (*model.DocumentRecord, error) {
	var (
		d       model.DocumentRecord
		rawMeta []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.ShipmentID,
		&d.Type,
		&d.Status,
		&d.FileURL,
		&d.Size,
		&d.ContentType,
		&rawMeta,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode document metadata: %w", err)
		}
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
// The partial unique index on (shipment_id, doc_type) for non-rejected rows
// backstops the duplicate-active guard enforced in the service layer.
func (r *DocumentPostgres) Create(ctx context.Context, rec *model.DocumentRecord) (*model.DocumentRecord, error) {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode document metadata: %w", err)
	}
	const q = `
		INSERT INTO documents (id, shipment_id, doc_type, status, file_url, size, content_type, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.ShipmentID,
		rec.Type,
		rec.Status,
		rec.FileURL,
		rec.Size,
		rec.ContentType,
		meta,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	d, err := scanDocument(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return d, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.DocumentRecord, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindActive fetches the non-rejected document of a given type for a shipment.
func (r *DocumentPostgres) FindActive(ctx context.Context, shipmentID string, t model.DocumentType) (*model.DocumentRecord, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE shipment_id = $1 AND doc_type = $2 AND status <> 'rejected'
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, shipmentID, t))
}

// ListByShipment returns all documents for a shipment in insertion order.
func (r *DocumentPostgres) ListByShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE shipment_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentRecord, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// TransitionStatus applies a compare-and-set status change. The WHERE clause
// on the current status makes the lifecycle check atomic with the write; a
// miss (row gone or status moved concurrently) surfaces as sql.ErrNoRows.
func (r *DocumentPostgres) TransitionStatus(ctx context.Context, id string, from, to model.DocumentStatus, reason string) (*model.DocumentRecord, error) {
	const q = `
		UPDATE documents
		SET status = $3,
		    metadata = CASE
		        WHEN $4 <> '' THEN jsonb_set(metadata, '{rejection_reason}', to_jsonb($4::text))
		        ELSE metadata - 'rejection_reason'
		    END,
		    updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q, id, from, to, reason, time.Now().UTC())
	d, err := scanDocument(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return d, nil
}

// AttachFile records the uploaded object and advances status in one
// compare-and-set write. Any previous rejection reason is cleared since the
// attempt starts over.
func (r *DocumentPostgres) AttachFile(ctx context.Context, id string, from, to model.DocumentStatus, fileURL string, size int64, contentType string) (*model.DocumentRecord, error) {
	const q = `
		UPDATE documents
		SET status = $3,
		    file_url = $4,
		    size = $5,
		    content_type = $6,
		    metadata = metadata - 'rejection_reason',
		    updated_at = $7
		WHERE id = $1 AND status = $2
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q, id, from, to, fileURL, size, contentType, time.Now().UTC())
	d, err := scanDocument(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return d, nil
}

// UpdateMetadata replaces the structured metadata document.
func (r *DocumentPostgres) UpdateMetadata(ctx context.Context, id string, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode document metadata: %w", err)
	}
	const q = `
		UPDATE documents
		SET metadata = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q, id, raw, time.Now().UTC())
	return scanDocument(row)
}

// Delete removes a document by ID. It does not return an error if the row
// does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
