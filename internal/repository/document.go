package repository

import (
	"context"
	"errors"

	"cargoconnect/internal/model"
)

// ErrDuplicateActive reports a write that would leave two non-rejected
// documents of the same type on one shipment. The postgres implementation
// surfaces it from the partial unique index; the in-memory implementation
// enforces the same rule directly.
var ErrDuplicateActive = errors.New("active document of this type already exists for the shipment")

// DocumentRepository defines data access for document records using SQL-style
// semantics only. No business logic here; lookup misses and compare-and-set
// misses are reported as sql.ErrNoRows so callers can translate uniformly.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, rec *model.DocumentRecord) (*model.DocumentRecord, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.DocumentRecord, error)

	// FindActive returns the non-rejected document of the given type for a
	// shipment, if one exists.
	FindActive(ctx context.Context, shipmentID string, t model.DocumentType) (*model.DocumentRecord, error)

	// ListByShipment returns all documents for a shipment in insertion order.
	ListByShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error)

	// TransitionStatus applies a compare-and-set status update: the row is
	// changed only if its current status equals from. A non-empty reason is
	// recorded in metadata (reviewer rejections); otherwise any previous
	// rejection reason is cleared. A CAS miss yields sql.ErrNoRows.
	TransitionStatus(ctx context.Context, id string, from, to model.DocumentStatus, reason string) (*model.DocumentRecord, error)

	// AttachFile records the uploaded object and moves the document to its
	// next status in the same compare-and-set write.
	AttachFile(ctx context.Context, id string, from, to model.DocumentStatus, fileURL string, size int64, contentType string) (*model.DocumentRecord, error)

	// UpdateMetadata replaces the structured metadata fields.
	UpdateMetadata(ctx context.Context, id string, meta model.DocumentMetadata) (*model.DocumentRecord, error)

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
