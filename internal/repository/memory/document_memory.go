package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"cargoconnect/internal/model"
	"cargoconnect/internal/repository"
)

// DocumentMemory is an in-memory repository.DocumentRepository. It keeps the
// service testable without a database and backs standalone runs. Misses are
// reported as sql.ErrNoRows, and writes that would produce two active records
// of one type fail with repository.ErrDuplicateActive, matching what the
// partial unique index does in postgres.
type DocumentMemory struct {
	mu    sync.RWMutex
	docs  map[string]*model.DocumentRecord
	order []string
}

// NewDocumentMemory creates an empty in-memory document repository.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[string]*model.DocumentRecord)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

// hasOtherActive reports whether an active (non-rejected) record of the given
// type exists on the shipment besides the one with excludeID. Callers hold mu.
func (r *DocumentMemory) hasOtherActive(shipmentID string, t model.DocumentType, excludeID string) bool {
	for _, id := range r.order {
		d := r.docs[id]
		if d.ID != excludeID && d.ShipmentID == shipmentID && d.Type == t && d.Status != model.StatusRejected {
			return true
		}
	}
	return false
}

func (r *DocumentMemory) Create(_ context.Context, rec *model.DocumentRecord) (*model.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.Status != model.StatusRejected && r.hasOtherActive(rec.ShipmentID, rec.Type, rec.ID) {
		return nil, repository.ErrDuplicateActive
	}
	cp := *rec
	r.docs[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	out := cp
	return &out, nil
}

func (r *DocumentMemory) FindByID(_ context.Context, id string) (*model.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *d
	return &out, nil
}

func (r *DocumentMemory) FindActive(_ context.Context, shipmentID string, t model.DocumentType) (*model.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		d := r.docs[id]
		if d.ShipmentID == shipmentID && d.Type == t && d.Status != model.StatusRejected {
			out := *d
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *DocumentMemory) ListByShipment(_ context.Context, shipmentID string) ([]model.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]model.DocumentRecord, 0)
	for _, id := range r.order {
		if d := r.docs[id]; d.ShipmentID == shipmentID {
			items = append(items, *d)
		}
	}
	return items, nil
}

func (r *DocumentMemory) TransitionStatus(_ context.Context, id string, from, to model.DocumentStatus, reason string) (*model.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.Status != from {
		return nil, sql.ErrNoRows
	}
	if from == model.StatusRejected && to != model.StatusRejected && r.hasOtherActive(d.ShipmentID, d.Type, d.ID) {
		return nil, repository.ErrDuplicateActive
	}
	d.Status = to
	if reason != "" {
		d.Metadata.RejectionReason = reason
	} else {
		d.Metadata.RejectionReason = ""
	}
	d.UpdatedAt = time.Now().UTC()
	out := *d
	return &out, nil
}

func (r *DocumentMemory) AttachFile(_ context.Context, id string, from, to model.DocumentStatus, fileURL string, size int64, contentType string) (*model.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.Status != from {
		return nil, sql.ErrNoRows
	}
	if from == model.StatusRejected && r.hasOtherActive(d.ShipmentID, d.Type, d.ID) {
		return nil, repository.ErrDuplicateActive
	}
	d.Status = to
	d.FileURL = fileURL
	d.Size = size
	d.ContentType = contentType
	d.Metadata.RejectionReason = ""
	d.UpdatedAt = time.Now().UTC()
	out := *d
	return &out, nil
}

func (r *DocumentMemory) UpdateMetadata(_ context.Context, id string, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d.Metadata = meta
	d.UpdatedAt = time.Now().UTC()
	out := *d
	return &out, nil
}

func (r *DocumentMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return nil
	}
	delete(r.docs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
