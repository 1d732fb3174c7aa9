package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cargoconnect/internal/event"
	"cargoconnect/internal/lifecycle"
	"cargoconnect/internal/metrics"
	"cargoconnect/internal/model"
	"cargoconnect/internal/repository"
	"cargoconnect/internal/storage"
)

var (
	ErrIDRequired              = errors.New("id is required")
	ErrNotFound                = errors.New("document not found")
	ErrReaderNil               = errors.New("reader is nil")
	ErrReasonRequired          = errors.New("rejection reason is required")
	ErrNoFile                  = errors.New("document has no file attached")
	ErrDuplicateActiveDocument = errors.New("an active document of this type already exists for the shipment")
	// ErrStaleDocument means the status moved under us between read and
	// compare-and-set write; the caller should reload and retry.
	ErrStaleDocument = errors.New("document state changed concurrently")
)

// DocumentService covers the document side of the compliance engine: record
// creation with the duplicate-active guard, file attachment, reviewer
// transitions, and deletion. All status changes go through the lifecycle
// machine and are persisted with a compare-and-set write.
type DocumentService interface {
	// Register creates a pending document record for a shipment. Fails with
	// ErrDuplicateActiveDocument when a non-rejected record of the same type
	// already exists.
	Register(ctx context.Context, shipmentID string, docType model.DocumentType, meta model.DocumentMetadata) (*model.DocumentRecord, error)

	// AttachFile uploads the content to object storage and moves the document
	// to submitted (from pending, rejected, or, when resubmission is enabled,
	// verified). Storage is rolled back if the status write fails.
	AttachFile(ctx context.Context, documentID string, r io.Reader, originalFilename, contentType string, size int64) (*model.DocumentRecord, error)

	// Review applies a reviewer decision (verified or rejected) or a
	// policy-gated correction back to submitted. Rejection requires a reason.
	Review(ctx context.Context, documentID string, to model.DocumentStatus, reason string) (*model.DocumentRecord, error)

	// UpdateMetadata replaces the document's structured metadata.
	UpdateMetadata(ctx context.Context, documentID string, meta model.DocumentMetadata) (*model.DocumentRecord, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, documentID string) (*model.DocumentRecord, error)

	// ListForShipment returns a shipment's documents in insertion order.
	ListForShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error)

	// DownloadURL returns a time-limited URL for the document's file.
	DownloadURL(ctx context.Context, documentID string, expiry time.Duration) (string, error)

	// Delete removes a document and its stored file (shipment cancellation).
	Delete(ctx context.Context, documentID string) error
}

// shipmentLocks serializes writes per shipment so racing transitions on the
// same shipment cannot interleave. Different shipments proceed in parallel.
// Entries are never evicted, so the map grows with the number of distinct
// shipments seen over the process lifetime; each entry is a bare mutex, and
// the compare-and-set writes remain correct across restarts regardless.
type shipmentLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newShipmentLocks() *shipmentLocks {
	return &shipmentLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *shipmentLocks) get(shipmentID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[shipmentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[shipmentID] = m
	}
	return m
}

type documentService struct {
	repo    repository.DocumentRepository
	store   storage.Storage
	machine *lifecycle.Machine
	sink    event.Sink
	metrics *metrics.Metrics
	locks   *shipmentLocks
}

// NewDocumentService constructs a new DocumentService. A nil sink disables
// event emission.
func NewDocumentService(repo repository.DocumentRepository, store storage.Storage, machine *lifecycle.Machine, sink event.Sink, m *metrics.Metrics) DocumentService {
	if sink == nil {
		sink = event.NopSink{}
	}
	return &documentService{
		repo:    repo,
		store:   store,
		machine: machine,
		sink:    sink,
		metrics: m,
		locks:   newShipmentLocks(),
	}
}

func (s *documentService) Register(ctx context.Context, shipmentID string, docType model.DocumentType, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	if shipmentID == "" {
		return nil, ErrIDRequired
	}

	lock := s.locks.get(shipmentID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.FindActive(ctx, shipmentID, docType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateActiveDocument
	}

	now := time.Now().UTC()
	rec := &model.DocumentRecord{
		ID:         uuid.New().String(),
		ShipmentID: shipmentID,
		Type:       docType,
		Status:     model.StatusPending,
		Metadata:   meta,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			return nil, ErrDuplicateActiveDocument
		}
		return nil, err
	}
	return created, nil
}

func (s *documentService) AttachFile(ctx context.Context, documentID string, r io.Reader, originalFilename, contentType string, size int64) (*model.DocumentRecord, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(doc.ShipmentID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.machine.Validate(doc.Status, model.StatusSubmitted); err != nil {
		s.noteIllegal()
		return nil, err
	}

	// Re-activating a rejected record must not produce a second active
	// document of the same type; a replacement may have been registered since
	// the rejection.
	if doc.Status == model.StatusRejected {
		if err := s.ensureNoActive(ctx, doc); err != nil {
			return nil, err
		}
	}

	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("shipments", doc.ShipmentID, uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"document-id":       documentID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	updated, err := s.repo.AttachFile(ctx, documentID, doc.Status, model.StatusSubmitted, objInfo.Key, objInfo.Size, contentType)
	if err != nil {
		// Roll back the object so storage does not accumulate orphans.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("status update failed: %v; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaleDocument
		}
		if errors.Is(err, repository.ErrDuplicateActive) {
			return nil, ErrDuplicateActiveDocument
		}
		return nil, fmt.Errorf("status update failed: %w", err)
	}

	s.noteTransition(updated, doc.Status, model.StatusSubmitted)
	return updated, nil
}

func (s *documentService) Review(ctx context.Context, documentID string, to model.DocumentStatus, reason string) (*model.DocumentRecord, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if to == model.StatusRejected && reason == "" {
		return nil, ErrReasonRequired
	}

	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(doc.ShipmentID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.machine.Validate(doc.Status, to); err != nil {
		s.noteIllegal()
		return nil, err
	}

	// Same guard as AttachFile: pulling a rejected record back into an active
	// status must fail if another active record of the type exists by now.
	if doc.Status == model.StatusRejected && to != model.StatusRejected {
		if err := s.ensureNoActive(ctx, doc); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.TransitionStatus(ctx, documentID, doc.Status, to, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaleDocument
		}
		if errors.Is(err, repository.ErrDuplicateActive) {
			return nil, ErrDuplicateActiveDocument
		}
		return nil, err
	}

	s.noteTransition(updated, doc.Status, to)
	return updated, nil
}

func (s *documentService) UpdateMetadata(ctx context.Context, documentID string, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	updated, err := s.repo.UpdateMetadata(ctx, documentID, meta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *documentService) Get(ctx context.Context, documentID string) (*model.DocumentRecord, error) {
	return s.load(ctx, documentID)
}

func (s *documentService) ListForShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error) {
	if shipmentID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByShipment(ctx, shipmentID)
}

func (s *documentService) DownloadURL(ctx context.Context, documentID string, expiry time.Duration) (string, error) {
	doc, err := s.load(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.FileURL == "" {
		return "", ErrNoFile
	}
	return s.store.PresignGet(ctx, doc.FileURL, expiry)
}

func (s *documentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.load(ctx, documentID)
	if err != nil {
		return err
	}

	lock := s.locks.get(doc.ShipmentID)
	lock.Lock()
	defer lock.Unlock()

	// Delete from storage first; if this fails, keep the row so the stored
	// object is not orphaned without a reference.
	if doc.FileURL != "" {
		if err := s.store.Delete(ctx, doc.FileURL); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	return s.repo.Delete(ctx, documentID)
}

// ensureNoActive fails with ErrDuplicateActiveDocument when a non-rejected
// record of doc's type exists on the shipment. Callers hold the shipment lock.
func (s *documentService) ensureNoActive(ctx context.Context, doc *model.DocumentRecord) error {
	existing, err := s.repo.FindActive(ctx, doc.ShipmentID, doc.Type)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if existing != nil {
		return ErrDuplicateActiveDocument
	}
	return nil
}

func (s *documentService) load(ctx context.Context, documentID string) (*model.DocumentRecord, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) noteTransition(doc *model.DocumentRecord, from, to model.DocumentStatus) {
	if s.metrics != nil {
		s.metrics.DocumentTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	}
	fields := map[string]any{
		"document_id":   doc.ID,
		"document_type": string(doc.Type),
		"from":          string(from),
		"to":            string(to),
	}
	if doc.Metadata.RejectionReason != "" {
		fields["reason"] = doc.Metadata.RejectionReason
	}
	s.sink.Emit(event.Event{
		Name:       event.DocumentTransitioned,
		ShipmentID: doc.ShipmentID,
		Fields:     fields,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *documentService) noteIllegal() {
	if s.metrics != nil {
		s.metrics.IllegalTransitionsTotal.Inc()
	}
}
