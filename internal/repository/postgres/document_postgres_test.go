package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cargoconnect/internal/model"
	"cargoconnect/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var documentCols = []string{"id", "shipment_id", "doc_type", "status", "file_url", "size", "content_type", "metadata", "created_at", "updated_at"}

func documentRow(id, shipmentID string, dt model.DocumentType, st model.DocumentStatus, meta string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(documentCols).
		AddRow(id, shipmentID, dt, st, "", 0, "", []byte(meta), now, now)
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.DocumentRecord{
		ID:         "test-uuid",
		ShipmentID: "SHP-001",
		Type:       model.TypeInvoice,
		Status:     model.StatusPending,
		Metadata:   model.DocumentMetadata{DocumentNumber: "INV-42"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	rows := sqlmock.NewRows(documentCols).
		AddRow(doc.ID, doc.ShipmentID, doc.Type, doc.Status, "", 0, "", []byte(`{"document_number":"INV-42"}`), now, now)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.ShipmentID, doc.Type, doc.Status, doc.FileURL, doc.Size, doc.ContentType, sqlmock.AnyArg(), doc.CreatedAt, doc.UpdatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, "INV-42", result.Metadata.DocumentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	activeIndexErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_documents_active"}

	t.Run("create against the active index", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO documents").
			WillReturnError(activeIndexErr)

		doc, err := repo.Create(ctx, &model.DocumentRecord{ID: "d2", ShipmentID: "SHP-001", Type: model.TypeInvoice, Status: model.StatusPending})

		assert.ErrorIs(t, err, repository.ErrDuplicateActive)
		assert.Nil(t, doc)
	})

	t.Run("re-activating a rejected row against the active index", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents").
			WillReturnError(activeIndexErr)

		doc, err := repo.TransitionStatus(ctx, "old", model.StatusRejected, model.StatusSubmitted, "")

		assert.ErrorIs(t, err, repository.ErrDuplicateActive)
		assert.Nil(t, doc)
	})

	t.Run("attach against the active index", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents").
			WillReturnError(activeIndexErr)

		doc, err := repo.AttachFile(ctx, "old", model.StatusRejected, model.StatusSubmitted, "k", 1, "application/pdf")

		assert.ErrorIs(t, err, repository.ErrDuplicateActive)
		assert.Nil(t, doc)
	})

	t.Run("unrelated unique constraint passes through", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO documents").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "documents_pkey"})

		_, err := repo.Create(ctx, &model.DocumentRecord{ID: "d2"})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrDuplicateActive)
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(documentRow("test-id", "SHP-001", model.TypeInvoice, model.StatusPending, `{}`))

		doc, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "test-id", doc.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})

	t.Run("malformed metadata", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("bad-meta").
			WillReturnRows(documentRow("bad-meta", "SHP-001", model.TypeInvoice, model.StatusPending, `{not json`))

		doc, err := repo.FindByID(ctx, "bad-meta")

		assert.Error(t, err)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_FindActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents").
			WithArgs("SHP-001", model.TypeInvoice).
			WillReturnRows(documentRow("test-id", "SHP-001", model.TypeInvoice, model.StatusSubmitted, `{}`))

		doc, err := repo.FindActive(ctx, "SHP-001", model.TypeInvoice)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusSubmitted, doc.Status)
	})

	t.Run("no active document", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents").
			WithArgs("SHP-001", model.TypePackingList).
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindActive(ctx, "SHP-001", model.TypePackingList)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_ListByShipment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(documentCols).
		AddRow("d1", "SHP-001", model.TypeInvoice, model.StatusSubmitted, "", 0, "", []byte(`{}`), now, now).
		AddRow("d2", "SHP-001", model.TypePackingList, model.StatusPending, "", 0, "", []byte(`{}`), now, now)

	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("SHP-001").
		WillReturnRows(rows)

	items, err := repo.ListByShipment(ctx, "SHP-001")

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "d1", items[0].ID)
	assert.Equal(t, "d2", items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_TransitionStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("applied", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents").
			WithArgs("test-id", model.StatusSubmitted, model.StatusRejected, "blurry scan", sqlmock.AnyArg()).
			WillReturnRows(documentRow("test-id", "SHP-001", model.TypeInvoice, model.StatusRejected, `{"rejection_reason":"blurry scan"}`))

		doc, err := repo.TransitionStatus(ctx, "test-id", model.StatusSubmitted, model.StatusRejected, "blurry scan")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusRejected, doc.Status)
		assert.Equal(t, "blurry scan", doc.Metadata.RejectionReason)
	})

	t.Run("status moved concurrently", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents").
			WithArgs("test-id", model.StatusSubmitted, model.StatusVerified, "", sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.TransitionStatus(ctx, "test-id", model.StatusSubmitted, model.StatusVerified, "")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_AttachFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(documentCols).
		AddRow("test-id", "SHP-001", model.TypeInvoice, model.StatusSubmitted, "shipments/SHP-001/abc.pdf", 2048, "application/pdf", []byte(`{}`), now, now)

	mock.ExpectQuery("UPDATE documents").
		WithArgs("test-id", model.StatusPending, model.StatusSubmitted, "shipments/SHP-001/abc.pdf", int64(2048), "application/pdf", sqlmock.AnyArg()).
		WillReturnRows(rows)

	doc, err := repo.AttachFile(ctx, "test-id", model.StatusPending, model.StatusSubmitted, "shipments/SHP-001/abc.pdf", 2048, "application/pdf")

	assert.NoError(t, err)
	assert.Equal(t, "shipments/SHP-001/abc.pdf", doc.FileURL)
	assert.Equal(t, int64(2048), doc.Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_UpdateMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("UPDATE documents").
		WithArgs("test-id", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(documentRow("test-id", "SHP-001", model.TypeInvoice, model.StatusPending, `{"document_number":"INV-42"}`))

	doc, err := repo.UpdateMetadata(ctx, "test-id", model.DocumentMetadata{DocumentNumber: "INV-42"})

	assert.NoError(t, err)
	assert.Equal(t, "INV-42", doc.Metadata.DocumentNumber)
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
