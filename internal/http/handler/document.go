package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cargoconnect/internal/model"
	"cargoconnect/internal/service"
)

// Upload allow-list and default presign lifetime. Deeper content validation
// is a storage-collaborator concern.
var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

const downloadURLExpiry = 15 * time.Minute

type registerDocumentRequest struct {
	Type     string                 `json:"type"`
	Metadata model.DocumentMetadata `json:"metadata"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// RegisterDocument creates a pending document record on a shipment.
func RegisterDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shipmentID := c.Params("id")

		var req registerDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		docType, err := model.ParseDocumentType(req.Type)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "unknown document type")
		}

		doc, err := svc.Register(c.UserContext(), shipmentID, docType, req.Metadata)
		if err != nil {
			return translateError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListShipmentDocuments returns a shipment's documents in insertion order.
func ListShipmentDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListForShipment(c.UserContext(), c.Params("id"))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(fiber.Map{"data": docs, "total": len(docs)})
	}
}

// UploadDocumentFile attaches a file to a document (multipart field: file)
// and drives the document to submitted.
func UploadDocumentFile(svc service.DocumentService, maxUploadBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if maxUploadBytes > 0 && fh.Size > maxUploadBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds upload size limit")
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		if _, ok := allowedUploadTypes[ct]; !ok {
			return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "file type is not allowed")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.AttachFile(c.UserContext(), id, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocumentStatus applies a reviewer decision through the lifecycle
// machine. Illegal transitions are reported with both states.
func UpdateDocumentStatus(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req statusUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		status, err := model.ParseDocumentStatus(req.Status)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "unknown document status")
		}

		doc, err := svc.Review(c.UserContext(), id, status, req.Reason)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocumentMetadata replaces a document's structured metadata fields.
func UpdateDocumentMetadata(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var meta model.DocumentMetadata
		if err := c.BodyParser(&meta); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := svc.UpdateMetadata(c.UserContext(), id, meta)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocument returns a document by ID.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument returns a presigned, time-limited download URL.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), id, downloadURLExpiry)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in_seconds": int(downloadURLExpiry.Seconds())})
	}
}

// DeleteDocument removes a document and its stored file.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
