package model

import (
	"fmt"
	"time"
)

// DocumentType is the closed set of document kinds a shipment can carry.
type DocumentType string

const (
	TypeInvoice             DocumentType = "invoice"
	TypePackingList         DocumentType = "packing_list"
	TypeBillOfLading        DocumentType = "bill_of_lading"
	TypeCustomsDeclaration  DocumentType = "customs_declaration"
	TypeCertificateOfOrigin DocumentType = "certificate_of_origin"
	TypeInsurance           DocumentType = "insurance"
	TypeOther               DocumentType = "other"
)

var documentTypes = map[DocumentType]struct{}{
	TypeInvoice:             {},
	TypePackingList:         {},
	TypeBillOfLading:        {},
	TypeCustomsDeclaration:  {},
	TypeCertificateOfOrigin: {},
	TypeInsurance:           {},
	TypeOther:               {},
}

// ParseDocumentType validates a raw string against the closed type set.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if _, ok := documentTypes[t]; !ok {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// DocumentStatus is the lifecycle state of a document.
// Status is only ever changed through the lifecycle transition operation.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusSubmitted DocumentStatus = "submitted"
	StatusVerified  DocumentStatus = "verified"
	StatusRejected  DocumentStatus = "rejected"
)

var documentStatuses = map[DocumentStatus]struct{}{
	StatusPending:   {},
	StatusSubmitted: {},
	StatusVerified:  {},
	StatusRejected:  {},
}

// ParseDocumentStatus validates a raw string against the closed status set.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	st := DocumentStatus(s)
	if _, ok := documentStatuses[st]; !ok {
		return "", fmt.Errorf("unknown document status %q", s)
	}
	return st, nil
}

// DocumentMetadata holds optional structured fields attached to a document.
type DocumentMetadata struct {
	DocumentNumber   string     `json:"document_number,omitempty"`
	IssueDate        *time.Time `json:"issue_date,omitempty"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	IssuingAuthority string     `json:"issuing_authority,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
}

// DocumentRecord represents a single customs/compliance document attached to a
// shipment. At most one non-rejected record exists per (shipment, type) pair.
// This is a pure domain model with no database-specific dependencies or tags.
type DocumentRecord struct {
	ID          string           `json:"id"`
	ShipmentID  string           `json:"shipment_id"`
	Type        DocumentType     `json:"type"`
	Status      DocumentStatus   `json:"status"`
	FileURL     string           `json:"file_url,omitempty"`
	Size        int64            `json:"size,omitempty"`
	ContentType string           `json:"content_type,omitempty"`
	Metadata    DocumentMetadata `json:"metadata"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Active reports whether this record blocks creation of another document of
// the same type for the same shipment. Rejected records may be superseded.
func (d *DocumentRecord) Active() bool {
	return d.Status != StatusRejected
}
