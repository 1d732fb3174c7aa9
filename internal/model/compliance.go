package model

import (
	"fmt"
	"time"
)

// CompliancePolicy decides which document statuses satisfy a requirement.
type CompliancePolicy string

const (
	// PolicyOptimistic counts submitted-but-unreviewed documents as
	// satisfying, letting a shipment proceed pending review.
	PolicyOptimistic CompliancePolicy = "optimistic"
	// PolicyStrict only counts verified documents.
	PolicyStrict CompliancePolicy = "strict"
)

// ParseCompliancePolicy validates a raw policy string.
func ParseCompliancePolicy(s string) (CompliancePolicy, error) {
	switch p := CompliancePolicy(s); p {
	case PolicyOptimistic, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown compliance policy %q", s)
	}
}

// Satisfies reports whether a document in the given status counts toward
// compliance under this policy.
func (p CompliancePolicy) Satisfies(st DocumentStatus) bool {
	if p == PolicyStrict {
		return st == StatusVerified
	}
	return st == StatusSubmitted || st == StatusVerified
}

// ComplianceView is the derived readiness report for one shipment against one
// jurisdiction. It is never persisted; every view is recomputed from current
// document state.
type ComplianceView struct {
	ShipmentID   string           `json:"shipment_id"`
	Jurisdiction string           `json:"jurisdiction"`
	Policy       CompliancePolicy `json:"policy"`
	Required     []DocumentType   `json:"required"`
	Satisfied    []DocumentType   `json:"satisfied"`
	Missing      []DocumentType   `json:"missing"`
	Compliant    bool             `json:"compliant"`
	Restrictions []string         `json:"restrictions"`
}

// FormDescriptor identifies one customs form derived for a shipment.
type FormDescriptor struct {
	FormType    string    `json:"form_type"`
	Reference   string    `json:"reference"`
	GeneratedAt time.Time `json:"generated_at"`
}
