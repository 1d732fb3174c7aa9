package service

import (
	"context"
	"strconv"

	"cargoconnect/internal/compliance"
	"cargoconnect/internal/customs"
	"cargoconnect/internal/metrics"
	"cargoconnect/internal/model"
)

// ComplianceService exposes the read side of the engine: on-demand compliance
// evaluation and customs form generation.
type ComplianceService interface {
	// Evaluate recomputes the compliance view for a shipment against a
	// jurisdiction. An empty policy selects the configured default.
	Evaluate(ctx context.Context, shipmentID, jurisdiction string, policy model.CompliancePolicy) (*model.ComplianceView, error)

	// GenerateForms derives the customs paperwork bundle for a destination.
	// Compliance gating is the caller's responsibility.
	GenerateForms(ctx context.Context, shipmentID, jurisdiction string) ([]model.FormDescriptor, error)

	// DefaultPolicy returns the policy used when a request does not pick one.
	DefaultPolicy() model.CompliancePolicy
}

type complianceService struct {
	eval    *compliance.Evaluator
	forms   *customs.Generator
	metrics *metrics.Metrics
}

// NewComplianceService constructs a ComplianceService over the evaluator and
// form generator.
func NewComplianceService(eval *compliance.Evaluator, forms *customs.Generator, m *metrics.Metrics) ComplianceService {
	return &complianceService{eval: eval, forms: forms, metrics: m}
}

func (s *complianceService) Evaluate(ctx context.Context, shipmentID, jurisdiction string, policy model.CompliancePolicy) (*model.ComplianceView, error) {
	if shipmentID == "" {
		return nil, ErrIDRequired
	}
	view, err := s.eval.Evaluate(ctx, shipmentID, jurisdiction, policy)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ComplianceEvaluationsTotal.
			WithLabelValues(string(view.Policy), strconv.FormatBool(view.Compliant)).Inc()
	}
	return view, nil
}

func (s *complianceService) GenerateForms(_ context.Context, shipmentID, jurisdiction string) ([]model.FormDescriptor, error) {
	if shipmentID == "" {
		return nil, ErrIDRequired
	}
	forms, err := s.forms.GenerateForms(shipmentID, jurisdiction)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CustomsFormsGeneratedTotal.Add(float64(len(forms)))
	}
	return forms, nil
}

func (s *complianceService) DefaultPolicy() model.CompliancePolicy {
	return s.eval.DefaultPolicy()
}
