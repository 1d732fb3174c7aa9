package compliance

import (
	"context"
	"sync"
	"time"

	"cargoconnect/internal/event"
	"cargoconnect/internal/model"
)

// ProfileSource resolves jurisdiction profiles. Satisfied by registry.Registry.
type ProfileSource interface {
	Profile(code string) (model.JurisdictionProfile, error)
}

// DocumentSource lists a shipment's documents. Satisfied by the repositories.
type DocumentSource interface {
	ListByShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error)
}

// Evaluator computes shipment readiness against a jurisdiction's required
// document set. Evaluation is a pure read over current store state: nothing
// is cached across calls, so repeated evaluation of an unchanged store yields
// identical views.
type Evaluator struct {
	profiles      ProfileSource
	docs          DocumentSource
	sink          event.Sink
	defaultPolicy model.CompliancePolicy

	// Tracks the last compliant bit observed per (shipment, jurisdiction,
	// policy) so a flip can be reported as shipment.compliance.changed.
	// This is event bookkeeping only; views are always recomputed. Entries
	// are one bool each and are never evicted, so the map grows with the
	// number of distinct keys evaluated over the process lifetime.
	mu   sync.Mutex
	last map[string]bool
}

// NewEvaluator builds an Evaluator. A nil sink disables change events.
func NewEvaluator(profiles ProfileSource, docs DocumentSource, sink event.Sink, defaultPolicy model.CompliancePolicy) *Evaluator {
	if sink == nil {
		sink = event.NopSink{}
	}
	if defaultPolicy == "" {
		defaultPolicy = model.PolicyOptimistic
	}
	return &Evaluator{
		profiles:      profiles,
		docs:          docs,
		sink:          sink,
		defaultPolicy: defaultPolicy,
		last:          make(map[string]bool),
	}
}

// DefaultPolicy returns the policy applied when the caller does not pick one.
func (e *Evaluator) DefaultPolicy() model.CompliancePolicy {
	return e.defaultPolicy
}

// Evaluate builds the compliance view for a shipment against a jurisdiction.
// An unregistered jurisdiction is a hard failure (registry.ErrUnknownJurisdiction);
// silently assuming zero requirements would let non-compliant shipments through.
func (e *Evaluator) Evaluate(ctx context.Context, shipmentID, jurisdiction string, policy model.CompliancePolicy) (*model.ComplianceView, error) {
	if policy == "" {
		policy = e.defaultPolicy
	}

	profile, err := e.profiles.Profile(jurisdiction)
	if err != nil {
		return nil, err
	}

	docs, err := e.docs.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	satisfied := make([]model.DocumentType, 0, len(docs))
	seen := make(map[model.DocumentType]bool, len(docs))
	for _, d := range docs {
		if seen[d.Type] || !policy.Satisfies(d.Status) {
			continue
		}
		seen[d.Type] = true
		satisfied = append(satisfied, d.Type)
	}

	missing := make([]model.DocumentType, 0, len(profile.RequiredDocumentTypes))
	for _, t := range profile.RequiredDocumentTypes {
		if !seen[t] {
			missing = append(missing, t)
		}
	}

	view := &model.ComplianceView{
		ShipmentID:   shipmentID,
		Jurisdiction: jurisdiction,
		Policy:       policy,
		Required:     profile.RequiredDocumentTypes,
		Satisfied:    satisfied,
		Missing:      missing,
		Compliant:    len(missing) == 0,
		Restrictions: profile.Restrictions,
	}

	e.noteResult(view)
	return view, nil
}

func (e *Evaluator) noteResult(view *model.ComplianceView) {
	key := view.ShipmentID + "|" + view.Jurisdiction + "|" + string(view.Policy)

	e.mu.Lock()
	prev, known := e.last[key]
	e.last[key] = view.Compliant
	e.mu.Unlock()

	if known && prev != view.Compliant {
		e.sink.Emit(event.Event{
			Name:       event.ShipmentComplianceChanged,
			ShipmentID: view.ShipmentID,
			Fields: map[string]any{
				"jurisdiction": view.Jurisdiction,
				"policy":       string(view.Policy),
				"compliant":    view.Compliant,
				"missing":      view.Missing,
			},
			OccurredAt: time.Now().UTC(),
		})
	}
}
