package lifecycle

import (
	"fmt"

	"cargoconnect/internal/model"
)

// IllegalTransitionError reports a transition that is not in the legal table.
// It carries both states so stale clients can be debugged from the response.
type IllegalTransitionError struct {
	From model.DocumentStatus
	To   model.DocumentStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// Machine validates document status transitions against the legal table.
// It is the single authority on what moves are allowed; no other code may
// assign a document status directly.
//
// Legal transitions:
//
//	pending   -> submitted  (file uploaded)
//	submitted -> verified   (reviewer approval)
//	submitted -> rejected   (reviewer rejection, reason recorded)
//	rejected  -> submitted  (re-upload)
//	verified  -> submitted  (correction, only when resubmission is enabled)
type Machine struct {
	allowResubmitVerified bool
}

// New builds a Machine. allowResubmitVerified gates the verified->submitted
// correction path.
func New(allowResubmitVerified bool) *Machine {
	return &Machine{allowResubmitVerified: allowResubmitVerified}
}

var transitions = map[model.DocumentStatus][]model.DocumentStatus{
	model.StatusPending:   {model.StatusSubmitted},
	model.StatusSubmitted: {model.StatusVerified, model.StatusRejected},
	model.StatusRejected:  {model.StatusSubmitted},
}

// Validate returns nil if from -> to is legal, or an *IllegalTransitionError
// otherwise. It never coerces: anything outside the table is an error.
func (m *Machine) Validate(from, to model.DocumentStatus) error {
	if m.allowResubmitVerified && from == model.StatusVerified && to == model.StatusSubmitted {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &IllegalTransitionError{From: from, To: to}
}
