package lifecycle

import (
	"testing"

	"cargoconnect/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMachine_Validate(t *testing.T) {
	m := New(false)

	legal := []struct {
		from, to model.DocumentStatus
	}{
		{model.StatusPending, model.StatusSubmitted},
		{model.StatusSubmitted, model.StatusVerified},
		{model.StatusSubmitted, model.StatusRejected},
		{model.StatusRejected, model.StatusSubmitted},
	}
	for _, tr := range legal {
		assert.NoError(t, m.Validate(tr.from, tr.to), "%s -> %s should be legal", tr.from, tr.to)
	}
}

func TestMachine_Validate_Closure(t *testing.T) {
	// Everything outside the table must fail, including self-transitions.
	m := New(false)

	all := []model.DocumentStatus{
		model.StatusPending,
		model.StatusSubmitted,
		model.StatusVerified,
		model.StatusRejected,
	}
	legal := map[[2]model.DocumentStatus]bool{
		{model.StatusPending, model.StatusSubmitted}:  true,
		{model.StatusSubmitted, model.StatusVerified}: true,
		{model.StatusSubmitted, model.StatusRejected}: true,
		{model.StatusRejected, model.StatusSubmitted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			err := m.Validate(from, to)
			if legal[[2]model.DocumentStatus{from, to}] {
				assert.NoError(t, err)
				continue
			}
			var illegal *IllegalTransitionError
			assert.ErrorAs(t, err, &illegal, "%s -> %s must be illegal", from, to)
			assert.Equal(t, from, illegal.From)
			assert.Equal(t, to, illegal.To)
		}
	}
}

func TestMachine_ResubmitVerified(t *testing.T) {
	strict := New(false)
	var illegal *IllegalTransitionError
	assert.ErrorAs(t, strict.Validate(model.StatusVerified, model.StatusSubmitted), &illegal)

	relaxed := New(true)
	assert.NoError(t, relaxed.Validate(model.StatusVerified, model.StatusSubmitted))
	// The flag opens exactly one extra edge.
	assert.ErrorAs(t, relaxed.Validate(model.StatusVerified, model.StatusRejected), &illegal)
}
