package customs

import (
	"testing"

	"cargoconnect/internal/model"
	"cargoconnect/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GenerateForms(t *testing.T) {
	reg := registry.New(registry.Seed())
	gen := NewGenerator(reg, "https://api.cargoconnect.com/")

	t.Run("US forms", func(t *testing.T) {
		forms, err := gen.GenerateForms("SHP-001", "US")
		require.NoError(t, err)
		require.Len(t, forms, 2)

		assert.Equal(t, "CBP Form 3461", forms[0].FormType)
		assert.Equal(t, "https://api.cargoconnect.com/customs/SHP-001/cbp-form-3461", forms[0].Reference)
		assert.Equal(t, "CBP Form 7501", forms[1].FormType)
		assert.Equal(t, "https://api.cargoconnect.com/customs/SHP-001/cbp-form-7501", forms[1].Reference)
		assert.False(t, forms[0].GeneratedAt.IsZero())
	})

	t.Run("punctuation in template names", func(t *testing.T) {
		forms, err := gen.GenerateForms("SHP-002", "EU")
		require.NoError(t, err)
		require.Len(t, forms, 2)
		assert.Equal(t, "https://api.cargoconnect.com/customs/SHP-002/single-administrative-document-sad", forms[0].Reference)
	})

	t.Run("deterministic output", func(t *testing.T) {
		a, err := gen.GenerateForms("SHP-003", "US")
		require.NoError(t, err)
		b, err := gen.GenerateForms("SHP-003", "US")
		require.NoError(t, err)
		for i := range a {
			assert.Equal(t, a[i].FormType, b[i].FormType)
			assert.Equal(t, a[i].Reference, b[i].Reference)
		}
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		_, err := gen.GenerateForms("SHP-001", "ZZ")
		assert.ErrorIs(t, err, registry.ErrUnknownJurisdiction)
	})

	t.Run("no templates yields empty bundle", func(t *testing.T) {
		reg := registry.New([]model.JurisdictionProfile{{Code: "XX"}})
		gen := NewGenerator(reg, "https://api.cargoconnect.com")
		forms, err := gen.GenerateForms("SHP-001", "XX")
		require.NoError(t, err)
		assert.Empty(t, forms)
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "cbp-form-3461", slug("CBP Form 3461"))
	assert.Equal(t, "single-administrative-document-sad", slug("Single Administrative Document (SAD)"))
	assert.Equal(t, "eur-1-movement-certificate", slug("EUR.1 Movement Certificate"))
	assert.Equal(t, "declaracao-de-importacao-di", slug("Declaracao de Importacao (DI)"))
}
