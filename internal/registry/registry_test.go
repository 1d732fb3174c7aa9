package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cargoconnect/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Profile(t *testing.T) {
	reg := New(Seed())

	t.Run("known jurisdiction", func(t *testing.T) {
		p, err := reg.Profile("US")
		require.NoError(t, err)
		assert.Equal(t, "US", p.Code)
		assert.Contains(t, p.RequiredDocumentTypes, model.TypeInvoice)
		assert.Contains(t, p.CustomsFormTemplates, "CBP Form 3461")
	})

	t.Run("unknown jurisdiction is an error, not an empty profile", func(t *testing.T) {
		_, err := reg.Profile("ZZ")
		assert.ErrorIs(t, err, ErrUnknownJurisdiction)
	})

	t.Run("zero requirements is a valid profile", func(t *testing.T) {
		reg := New([]model.JurisdictionProfile{{Code: "XX"}})
		p, err := reg.Profile("XX")
		require.NoError(t, err)
		assert.Empty(t, p.RequiredDocumentTypes)
	})
}

func TestRegistry_Codes(t *testing.T) {
	reg := New([]model.JurisdictionProfile{{Code: "US"}, {Code: "AE"}, {Code: "EU"}})
	assert.Equal(t, []string{"AE", "EU", "US"}, reg.Codes())
}

func TestLoad(t *testing.T) {
	t.Run("seed only", func(t *testing.T) {
		reg, err := Load("")
		require.NoError(t, err)
		_, err = reg.Profile("EU")
		assert.NoError(t, err)
	})

	t.Run("file extends and overrides seed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jurisdictions.json")
		data := `[
			{"code": "JP", "required_document_types": ["invoice"], "customs_form_templates": ["NACCS Declaration"]},
			{"code": "US", "required_document_types": ["invoice"]}
		]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		reg, err := Load(path)
		require.NoError(t, err)

		jp, err := reg.Profile("JP")
		require.NoError(t, err)
		assert.Equal(t, []model.DocumentType{model.TypeInvoice}, jp.RequiredDocumentTypes)

		us, err := reg.Profile("US")
		require.NoError(t, err)
		assert.Equal(t, []model.DocumentType{model.TypeInvoice}, us.RequiredDocumentTypes)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/does/not/exist.json")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnknownJurisdiction))
	})

	t.Run("unknown document type in file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jurisdictions.json")
		data := `[{"code": "JP", "required_document_types": ["invoce"]}]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JP")
		assert.Contains(t, err.Error(), "invoce")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
