package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"cargoconnect/internal/model"
)

// ErrUnknownJurisdiction is returned when no profile exists for a code.
// This is a configuration gap: evaluation must not silently assume a
// jurisdiction has no requirements.
var ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

// Registry is an immutable lookup of jurisdiction profiles. It is built once
// at startup and shared by reference; it never mutates after construction.
type Registry struct {
	profiles map[string]model.JurisdictionProfile
}

// New builds a registry from the given profiles. Later duplicates of a code
// overwrite earlier ones, which lets file-loaded profiles extend the seed set.
func New(profiles []model.JurisdictionProfile) *Registry {
	m := make(map[string]model.JurisdictionProfile, len(profiles))
	for _, p := range profiles {
		m[p.Code] = p
	}
	return &Registry{profiles: m}
}

// Load builds a registry from the built-in seed profiles, optionally extended
// or overridden by a JSON file of profiles. An empty path means seed only.
// A file profile naming a document type outside the closed enum rejects the
// whole file; a typo must not silently weaken a jurisdiction's requirements.
func Load(path string) (*Registry, error) {
	profiles := Seed()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read jurisdictions file: %w", err)
		}
		var extra []model.JurisdictionProfile
		if err := json.Unmarshal(b, &extra); err != nil {
			return nil, fmt.Errorf("parse jurisdictions file: %w", err)
		}
		for _, p := range extra {
			for _, t := range p.RequiredDocumentTypes {
				if _, err := model.ParseDocumentType(string(t)); err != nil {
					return nil, fmt.Errorf("jurisdictions file: profile %q: %w", p.Code, err)
				}
			}
		}
		profiles = append(profiles, extra...)
	}
	return New(profiles), nil
}

// Profile returns the profile for a jurisdiction code.
// A profile with an empty required set is a valid result; only a missing
// code yields ErrUnknownJurisdiction.
func (r *Registry) Profile(code string) (model.JurisdictionProfile, error) {
	p, ok := r.profiles[code]
	if !ok {
		return model.JurisdictionProfile{}, fmt.Errorf("%w: %s", ErrUnknownJurisdiction, code)
	}
	return p, nil
}

// Codes returns all registered jurisdiction codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.profiles))
	for c := range r.profiles {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Seed returns the built-in jurisdiction profiles covering the destinations
// the platform ships to out of the box.
func Seed() []model.JurisdictionProfile {
	return []model.JurisdictionProfile{
		{
			Code: "US",
			RequiredDocumentTypes: []model.DocumentType{
				model.TypeInvoice,
				model.TypePackingList,
				model.TypeCustomsDeclaration,
				model.TypeCertificateOfOrigin,
			},
			Restrictions: []string{
				"Certain fruits require import permits",
				"Must meet USDA standards",
			},
			CustomsFormTemplates: []string{"CBP Form 3461", "CBP Form 7501"},
		},
		{
			Code: "EU",
			RequiredDocumentTypes: []model.DocumentType{
				model.TypeCertificateOfOrigin,
				model.TypePackingList,
				model.TypeCustomsDeclaration,
			},
			Restrictions: []string{
				"Must comply with EU food safety regulations",
				"Organic certification required if applicable",
			},
			CustomsFormTemplates: []string{
				"Single Administrative Document (SAD)",
				"Export Accompanying Document (EAD)",
			},
		},
		{
			Code: "GB",
			RequiredDocumentTypes: []model.DocumentType{
				model.TypeInvoice,
				model.TypePackingList,
				model.TypeCustomsDeclaration,
			},
			Restrictions: []string{
				"UKCA marking required for regulated goods",
			},
			CustomsFormTemplates: []string{"C88 Declaration"},
		},
		{
			Code: "AE",
			RequiredDocumentTypes: []model.DocumentType{
				model.TypeInvoice,
				model.TypeCertificateOfOrigin,
				model.TypeBillOfLading,
			},
			Restrictions: []string{
				"Certificate of origin must be attested by chamber of commerce",
			},
			CustomsFormTemplates: []string{"Dubai Customs Import Declaration"},
		},
		{
			Code: "SG",
			RequiredDocumentTypes: []model.DocumentType{
				model.TypeInvoice,
				model.TypePackingList,
				model.TypeBillOfLading,
			},
			Restrictions:         nil,
			CustomsFormTemplates: []string{"TradeNet Permit"},
		},
		{
			Code: "BR",
			RequiredDocumentTypes: []model.DocumentType{
				model.TypeInvoice,
				model.TypePackingList,
				model.TypeBillOfLading,
				model.TypeInsurance,
			},
			Restrictions: []string{
				"Import licence required before vessel departure",
			},
			CustomsFormTemplates: []string{"Declaracao de Importacao (DI)"},
		},
	}
}
