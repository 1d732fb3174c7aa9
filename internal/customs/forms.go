package customs

import (
	"fmt"
	"strings"
	"time"

	"cargoconnect/internal/model"
)

// ProfileSource resolves jurisdiction profiles. Satisfied by registry.Registry.
type ProfileSource interface {
	Profile(code string) (model.JurisdictionProfile, error)
}

// Generator derives the customs paperwork bundle for a destination from the
// jurisdiction's form templates. Output is deterministic for a given shipment
// and jurisdiction; it does not check compliance itself, that gate belongs to
// the caller.
type Generator struct {
	profiles ProfileSource
	baseURL  string
	now      func() time.Time
}

// NewGenerator builds a Generator. baseURL prefixes form references, e.g.
// "https://api.cargoconnect.com".
func NewGenerator(profiles ProfileSource, baseURL string) *Generator {
	return &Generator{
		profiles: profiles,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// GenerateForms produces one descriptor per form template registered for the
// jurisdiction. Fails only when the jurisdiction is unknown.
func (g *Generator) GenerateForms(shipmentID, jurisdiction string) ([]model.FormDescriptor, error) {
	profile, err := g.profiles.Profile(jurisdiction)
	if err != nil {
		return nil, err
	}

	generatedAt := g.now().UTC()
	forms := make([]model.FormDescriptor, 0, len(profile.CustomsFormTemplates))
	for _, tmpl := range profile.CustomsFormTemplates {
		forms = append(forms, model.FormDescriptor{
			FormType:    tmpl,
			Reference:   fmt.Sprintf("%s/customs/%s/%s", g.baseURL, shipmentID, slug(tmpl)),
			GeneratedAt: generatedAt,
		})
	}
	return forms, nil
}

// slug lowercases a form name and collapses separators for use in a URL path,
// matching the reference scheme of the upstream form service.
func slug(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
