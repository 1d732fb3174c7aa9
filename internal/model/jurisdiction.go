package model

// JurisdictionProfile describes what a destination jurisdiction demands from
// an export shipment. Profiles are loaded once at startup and are read-only
// thereafter; a profile with an empty required set is a valid jurisdiction
// with zero requirements, which is not the same as an unknown jurisdiction.
type JurisdictionProfile struct {
	Code                  string         `json:"code"`
	RequiredDocumentTypes []DocumentType `json:"required_document_types"`
	Restrictions          []string       `json:"restrictions"`
	CustomsFormTemplates  []string       `json:"customs_form_templates"`
}
