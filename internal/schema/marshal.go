package schema

import "encoding/json"

// sectionJSON is the wire shape of a section, mirroring the YAML template
// format.
type sectionJSON struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Type       Kind            `json:"type"`
	Required   bool            `json:"required"`
	Validation *validationJSON `json:"validation,omitempty"`
	Headers    []string        `json:"headers,omitempty"`
	Sections   []Section       `json:"sections,omitempty"`
	Fields     []Field         `json:"fields,omitempty"`
}

type validationJSON struct {
	MinLength int `json:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty"`
	MinItems  int `json:"min_items,omitempty"`
	MinRows   int `json:"min_rows,omitempty"`
}

// MarshalJSON flattens the tagged variant into the declarative wire shape.
func (s Section) MarshalJSON() ([]byte, error) {
	out := sectionJSON{
		ID:       s.ID,
		Title:    s.Title,
		Type:     s.Kind(),
		Required: s.Required,
	}

	switch spec := s.Spec.(type) {
	case TextSpec:
		if spec.MinLength > 0 || spec.MaxLength > 0 {
			out.Validation = &validationJSON{MinLength: spec.MinLength, MaxLength: spec.MaxLength}
		}
	case ListSpec:
		if spec.MinItems > 0 {
			out.Validation = &validationJSON{MinItems: spec.MinItems}
		}
	case TableSpec:
		out.Headers = spec.Headers
		if spec.MinRows > 0 {
			out.Validation = &validationJSON{MinRows: spec.MinRows}
		}
	case StructuredSpec:
		out.Sections = spec.Subsections
	case FormSpec:
		out.Fields = spec.Fields
	}

	return json.Marshal(out)
}
