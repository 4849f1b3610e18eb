package schema

// Kind identifies the shape of a section's data.
type Kind string

const (
	KindText       Kind = "text"
	KindTextarea   Kind = "textarea"
	KindList       Kind = "list"
	KindTable      Kind = "table"
	KindMatrix     Kind = "matrix"
	KindStructured Kind = "structured"
	KindFormFields Kind = "form_fields"
	KindGeneric    Kind = "generic"
)

// Defaults applied when a section declares no explicit threshold.
const (
	DefaultMinLength = 10
	DefaultMinItems  = 1
	DefaultMinRows   = 1
)

// Template is the immutable schema for one deliverable.
type Template struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Element       string    `json:"element,omitempty"` // grouping code, e.g. "E0875"
	Required      bool      `json:"required"`
	EstimatedTime int       `json:"estimated_time,omitempty"` // minutes
	Sections      []Section `json:"sections"`
}

// Section is one schema node of a template. The kind-specific part lives in
// Spec so that subsections exist only on structured sections and field lists
// only on form sections.
type Section struct {
	ID       string
	Title    string
	Required bool
	Spec     SectionSpec
}

// Kind reports the section's data kind.
func (s Section) Kind() Kind { return s.Spec.Kind() }

// SectionSpec is the kind-specific part of a section schema.
type SectionSpec interface {
	Kind() Kind
}

// TextSpec describes prose sections. A zero MinLength means no explicit rule
// was declared; completion then falls back to DefaultMinLength while the
// validator stays silent. MaxLength 0 means unlimited.
type TextSpec struct {
	Multiline bool
	MinLength int
	MaxLength int
}

func (t TextSpec) Kind() Kind {
	if t.Multiline {
		return KindTextarea
	}
	return KindText
}

// EffectiveMinLength is the threshold used for completion.
func (t TextSpec) EffectiveMinLength() int {
	if t.MinLength > 0 {
		return t.MinLength
	}
	return DefaultMinLength
}

// ListSpec describes sections holding an ordered sequence of entries.
type ListSpec struct {
	MinItems int
}

func (l ListSpec) Kind() Kind { return KindList }

func (l ListSpec) EffectiveMinItems() int {
	if l.MinItems > 0 {
		return l.MinItems
	}
	return DefaultMinItems
}

// TableSpec describes tabular sections. Headers fixes the column order for
// exports; when empty, exports fall back to the first row's keys.
type TableSpec struct {
	Matrix  bool
	Headers []string
	MinRows int
}

func (t TableSpec) Kind() Kind {
	if t.Matrix {
		return KindMatrix
	}
	return KindTable
}

func (t TableSpec) EffectiveMinRows() int {
	if t.MinRows > 0 {
		return t.MinRows
	}
	return DefaultMinRows
}

// StructuredSpec nests further sections. The loader guarantees Subsections is
// never empty.
type StructuredSpec struct {
	Subsections []Section
}

func (s StructuredSpec) Kind() Kind { return KindStructured }

// Subsection returns the subsection with the given id.
func (s StructuredSpec) Subsection(id string) (Section, bool) {
	for _, sub := range s.Subsections {
		if sub.ID == id {
			return sub, true
		}
	}
	return Section{}, false
}

// FormSpec describes a flat group of named input fields. The loader
// guarantees Fields is never empty.
type FormSpec struct {
	Fields []Field
}

func (f FormSpec) Kind() Kind { return KindFormFields }

// Field returns the field with the given name.
func (f FormSpec) Field(name string) (Field, bool) {
	for _, fl := range f.Fields {
		if fl.Name == name {
			return fl, true
		}
	}
	return Field{}, false
}

// Field is one input of a form_fields section.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"` // display hint only: "text", "date", "email", ...
}

// GenericSpec is the fallback for section kinds the engine has no special
// handling for: any non-empty value counts as content.
type GenericSpec struct{}

func (GenericSpec) Kind() Kind { return KindGeneric }
