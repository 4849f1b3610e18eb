package engine

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/madfam-io/ec0249-engine/internal/schema"
)

// SectionComplete reports whether a section's data satisfies its schema.
// A section that is not required is always complete; a required section with
// no data never is. Structured sections recurse: every subsection must be
// complete for the parent to count.
func SectionComplete(sec schema.Section, val schema.Value) bool {
	if !sec.Required {
		return true
	}
	if val == nil {
		return false
	}

	switch spec := sec.Spec.(type) {
	case schema.TextSpec:
		text, ok := val.(schema.Text)
		if !ok {
			return false
		}
		return utf8.RuneCountInString(string(text)) >= spec.EffectiveMinLength()

	case schema.ListSpec:
		items, ok := val.(schema.Items)
		if !ok {
			return false
		}
		return len(items) >= spec.EffectiveMinItems()

	case schema.TableSpec:
		rows, ok := val.(schema.Rows)
		if !ok {
			return false
		}
		return len(rows) >= spec.EffectiveMinRows()

	case schema.StructuredSpec:
		nested, ok := val.(schema.Nested)
		if !ok {
			return false
		}
		for _, sub := range spec.Subsections {
			if !SectionComplete(sub, nested[sub.ID]) {
				return false
			}
		}
		return true

	case schema.FormSpec:
		form, ok := val.(schema.Form)
		if !ok {
			return false
		}
		for _, fl := range spec.Fields {
			if strings.TrimSpace(form[fl.Name]) == "" {
				return false
			}
		}
		return true

	default:
		text, ok := val.(schema.Text)
		if !ok {
			return false
		}
		return strings.TrimSpace(string(text)) != ""
	}
}

// CompletionPercent derives the document completion percentage. Only
// top-level sections are units of the percentage: a structured section
// contributes a single unit, however deep it nests, and contributes nothing
// until every required leaf inside it is satisfied.
func CompletionPercent(tpl *schema.Template, data schema.Data) int {
	total := len(tpl.Sections)
	if total == 0 {
		return 0
	}
	complete := 0
	for _, sec := range tpl.Sections {
		if SectionComplete(sec, data[sec.ID]) {
			complete++
		}
	}
	return int(math.Round(100 * float64(complete) / float64(total)))
}
