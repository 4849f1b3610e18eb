package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/madfam-io/ec0249-engine/internal/schema"
)

// SectionDiagnostics groups validation messages under the section that
// produced them.
type SectionDiagnostics struct {
	SectionID string   `json:"section_id"`
	Title     string   `json:"title"`
	Messages  []string `json:"messages"`
}

// Result is the outcome of validating a whole document.
type Result struct {
	IsValid              bool                 `json:"is_valid"`
	Errors               []SectionDiagnostics `json:"errors"`
	Warnings             []SectionDiagnostics `json:"warnings"`
	SectionsValidated    int                  `json:"sections_validated"`
	SectionsWithErrors   int                  `json:"sections_with_errors"`
	CompletionPercentage int                  `json:"completion_percentage"`
	ValidatedAt          time.Time            `json:"validated_at"`
}

// ValidateSection checks one section's data against its schema and returns
// user-facing errors and warnings. A required section with no data at all
// short-circuits with a single error. Exceeding a maximum length is only a
// warning and never blocks validity. Nested failures keep the originating
// subsection or field id in the message so they stay traceable.
func ValidateSection(sec schema.Section, val schema.Value) (errs, warns []string) {
	if sec.Required && val == nil {
		return []string{"Esta sección es obligatoria"}, nil
	}
	if val == nil {
		return nil, nil
	}

	switch spec := sec.Spec.(type) {
	case schema.TextSpec:
		text, ok := val.(schema.Text)
		if !ok {
			return []string{"Formato de datos inválido"}, nil
		}
		n := utf8.RuneCountInString(string(text))
		if spec.MinLength > 0 && n < spec.MinLength {
			errs = append(errs, fmt.Sprintf("Se requieren mínimo %d caracteres", spec.MinLength))
		}
		if spec.MaxLength > 0 && n > spec.MaxLength {
			warns = append(warns, fmt.Sprintf("Se recomienda no exceder %d caracteres", spec.MaxLength))
		}

	case schema.ListSpec:
		items, ok := val.(schema.Items)
		if !ok {
			return []string{"Formato de datos inválido"}, nil
		}
		if spec.MinItems > 0 && len(items) < spec.MinItems {
			errs = append(errs, fmt.Sprintf("Se requieren mínimo %d elementos", spec.MinItems))
		}

	case schema.TableSpec:
		rows, ok := val.(schema.Rows)
		if !ok {
			return []string{"Formato de datos inválido"}, nil
		}
		if spec.MinRows > 0 && len(rows) < spec.MinRows {
			errs = append(errs, fmt.Sprintf("Se requieren mínimo %d filas", spec.MinRows))
		}

	case schema.StructuredSpec:
		nested, ok := val.(schema.Nested)
		if !ok {
			return []string{"Formato de datos inválido"}, nil
		}
		for _, sub := range spec.Subsections {
			subErrs, subWarns := ValidateSection(sub, nested[sub.ID])
			for _, msg := range subErrs {
				errs = append(errs, sub.ID+": "+msg)
			}
			for _, msg := range subWarns {
				warns = append(warns, sub.ID+": "+msg)
			}
		}

	case schema.FormSpec:
		form, ok := val.(schema.Form)
		if !ok {
			return []string{"Formato de datos inválido"}, nil
		}
		for _, fl := range spec.Fields {
			if strings.TrimSpace(form[fl.Name]) == "" {
				label := fl.Label
				if label == "" {
					label = fl.Name
				}
				errs = append(errs, fmt.Sprintf("El campo '%s' es obligatorio", label))
			}
		}
	}

	return errs, warns
}

// ValidateDocument walks every top-level section of a template, aggregates
// per-section diagnostics, and snapshots the completion percentage at
// validation time.
func ValidateDocument(tpl *schema.Template, data schema.Data) *Result {
	// Errors and Warnings start as empty slices so they serialize as [] and
	// clients can iterate without a null check.
	res := &Result{
		IsValid:              true,
		Errors:               []SectionDiagnostics{},
		Warnings:             []SectionDiagnostics{},
		CompletionPercentage: CompletionPercent(tpl, data),
		ValidatedAt:          time.Now().UTC(),
	}

	for _, sec := range tpl.Sections {
		res.SectionsValidated++
		errs, warns := ValidateSection(sec, data[sec.ID])
		if len(errs) > 0 {
			res.IsValid = false
			res.SectionsWithErrors++
			res.Errors = append(res.Errors, SectionDiagnostics{
				SectionID: sec.ID,
				Title:     sec.Title,
				Messages:  errs,
			})
		}
		if len(warns) > 0 {
			res.Warnings = append(res.Warnings, SectionDiagnostics{
				SectionID: sec.ID,
				Title:     sec.Title,
				Messages:  warns,
			})
		}
	}

	return res
}
