package schema

import (
	"fmt"
	"sort"
	"strconv"
)

// Value is one section's worth of document data. The concrete type is
// determined by the paired section's kind: Text for text/textarea/generic,
// Items for list, Rows for table/matrix, Nested for structured, Form for
// form_fields.
type Value interface {
	isValue()
}

// Text is prose content.
type Text string

// Items is an ordered list of entries.
type Items []string

// Rows is tabular data: one map per row, keyed by column name.
type Rows []map[string]string

// Nested holds per-subsection values of a structured section.
type Nested map[string]Value

// Form holds per-field values of a form_fields section.
type Form map[string]string

func (Text) isValue()   {}
func (Items) isValue()  {}
func (Rows) isValue()   {}
func (Nested) isValue() {}
func (Form) isValue()   {}

// Data maps top-level section ids to their values.
type Data map[string]Value

// EmptyValue builds the type-appropriate empty default for a section:
// empty string for scalar kinds, empty sequence for list/table/matrix, and
// a mapping pre-seeded with per-subsection/per-field defaults for
// structured/form_fields.
func EmptyValue(sec Section) Value {
	switch spec := sec.Spec.(type) {
	case TextSpec, GenericSpec:
		return Text("")
	case ListSpec:
		return Items{}
	case TableSpec:
		return Rows{}
	case StructuredSpec:
		n := make(Nested, len(spec.Subsections))
		for _, sub := range spec.Subsections {
			n[sub.ID] = EmptyValue(sub)
		}
		return n
	case FormSpec:
		f := make(Form, len(spec.Fields))
		for _, fl := range spec.Fields {
			f[fl.Name] = ""
		}
		return f
	default:
		return Text("")
	}
}

// EmptyData builds defaults for every top-level section of a template.
func EmptyData(tpl *Template) Data {
	d := make(Data, len(tpl.Sections))
	for _, sec := range tpl.Sections {
		d[sec.ID] = EmptyValue(sec)
	}
	return d
}

// DecodeValue validates untyped data (as produced by encoding/json) against
// a section schema and returns the typed value. A nil raw value decodes to
// nil, meaning "no data for this section".
func DecodeValue(sec Section, raw any) (Value, error) {
	if raw == nil {
		return nil, nil
	}
	switch spec := sec.Spec.(type) {
	case TextSpec:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("section %q: expected string, got %T", sec.ID, raw)
		}
		return Text(s), nil

	case GenericSpec:
		s, err := stringify(raw)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", sec.ID, err)
		}
		return Text(s), nil

	case ListSpec:
		seq, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("section %q: expected sequence, got %T", sec.ID, raw)
		}
		items := make(Items, 0, len(seq))
		for i, entry := range seq {
			s, err := stringify(entry)
			if err != nil {
				return nil, fmt.Errorf("section %q item %d: %w", sec.ID, i, err)
			}
			items = append(items, s)
		}
		return items, nil

	case TableSpec:
		seq, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("section %q: expected sequence of rows, got %T", sec.ID, raw)
		}
		rows := make(Rows, 0, len(seq))
		for i, entry := range seq {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("section %q row %d: expected mapping, got %T", sec.ID, i, entry)
			}
			row := make(map[string]string, len(m))
			for k, cell := range m {
				s, err := stringify(cell)
				if err != nil {
					return nil, fmt.Errorf("section %q row %d column %q: %w", sec.ID, i, k, err)
				}
				row[k] = s
			}
			rows = append(rows, row)
		}
		return rows, nil

	case StructuredSpec:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("section %q: expected mapping, got %T", sec.ID, raw)
		}
		n := make(Nested, len(m))
		for id, sub := range m {
			child, ok := spec.Subsection(id)
			if !ok {
				return nil, fmt.Errorf("section %q: unknown subsection %q", sec.ID, id)
			}
			v, err := DecodeValue(child, sub)
			if err != nil {
				return nil, err
			}
			if v != nil {
				n[id] = v
			}
		}
		return n, nil

	case FormSpec:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("section %q: expected mapping, got %T", sec.ID, raw)
		}
		f := make(Form, len(m))
		for name, cell := range m {
			if _, ok := spec.Field(name); !ok {
				return nil, fmt.Errorf("section %q: unknown field %q", sec.ID, name)
			}
			s, err := stringify(cell)
			if err != nil {
				return nil, fmt.Errorf("section %q field %q: %w", sec.ID, name, err)
			}
			f[name] = s
		}
		return f, nil

	default:
		return nil, fmt.Errorf("section %q: unknown section kind", sec.ID)
	}
}

// DecodeData decodes a full untyped data mapping against a template's
// top-level sections. Unknown section ids are rejected.
func DecodeData(tpl *Template, raw map[string]any) (Data, error) {
	d := make(Data, len(raw))
	for id, entry := range raw {
		sec, ok := templateSection(tpl, id)
		if !ok {
			return nil, fmt.Errorf("template %q: unknown section %q", tpl.ID, id)
		}
		v, err := DecodeValue(sec, entry)
		if err != nil {
			return nil, err
		}
		if v != nil {
			d[id] = v
		}
	}
	return d, nil
}

// EncodeValue converts a typed value back to the plain shapes that
// encoding/json produces, for persistence and API responses.
func EncodeValue(v Value) any {
	switch val := v.(type) {
	case Text:
		return string(val)
	case Items:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case Rows:
		out := make([]any, len(val))
		for i, row := range val {
			m := make(map[string]any, len(row))
			for k, cell := range row {
				m[k] = cell
			}
			out[i] = m
		}
		return out
	case Nested:
		m := make(map[string]any, len(val))
		for id, sub := range val {
			m[id] = EncodeValue(sub)
		}
		return m
	case Form:
		m := make(map[string]any, len(val))
		for name, cell := range val {
			m[name] = cell
		}
		return m
	default:
		return nil
	}
}

// EncodeData converts a full data mapping for serialization.
func EncodeData(d Data) map[string]any {
	out := make(map[string]any, len(d))
	for id, v := range d {
		out[id] = EncodeValue(v)
	}
	return out
}

// RowColumns returns a deterministic column order for a row set: the
// schema's headers when declared, otherwise the sorted keys of the first row.
func RowColumns(spec TableSpec, rows Rows) []string {
	if len(spec.Headers) > 0 {
		return spec.Headers
	}
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func templateSection(tpl *Template, id string) (Section, bool) {
	for _, sec := range tpl.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// stringify converts JSON scalars to their string form. Composite values are
// rejected: nesting beyond what the schema declares is a data error.
func stringify(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected scalar, got %T", v)
	}
}
