package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// templateYAML mirrors the on-disk template format.
type templateYAML struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Element       string        `yaml:"element"`
	Required      bool          `yaml:"required"`
	EstimatedTime int           `yaml:"estimated_time"`
	Sections      []sectionYAML `yaml:"sections"`
}

type sectionYAML struct {
	ID         string          `yaml:"id"`
	Title      string          `yaml:"title"`
	Type       string          `yaml:"type"`
	Required   bool            `yaml:"required"`
	Validation *validationYAML `yaml:"validation"`
	Headers    []string        `yaml:"headers"`
	Sections   []sectionYAML   `yaml:"sections"`
	Fields     []fieldYAML     `yaml:"fields"`
}

type validationYAML struct {
	MinLength    int `yaml:"min_length"`
	MaxLength    int `yaml:"max_length"`
	MinItems     int `yaml:"min_items"`
	MinRows      int `yaml:"min_rows"`
	MinQuestions int `yaml:"min_questions"`
}

type fieldYAML struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Type  string `yaml:"type"`
}

// ParseTemplate decodes and validates a single YAML template definition.
func ParseTemplate(data []byte) (*Template, error) {
	var raw templateYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return buildTemplate(raw)
}

// LoadDir loads every *.yaml / *.yml template under dir, sorted by filename.
func LoadDir(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var tpls []*Template
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tpl, err := ParseTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		tpls = append(tpls, tpl)
	}
	return tpls, nil
}

func buildTemplate(raw templateYAML) (*Template, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("template id is required")
	}
	if raw.Title == "" {
		return nil, fmt.Errorf("template %q: title is required", raw.ID)
	}
	if len(raw.Sections) == 0 {
		return nil, fmt.Errorf("template %q: at least one section is required", raw.ID)
	}

	sections, err := buildSections(raw.Sections)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", raw.ID, err)
	}

	return &Template{
		ID:            raw.ID,
		Title:         raw.Title,
		Element:       raw.Element,
		Required:      raw.Required,
		EstimatedTime: raw.EstimatedTime,
		Sections:      sections,
	}, nil
}

func buildSections(raws []sectionYAML) ([]Section, error) {
	sections := make([]Section, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		sec, err := buildSection(raw)
		if err != nil {
			return nil, err
		}
		if seen[sec.ID] {
			return nil, fmt.Errorf("duplicate section id %q", sec.ID)
		}
		seen[sec.ID] = true
		sections = append(sections, sec)
	}
	return sections, nil
}

func buildSection(raw sectionYAML) (Section, error) {
	if raw.ID == "" {
		return Section{}, fmt.Errorf("section id is required")
	}
	if raw.Title == "" {
		return Section{}, fmt.Errorf("section %q: title is required", raw.ID)
	}
	if raw.Type == "" {
		return Section{}, fmt.Errorf("section %q: type is required", raw.ID)
	}

	v := raw.Validation
	if v == nil {
		v = &validationYAML{}
	}

	var spec SectionSpec
	switch raw.Type {
	case "text":
		spec = TextSpec{MinLength: v.MinLength, MaxLength: v.MaxLength}
	case "textarea":
		spec = TextSpec{Multiline: true, MinLength: v.MinLength, MaxLength: v.MaxLength}
	case "list":
		// min_questions is the legacy name used by interview-guide
		// sections; it behaves exactly like min_items.
		min := v.MinItems
		if min == 0 {
			min = v.MinQuestions
		}
		spec = ListSpec{MinItems: min}
	case "table":
		spec = TableSpec{Headers: raw.Headers, MinRows: v.MinRows}
	case "matrix":
		spec = TableSpec{Matrix: true, Headers: raw.Headers, MinRows: v.MinRows}
	case "structured":
		if len(raw.Sections) == 0 {
			return Section{}, fmt.Errorf("structured section %q: subsections are required", raw.ID)
		}
		subs, err := buildSections(raw.Sections)
		if err != nil {
			return Section{}, fmt.Errorf("section %q: %w", raw.ID, err)
		}
		spec = StructuredSpec{Subsections: subs}
	case "form_fields":
		if len(raw.Fields) == 0 {
			return Section{}, fmt.Errorf("form_fields section %q: fields are required", raw.ID)
		}
		fields := make([]Field, 0, len(raw.Fields))
		seen := make(map[string]bool, len(raw.Fields))
		for _, f := range raw.Fields {
			if f.Name == "" {
				return Section{}, fmt.Errorf("section %q: field name is required", raw.ID)
			}
			if seen[f.Name] {
				return Section{}, fmt.Errorf("section %q: duplicate field %q", raw.ID, f.Name)
			}
			seen[f.Name] = true
			fields = append(fields, Field{Name: f.Name, Label: f.Label, Type: f.Type})
		}
		spec = FormSpec{Fields: fields}
	default:
		// Unknown kinds degrade to the generic "any content" rule.
		spec = GenericSpec{}
	}

	return Section{
		ID:       raw.ID,
		Title:    raw.Title,
		Required: raw.Required,
		Spec:     spec,
	}, nil
}
