package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/madfam-io/ec0249-engine/internal/schema"
)

const (
	placeholderNoItems = "Sin elementos"
	placeholderNoData  = "Sin datos"
)

// renderSections renders every top-level section, in template order, each
// wrapped in a <section> so print CSS can keep sections on one page.
func (e *Exporter) renderSections(tpl *schema.Template, data schema.Data) string {
	var b strings.Builder
	for _, sec := range tpl.Sections {
		b.WriteString(`<section class="document-section">` + "\n")
		e.renderSection(&b, sec, data[sec.ID], 2)
		b.WriteString("</section>\n")
	}
	return b.String()
}

// renderSection writes one section heading and body. level is the HTML
// heading level; nesting below <h6> stays at <h6>.
func (e *Exporter) renderSection(b *strings.Builder, sec schema.Section, val schema.Value, level int) {
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(b, "<h%d>%s</h%d>\n", level, html.EscapeString(sec.Title), level)

	if val == nil {
		val = schema.EmptyValue(sec)
	}

	switch spec := sec.Spec.(type) {
	case schema.TextSpec:
		text, _ := val.(schema.Text)
		b.WriteString(e.renderProse(string(text)))

	case schema.ListSpec:
		items, _ := val.(schema.Items)
		renderList(b, items)

	case schema.TableSpec:
		rows, _ := val.(schema.Rows)
		renderTable(b, spec, rows)

	case schema.StructuredSpec:
		nested, _ := val.(schema.Nested)
		for _, sub := range spec.Subsections {
			e.renderSection(b, sub, nested[sub.ID], level+1)
		}

	case schema.FormSpec:
		form, _ := val.(schema.Form)
		renderForm(b, spec, form)

	default:
		text, _ := val.(schema.Text)
		if s := strings.TrimSpace(string(text)); s != "" {
			fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(s))
		}
	}
}

// renderProse converts candidate prose to HTML. The content is treated as
// Markdown and the result sanitized, so pasted markup cannot inject script
// into exports.
func (e *Exporter) renderProse(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>\n"
	}
	return e.policy.Sanitize(buf.String())
}

func renderList(b *strings.Builder, items schema.Items) {
	if len(items) == 0 {
		b.WriteString(`<p class="placeholder">` + placeholderNoItems + "</p>\n")
		return
	}
	b.WriteString("<ul>\n")
	for _, item := range items {
		fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(item))
	}
	b.WriteString("</ul>\n")
}

func renderTable(b *strings.Builder, spec schema.TableSpec, rows schema.Rows) {
	if len(rows) == 0 {
		b.WriteString(`<p class="placeholder">` + placeholderNoData + "</p>\n")
		return
	}
	cols := schema.RowColumns(spec, rows)

	b.WriteString("<table>\n<thead>\n<tr>")
	for _, col := range cols {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(col))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, col := range cols {
			fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(row[col]))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}

func renderForm(b *strings.Builder, spec schema.FormSpec, form schema.Form) {
	b.WriteString(`<dl class="form-fields">` + "\n")
	for _, fl := range spec.Fields {
		label := fl.Label
		if label == "" {
			label = fl.Name
		}
		fmt.Fprintf(b, "<dt>%s</dt><dd>%s</dd>\n",
			html.EscapeString(label), html.EscapeString(form[fl.Name]))
	}
	b.WriteString("</dl>\n")
}
