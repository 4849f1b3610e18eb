package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/madfam-io/ec0249-engine/internal/schema"
)

const baseStyles = `body { font-family: 'Segoe UI', Arial, sans-serif; color: #1a1a2e; max-width: 860px; margin: 0 auto; padding: 2rem; line-height: 1.6; }
header.document-header { border-bottom: 3px solid #16537e; margin-bottom: 2rem; padding-bottom: 1rem; }
h1 { color: #16537e; margin-bottom: 0.25rem; }
h2 { color: #16537e; border-bottom: 1px solid #d0d7de; padding-bottom: 0.25rem; margin-top: 2rem; }
h3, h4, h5, h6 { color: #1f6091; }
p.meta { color: #57606a; font-size: 0.9rem; margin: 0.15rem 0; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #f0f4f8; }
dl.form-fields dt { font-weight: 600; margin-top: 0.5rem; }
dl.form-fields dd { margin: 0 0 0.25rem 0; }
p.placeholder { color: #8b949e; font-style: italic; }`

// HTML renders the full standalone HTML export. It is infallible: the pdf
// variant relies on that when it degrades.
func (e *Exporter) HTML(tpl *schema.Template, doc Document) *Result {
	content := e.buildDocument(tpl, doc, baseStyles, "")
	return &Result{
		Content:  content,
		Filename: exportFilename(tpl, doc, ".html"),
		MimeType: "text/html",
	}
}

// buildDocument assembles the complete HTML document: header with template
// metadata, rendered sections, optional footer markup.
func (e *Exporter) buildDocument(tpl *schema.Template, doc Document, styles, footer string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(tpl.Title))
	b.WriteString("<style>\n" + styles + "\n</style>\n</head>\n<body>\n")

	b.WriteString(`<header class="document-header">` + "\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(tpl.Title))
	if tpl.Element != "" {
		fmt.Fprintf(&b, `<p class="meta">Elemento: %s</p>`+"\n", html.EscapeString(tpl.Element))
	}
	fmt.Fprintf(&b, `<p class="meta">Creado: %s</p>`+"\n", doc.CreatedAt.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, `<p class="meta">Actualizado: %s</p>`+"\n", doc.UpdatedAt.Format("02/01/2006 15:04"))
	b.WriteString("</header>\n")

	b.WriteString(e.renderSections(tpl, doc.Data))

	if footer != "" {
		b.WriteString(footer)
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func exportFilename(tpl *schema.Template, doc Document, ext string) string {
	ts := doc.UpdatedAt
	if ts.IsZero() {
		ts = doc.CreatedAt
	}
	return fmt.Sprintf("%s-%s%s", tpl.ID, ts.Format("2006-01-02"), ext)
}
