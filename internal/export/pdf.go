package export

import (
	"html/template"
	"strings"

	"github.com/madfam-io/ec0249-engine/internal/schema"
)

// The pdf variant is not a binary PDF. It is the HTML export restyled for
// printing: fixed page size, page-break-avoid per section, a footer with a
// pagination placeholder. The caller presents it to the platform's print
// dialog where the user chooses "save as PDF".

const printStyles = baseStyles + `
@page { size: letter; margin: 2cm; }
section.document-section { page-break-inside: avoid; }
header.document-header { page-break-after: avoid; }
footer.print-footer { position: fixed; bottom: 0; width: 100%; text-align: center; font-size: 8pt; color: #8b949e; }
@media print { body { padding: 0; max-width: none; } }`

const pdfNote = "Exportación orientada a impresión: abra el documento y use " +
	"'Guardar como PDF' en el diálogo de impresión. No se genera un PDF binario."

const pdfFallbackNote = "La preparación para impresión falló; se entrega la " +
	"exportación HTML estándar."

var printShell = template.Must(template.New("print").Parse(
	`{{define "footer"}}<footer class="print-footer">{{.Title}} — página <span class="page-number"></span></footer>{{end}}{{template "footer" .}}`))

// PDF renders the print-ready variant. Any internal failure degrades to the
// plain HTML export with an explanatory note; this path never returns an
// error.
func (e *Exporter) PDF(tpl *schema.Template, doc Document) *Result {
	footer, err := e.printFooter(tpl)
	if err != nil {
		res := e.HTML(tpl, doc)
		res.Note = pdfFallbackNote
		return res
	}

	content := e.buildDocument(tpl, doc, printStyles, footer)
	return &Result{
		Content:    content,
		Filename:   exportFilename(tpl, doc, ".print.html"),
		MimeType:   "text/html",
		PrintReady: true,
		Note:       pdfNote,
	}
}

func renderPrintFooter(tpl *schema.Template) (string, error) {
	var b strings.Builder
	if err := printShell.Execute(&b, struct{ Title string }{Title: tpl.Title}); err != nil {
		return "", err
	}
	return b.String() + "\n", nil
}
