package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/madfam-io/ec0249-engine/internal/schema"
	"golang.org/x/net/html"
)

// The docx variant is HTML with inline styles substituted so that word
// processors render it acceptably when opened. It is not a binary DOCX
// encoding; the .doc extension keeps word processors from rejecting the file
// as an invalid zip archive.

const docxNote = "Documento en formato HTML compatible con procesadores de " +
	"texto. Ábralo con Word o LibreOffice y guárdelo como .docx si necesita " +
	"el formato nativo."

// wordStyles maps element tags to the inline styles applied for word
// processors, which ignore most embedded stylesheets.
var wordStyles = map[string]string{
	"body":    "font-family: Calibri, 'Segoe UI', sans-serif; font-size: 11pt; color: #1a1a2e;",
	"h1":      "font-size: 18pt; color: #16537e;",
	"h2":      "font-size: 14pt; color: #16537e; border-bottom: 1pt solid #d0d7de;",
	"h3":      "font-size: 12pt; color: #1f6091;",
	"h4":      "font-size: 11pt; color: #1f6091;",
	"table":   "border-collapse: collapse; width: 100%;",
	"th":      "border: 1pt solid #999999; padding: 3pt 6pt; background: #f0f4f8; text-align: left;",
	"td":      "border: 1pt solid #999999; padding: 3pt 6pt;",
	"section": "margin-bottom: 12pt;",
	"dt":      "font-weight: bold;",
	"dd":      "margin: 0 0 6pt 0;",
}

// DOCX renders the word-processor variant by post-processing the HTML export:
// the document is parsed, inline styles are applied node by node, and the
// tree re-serialized.
func (e *Exporter) DOCX(tpl *schema.Template, doc Document) (*Result, error) {
	base := e.HTML(tpl, doc)

	styled, err := applyInlineStyles(base.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: docx variant: %v", ErrGenerationFailed, err)
	}

	return &Result{
		Content:  styled,
		Filename: exportFilename(tpl, doc, ".doc"),
		MimeType: "text/html",
		Note:     docxNote,
	}, nil
}

func applyInlineStyles(content string) (string, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse export: %w", err)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if style, ok := wordStyles[n.Data]; ok {
				setStyle(n, style)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	return buf.String(), nil
}

// setStyle prepends the inline style, keeping any style already present.
func setStyle(n *html.Node, style string) {
	for i, attr := range n.Attr {
		if attr.Key == "style" {
			n.Attr[i].Val = style + " " + attr.Val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
}
