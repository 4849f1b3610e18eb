// Package export renders a (template, document) pair into deliverable
// artifacts. All three formats are HTML at heart: the pdf variant is
// print-styled HTML meant for a browser's "save as PDF" dialog, and the docx
// variant is HTML with inline styles that word processors accept. Producing
// true binary PDF/DOCX encodings is out of scope by design.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/madfam-io/ec0249-engine/internal/schema"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Format selects the export variant.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var (
	// ErrFormatUnsupported is returned for formats outside html/pdf/docx.
	ErrFormatUnsupported = errors.New("export format not supported")
	// ErrGenerationFailed wraps internal rendering failures.
	ErrGenerationFailed = errors.New("export generation failed")
)

// Document is the exporter's read-only view of a document instance.
type Document struct {
	ID        string
	Data      schema.Data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Result is one rendered export.
type Result struct {
	Content    string `json:"content"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	PrintReady bool   `json:"print_ready,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Exporter renders documents. It is safe for concurrent use.
type Exporter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy

	// printFooter builds the pdf variant's footer markup; swappable so the
	// degradation path can be exercised.
	printFooter func(*schema.Template) (string, error)
}

// New creates an exporter. Prose sections are rendered as Markdown and
// sanitized before being embedded, since their content comes from candidates.
func New() *Exporter {
	return &Exporter{
		md:          goldmark.New(),
		policy:      bluemonday.UGCPolicy(),
		printFooter: renderPrintFooter,
	}
}

// Export renders the document in the requested format. Unsupported formats
// fail fast; failures inside the pdf variant degrade to plain HTML instead of
// propagating.
func (e *Exporter) Export(tpl *schema.Template, doc Document, format Format) (*Result, error) {
	switch format {
	case FormatHTML:
		return e.HTML(tpl, doc), nil
	case FormatPDF:
		return e.PDF(tpl, doc), nil
	case FormatDOCX:
		return e.DOCX(tpl, doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormatUnsupported, format)
	}
}
