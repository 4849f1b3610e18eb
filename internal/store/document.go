package store

import (
	"encoding/json"
	"time"

	"github.com/madfam-io/ec0249-engine/internal/engine"
	"github.com/madfam-io/ec0249-engine/internal/schema"
)

// Status is the derived lifecycle state of a document. It is recomputed from
// the document's content on every save, so it can move backward when content
// is overwritten with less.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DeriveStatus maps a completion percentage to a status.
func DeriveStatus(percent int) Status {
	switch {
	case percent >= 100:
		return StatusCompleted
	case percent > 0:
		return StatusInProgress
	default:
		return StatusDraft
	}
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	return s == StatusDraft || s == StatusInProgress || s == StatusCompleted
}

// Metadata carries auxiliary document state.
type Metadata struct {
	EstimatedTime  int            `json:"estimated_time"` // minutes, from the template
	ElapsedTime    int            `json:"elapsed_time"`   // minutes of recorded work
	LastValidation *engine.Result `json:"last_validation,omitempty"`
}

// Document is one candidate's working copy of a template. All mutation goes
// through the store's Save so that Version, CompletionPercentage, and Status
// stay consistent with Data.
type Document struct {
	ID                   string
	TemplateID           string
	Status               Status
	Version              int
	CompletionPercentage int
	Data                 schema.Data
	Metadata             Metadata
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// record is the persisted and wire shape of a document.
type record struct {
	ID                   string         `json:"id"`
	TemplateID           string         `json:"template_id"`
	Status               Status         `json:"status"`
	Version              int            `json:"version"`
	CompletionPercentage int            `json:"completion_percentage"`
	Data                 map[string]any `json:"data"`
	Metadata             Metadata       `json:"metadata"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// MarshalJSON serializes the document with its typed data flattened back to
// plain JSON shapes.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{
		ID:                   d.ID,
		TemplateID:           d.TemplateID,
		Status:               d.Status,
		Version:              d.Version,
		CompletionPercentage: d.CompletionPercentage,
		Data:                 schema.EncodeData(d.Data),
		Metadata:             d.Metadata,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	})
}

// decodeRecord rebuilds a typed document from its persisted form. The
// template is needed to give the untyped data back its shapes.
func decodeRecord(raw []byte, tpl *schema.Template) (*Document, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	data, err := schema.DecodeData(tpl, rec.Data)
	if err != nil {
		return nil, err
	}
	return &Document{
		ID:                   rec.ID,
		TemplateID:           rec.TemplateID,
		Status:               rec.Status,
		Version:              rec.Version,
		CompletionPercentage: rec.CompletionPercentage,
		Data:                 data,
		Metadata:             rec.Metadata,
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
	}, nil
}

// clone copies the document with a fresh top-level data map. Saves mutate the
// clone and swap it in, so readers holding the old pointer see a consistent
// snapshot.
func (d *Document) clone() *Document {
	cp := *d
	cp.Data = make(schema.Data, len(d.Data))
	for id, v := range d.Data {
		cp.Data[id] = v
	}
	return &cp
}
