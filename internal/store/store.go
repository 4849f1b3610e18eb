package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/madfam-io/ec0249-engine/internal/engine"
	"github.com/madfam-io/ec0249-engine/internal/events"
	"github.com/madfam-io/ec0249-engine/internal/export"
	"github.com/madfam-io/ec0249-engine/internal/schema"
	"github.com/madfam-io/ec0249-engine/internal/storage"
)

var (
	// ErrTemplateNotFound signals an unknown template id.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrDocumentNotFound signals an unknown document id.
	ErrDocumentNotFound = errors.New("document not found")
)

// Store owns the lifetime of every document instance. Templates come from an
// immutable catalog; durability is delegated to the persistence collaborator,
// one record per document plus an index record listing known ids.
type Store struct {
	catalog  *schema.Catalog
	storage  storage.Store
	bus      *events.Bus
	exporter *export.Exporter
	log      *slog.Logger
	prefix   string

	mu    sync.RWMutex
	docs  map[string]*Document
	order []string

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New creates a document store.
func New(catalog *schema.Catalog, st storage.Store, bus *events.Bus, log *slog.Logger, keyPrefix string) *Store {
	return &Store{
		catalog:  catalog,
		storage:  st,
		bus:      bus,
		exporter: export.New(),
		log:      log,
		prefix:   keyPrefix,
		docs:     make(map[string]*Document),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Create builds a new document from a template. Sections absent from initial
// get type-appropriate empty defaults; the completion percentage is computed
// against the merged data, so a seeded document may start above 0%. The
// status always starts as draft.
func (s *Store) Create(ctx context.Context, templateID string, initial map[string]any) (*Document, error) {
	tpl, ok := s.catalog.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, templateID)
	}

	seed, err := schema.DecodeData(tpl, initial)
	if err != nil {
		return nil, fmt.Errorf("initial data: %w", err)
	}

	data := schema.EmptyData(tpl)
	for id, v := range seed {
		data[id] = v
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:                   newDocumentID(templateID, now),
		TemplateID:           templateID,
		Status:               StatusDraft,
		Version:              1,
		CompletionPercentage: engine.CompletionPercent(tpl, data),
		Data:                 data,
		Metadata:             Metadata{EstimatedTime: tpl.EstimatedTime},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	s.mu.Unlock()

	s.persist(ctx, doc, "create")

	s.bus.Publish(events.Event{
		Name:       events.DocumentCreated,
		DocumentID: doc.ID,
		Fields:     map[string]any{"template_id": templateID},
	})
	return doc, nil
}

// Save merges partial data into the document at top-level section-id
// granularity: supplying a structured section's id replaces that section's
// entire nested value. Version increments, completion and status are
// recomputed from scratch. Saves to the same document are serialized.
func (s *Store) Save(ctx context.Context, documentID string, partial map[string]any) (*Document, error) {
	lock := s.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	doc, ok := s.docs[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, documentID)
	}

	tpl, ok := s.catalog.Template(doc.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, doc.TemplateID)
	}

	patch, err := schema.DecodeData(tpl, partial)
	if err != nil {
		return nil, fmt.Errorf("save data: %w", err)
	}

	next := doc.clone()
	for id, v := range patch {
		next.Data[id] = v
	}
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	next.CompletionPercentage = engine.CompletionPercent(tpl, next.Data)
	next.Status = DeriveStatus(next.CompletionPercentage)

	s.mu.Lock()
	s.docs[documentID] = next
	s.mu.Unlock()

	s.persist(ctx, next, "save")

	s.bus.Publish(events.Event{
		Name:       events.DocumentSaved,
		DocumentID: next.ID,
		Fields: map[string]any{
			"version":               next.Version,
			"completion_percentage": next.CompletionPercentage,
			"status":                string(next.Status),
		},
	})
	return next, nil
}

// Validate runs the validator over the document and caches the result in its
// metadata as the last validation. It takes the same per-document lock as
// Save so its clone-and-swap cannot reinstate state a concurrent save already
// replaced.
func (s *Store) Validate(ctx context.Context, documentID string) (*engine.Result, error) {
	lock := s.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	doc, ok := s.docs[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, documentID)
	}

	tpl, ok := s.catalog.Template(doc.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, doc.TemplateID)
	}

	res := engine.ValidateDocument(tpl, doc.Data)

	next := doc.clone()
	next.Metadata.LastValidation = res
	s.mu.Lock()
	s.docs[documentID] = next
	s.mu.Unlock()

	s.persist(ctx, next, "validate")

	s.bus.Publish(events.Event{
		Name:       events.DocumentValidated,
		DocumentID: documentID,
		Fields: map[string]any{
			"is_valid":             res.IsValid,
			"sections_with_errors": res.SectionsWithErrors,
		},
	})
	return res, nil
}

// Export renders the document in the requested format.
func (s *Store) Export(ctx context.Context, documentID string, format export.Format) (*export.Result, error) {
	s.mu.RLock()
	doc, ok := s.docs[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, documentID)
	}

	tpl, ok := s.catalog.Template(doc.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, doc.TemplateID)
	}

	res, err := s.exporter.Export(tpl, export.Document{
		ID:        doc.ID,
		Data:      doc.Data,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, format)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{
		Name:       events.DocumentExported,
		DocumentID: documentID,
		Fields:     map[string]any{"format": string(format)},
	})
	return res, nil
}

// Delete removes a document. The engine never calls this itself; it exists
// for external collaborators that own document deletion.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	if _, ok := s.docs[documentID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDocumentNotFound, documentID)
	}
	delete(s.docs, documentID)
	for i, id := range s.order {
		if id == documentID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if err := s.persistIndex(ctx); err != nil {
		s.warnStorage(documentID, "delete", err)
	}
	if err := s.storage.Set(ctx, s.docKey(documentID), []byte("null")); err != nil {
		s.warnStorage(documentID, "delete", err)
	}
	return nil
}

// Get returns a document by id.
func (s *Store) Get(documentID string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[documentID]
	return doc, ok
}

// List returns all documents in creation order.
func (s *Store) List() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out
}

// ListByElement returns documents whose template belongs to one competency
// element.
func (s *Store) ListByElement(element string) []*Document {
	var out []*Document
	for _, doc := range s.List() {
		if tpl, ok := s.catalog.Template(doc.TemplateID); ok && tpl.Element == element {
			out = append(out, doc)
		}
	}
	return out
}

// ListByStatus returns documents currently in the given status.
func (s *Store) ListByStatus(status Status) []*Document {
	var out []*Document
	for _, doc := range s.List() {
		if doc.Status == status {
			out = append(out, doc)
		}
	}
	return out
}

// Template returns a template definition by id.
func (s *Store) Template(id string) (*schema.Template, bool) {
	return s.catalog.Template(id)
}

// Templates returns all template definitions.
func (s *Store) Templates() []*schema.Template {
	return s.catalog.Templates()
}

// TemplatesByElement returns the templates of one competency element.
func (s *Store) TemplatesByElement(element string) []*schema.Template {
	return s.catalog.ByElement(element)
}

// LoadAll hydrates the in-memory map from persisted records. Records that no
// longer match a known template are skipped with a warning rather than
// failing startup.
func (s *Store) LoadAll(ctx context.Context) error {
	raw, found, err := s.storage.Get(ctx, s.indexKey())
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if !found {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}

	for _, id := range ids {
		blob, found, err := s.storage.Get(ctx, s.docKey(id))
		if err != nil {
			return fmt.Errorf("load document %s: %w", id, err)
		}
		if !found || string(blob) == "null" {
			continue
		}

		var probe struct {
			TemplateID string `json:"template_id"`
		}
		if err := json.Unmarshal(blob, &probe); err != nil {
			s.log.Warn("skipping unreadable document record", "document_id", id, "error", err)
			continue
		}
		tpl, ok := s.catalog.Template(probe.TemplateID)
		if !ok {
			s.log.Warn("skipping document with unknown template", "document_id", id, "template_id", probe.TemplateID)
			continue
		}
		doc, err := decodeRecord(blob, tpl)
		if err != nil {
			s.log.Warn("skipping malformed document record", "document_id", id, "error", err)
			continue
		}

		s.mu.Lock()
		if _, dup := s.docs[doc.ID]; !dup {
			s.docs[doc.ID] = doc
			s.order = append(s.order, doc.ID)
		}
		s.mu.Unlock()
	}
	return nil
}

// persist writes the document record and refreshes the index. A storage
// failure does not fail the operation: the in-memory state stays correct, the
// failure is logged and surfaced as a storage event.
func (s *Store) persist(ctx context.Context, doc *Document, op string) {
	blob, err := json.Marshal(doc)
	if err != nil {
		s.warnStorage(doc.ID, op, err)
		return
	}
	if err := s.storage.Set(ctx, s.docKey(doc.ID), blob); err != nil {
		s.warnStorage(doc.ID, op, err)
		return
	}
	if err := s.persistIndex(ctx); err != nil {
		s.warnStorage(doc.ID, op, err)
	}
}

func (s *Store) persistIndex(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	blob, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, s.indexKey(), blob)
}

func (s *Store) warnStorage(documentID, op string, err error) {
	s.log.Warn("storage failure", "document_id", documentID, "operation", op, "error", err)
	s.bus.Publish(events.Event{
		Name:       events.StorageFailed,
		DocumentID: documentID,
		Fields:     map[string]any{"operation": op, "error": err.Error()},
	})
}

func (s *Store) docLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) docKey(id string) string { return s.prefix + "/" + id }
func (s *Store) indexKey() string        { return s.prefix + "/index" }

// newDocumentID derives a globally unique id from the template id, the
// creation timestamp, and a random suffix.
func newDocumentID(templateID string, now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%d-%s", templateID, now.UnixMilli(), suffix)
}
