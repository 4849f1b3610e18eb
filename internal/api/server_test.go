package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/madfam-io/ec0249-engine/internal/config"
	"github.com/madfam-io/ec0249-engine/internal/events"
	"github.com/madfam-io/ec0249-engine/internal/schema"
	"github.com/madfam-io/ec0249-engine/internal/storage"
	"github.com/madfam-io/ec0249-engine/internal/store"
)

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	informe := &schema.Template{
		ID:      "informe",
		Title:   "Informe de afectaciones",
		Element: "E0875",
		Sections: []schema.Section{
			{ID: "resumen", Title: "Resumen", Required: true, Spec: schema.TextSpec{Multiline: true, MinLength: 10}},
			{ID: "hallazgos", Title: "Hallazgos", Required: true, Spec: schema.ListSpec{}},
		},
	}
	plan := &schema.Template{
		ID:      "plan",
		Title:   "Plan de trabajo",
		Element: "E0876",
		Sections: []schema.Section{
			{ID: "alcance", Title: "Alcance", Required: true, Spec: schema.TextSpec{Multiline: true}},
		},
	}
	cat, err := schema.NewCatalog([]*schema.Template{informe, plan})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(cat, storage.NewMemory(), events.NewBus(log), log, "test/documents")
	cfg := config.Config{APIKey: apiKey, MaxBodyBytes: 1 << 20}
	return NewServer(st, log, cfg)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(blob)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t, "")
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestListTemplates(t *testing.T) {
	srv := testServer(t, "")

	rec := doJSON(t, srv, http.MethodGet, "/api/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Templates []struct {
			ID      string `json:"id"`
			Element string `json:"element"`
		} `json:"templates"`
	}
	decode(t, rec, &out)
	if len(out.Templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(out.Templates))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/templates?element=E0876", nil)
	decode(t, rec, &out)
	if len(out.Templates) != 1 || out.Templates[0].ID != "plan" {
		t.Errorf("unexpected element filter result: %+v", out.Templates)
	}
}

func TestGetTemplate(t *testing.T) {
	srv := testServer(t, "")

	rec := doJSON(t, srv, http.MethodGet, "/api/templates/informe", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tpl struct {
		Title    string `json:"title"`
		Sections []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"sections"`
	}
	decode(t, rec, &tpl)
	if tpl.Title != "Informe de afectaciones" || len(tpl.Sections) != 2 {
		t.Errorf("unexpected template payload: %+v", tpl)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/templates/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

type documentPayload struct {
	ID                   string         `json:"id"`
	TemplateID           string         `json:"template_id"`
	Status               string         `json:"status"`
	Version              int            `json:"version"`
	CompletionPercentage int            `json:"completion_percentage"`
	Data                 map[string]any `json:"data"`
}

func TestDocumentLifecycle(t *testing.T) {
	srv := testServer(t, "")

	// Create.
	rec := doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{
		"template_id": "informe",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc documentPayload
	decode(t, rec, &doc)
	if doc.Status != "draft" || doc.Version != 1 {
		t.Fatalf("unexpected created document: %+v", doc)
	}

	// Save partial data.
	rec = doJSON(t, srv, http.MethodPut, "/api/documents/"+doc.ID, map[string]any{
		"data": map[string]any{"resumen": "this is long enough"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &doc)
	if doc.Version != 2 || doc.Status != "in_progress" || doc.CompletionPercentage != 50 {
		t.Fatalf("unexpected saved document: %+v", doc)
	}

	// Validate.
	rec = doJSON(t, srv, http.MethodPost, "/api/documents/"+doc.ID+"/validate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d", rec.Code)
	}
	var res struct {
		IsValid bool  `json:"is_valid"`
		Errors  []any `json:"errors"`
	}
	decode(t, rec, &res)
	if res.IsValid {
		t.Error("expected invalid document while hallazgos is empty")
	}

	// Export.
	rec = doJSON(t, srv, http.MethodGet, "/api/documents/"+doc.ID+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", rec.Code)
	}
	var exp struct {
		Filename string `json:"filename"`
		MimeType string `json:"mime_type"`
		Content  string `json:"content"`
	}
	decode(t, rec, &exp)
	if !strings.HasSuffix(exp.Filename, ".html") || !strings.Contains(exp.Content, "Informe de afectaciones") {
		t.Errorf("unexpected export payload: filename=%q", exp.Filename)
	}

	// Get.
	rec = doJSON(t, srv, http.MethodGet, "/api/documents/"+doc.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	// Delete.
	rec = doJSON(t, srv, http.MethodDelete, "/api/documents/"+doc.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/documents/"+doc.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateDocument_Errors(t *testing.T) {
	srv := testServer(t, "")

	rec := doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing template_id: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{
		"template_id": "nope",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{
		"template_id":  "informe",
		"initial_data": map[string]any{"bogus": "x"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown section: expected 400, got %d", rec.Code)
	}
}

func TestSaveDocument_Errors(t *testing.T) {
	srv := testServer(t, "")

	rec := doJSON(t, srv, http.MethodPut, "/api/documents/missing", map[string]any{
		"data": map[string]any{},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown document: expected 404, got %d", rec.Code)
	}

	created := doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{"template_id": "informe"})
	var doc documentPayload
	decode(t, created, &doc)

	rec = doJSON(t, srv, http.MethodPut, "/api/documents/"+doc.ID, map[string]any{
		"data": map[string]any{"bogus": "x"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown section: expected 400, got %d", rec.Code)
	}
}

func TestListDocuments_Filters(t *testing.T) {
	srv := testServer(t, "")

	doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{"template_id": "informe"})
	doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{"template_id": "plan"})

	var out struct {
		Documents []documentPayload `json:"documents"`
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/documents", nil)
	decode(t, rec, &out)
	if len(out.Documents) != 2 {
		t.Errorf("expected 2 documents, got %d", len(out.Documents))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/documents?element=E0876", nil)
	decode(t, rec, &out)
	if len(out.Documents) != 1 || out.Documents[0].TemplateID != "plan" {
		t.Errorf("unexpected element filter: %+v", out.Documents)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/documents?status=draft", nil)
	decode(t, rec, &out)
	if len(out.Documents) != 2 {
		t.Errorf("expected 2 drafts, got %d", len(out.Documents))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/documents?status=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d", rec.Code)
	}
}

func TestExportDocument_UnsupportedFormat(t *testing.T) {
	srv := testServer(t, "")
	created := doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{"template_id": "informe"})
	var doc documentPayload
	decode(t, created, &doc)

	rec := doJSON(t, srv, http.MethodGet, "/api/documents/"+doc.ID+"/export?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	srv := testServer(t, "topsecret")

	// Health stays public.
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/templates", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no auth: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad key: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("good key: expected 200, got %d", rec.Code)
	}
}

func TestRequestBodyLimit(t *testing.T) {
	srv := testServer(t, "")

	huge := fmt.Sprintf(`{"template_id":"informe","initial_data":{"resumen":%q}}`,
		strings.Repeat("x", 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(huge))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized body: expected 400, got %d", rec.Code)
	}
}
