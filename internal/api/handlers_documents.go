package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madfam-io/ec0249-engine/internal/export"
	"github.com/madfam-io/ec0249-engine/internal/store"
)

type createDocumentRequest struct {
	TemplateID  string         `json:"template_id"`
	InitialData map[string]any `json:"initial_data"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" {
		jsonError(w, "template_id is required", http.StatusBadRequest)
		return
	}

	doc, err := s.store.Create(r.Context(), req.TemplateID, req.InitialData)
	if err != nil {
		if errors.Is(err, store.ErrTemplateNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		// Malformed initial data is the caller's fault.
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	element := r.URL.Query().Get("element")
	status := store.Status(r.URL.Query().Get("status"))

	if status != "" && !store.ValidStatus(status) {
		jsonError(w, "unknown status: "+string(status), http.StatusBadRequest)
		return
	}

	docs := s.store.List()
	if element != "" {
		docs = s.store.ListByElement(element)
	}
	if status != "" {
		filtered := docs[:0:0]
		for _, doc := range docs {
			if doc.Status == status {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.store.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type saveDocumentRequest struct {
	Data map[string]any `json:"data"`
}

func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req saveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.store.Save(r.Context(), chi.URLParam(r, "docID"), req.Data)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) || errors.Is(err, store.ErrTemplateNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "docID")); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleValidateDocument(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Validate(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(export.FormatHTML)
	}

	res, err := s.store.Export(r.Context(), chi.URLParam(r, "docID"), export.Format(format))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
