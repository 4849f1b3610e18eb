package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListTemplates lists template definitions, optionally filtered by
// competency element.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	element := r.URL.Query().Get("element")

	tpls := s.store.Templates()
	if element != "" {
		tpls = s.store.TemplatesByElement(element)
	}

	writeJSON(w, http.StatusOK, map[string]any{"templates": tpls})
}

// handleGetTemplate returns one template definition.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.store.Template(chi.URLParam(r, "templateID"))
	if !ok {
		jsonError(w, "template not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}
