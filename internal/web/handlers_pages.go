package web

import (
	"net/http"
	"strings"

	"recordbook/internal/core"
	"recordbook/internal/logging"
)

// mainPageData is the template context for the listing page.
type mainPageData struct {
	Records []core.Record
	Search  string
	Total   int64
}

// handleWelcome renders the initial welcome page.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, s.cfg.Pages.Welcome, nil)
}

// handleMainPage renders the listing page with an optional search filter.
func (s *Server) handleMainPage(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	skip := parseIntParam(r, "skip", core.DefaultSkip)
	limit := parseIntParam(r, "limit", core.DefaultLimit)

	records, err := s.service.Search(r.Context(), search, skip, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	total, err := s.service.Count(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.renderPage(w, r, s.cfg.Pages.Main, mainPageData{
		Records: records,
		Search:  search,
		Total:   total,
	})
}

// handleAddForm creates a record from form fields and redirects back to
// the listing page.
func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, &core.ValidationError{Field: "form", Reason: "malformed form body"})
		return
	}

	in := core.CreateInput{
		EID:     strings.TrimSpace(r.PostFormValue("eid")),
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Rights:  strings.TrimSpace(r.PostFormValue("rights")),
		Status:  strings.TrimSpace(r.PostFormValue("status")),
		Remarks: strings.TrimSpace(r.PostFormValue("remarks")),
	}

	if _, err := s.service.Create(r.Context(), in); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// handleUpdateForm applies the non-blank form fields as a partial update
// and redirects back to the listing page. Blank fields are left alone, so
// the page can submit the whole form without clobbering anything.
func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, r, core.ErrNotFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, &core.ValidationError{Field: "form", Reason: "malformed form body"})
		return
	}

	var in core.UpdateInput
	in.EID = formField(r, "eid")
	in.Name = formField(r, "name")
	in.Rights = formField(r, "rights")
	in.Status = formField(r, "status")
	in.Remarks = formField(r, "remarks")

	if _, err := s.service.Update(r.Context(), id, in); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// handleDeleteForm removes a record and redirects back to the listing
// page.
func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, r, core.ErrNotFound)
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// formField returns a pointer to the trimmed form value, or nil when the
// field was blank or absent.
func formField(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.PostFormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.FromContext(r.Context()).Error("template render failed", "template", name, "error", err)
	}
}
