package web

import (
	"fmt"
	"net/http"

	"recordbook/internal/export"
	"recordbook/internal/logging"
)

// handleExportCSV streams the full record set as a CSV attachment with a
// timestamped filename. Nothing touches local disk.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ExportAll(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename("csv")))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err := export.WriteCSV(w, records); err != nil {
		// Headers are already sent; log and give up.
		logging.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}

// handleExportJSON streams the full record set as a JSON attachment.
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ExportAll(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename("json")))

	if err := export.WriteJSON(w, records); err != nil {
		logging.FromContext(r.Context()).Error("json export failed", "error", err)
	}
}
