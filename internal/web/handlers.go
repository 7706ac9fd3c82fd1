package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vendway/routeboard/internal/database"
	"github.com/vendway/routeboard/internal/importer"
)

// handleImportWorkbook accepts one workbook upload and imports it as a run.
//
// The multipart form carries the workbook under "file" and an optional
// "timezone" field overriding the configured scheduling timezone. The file is
// streamed to the parser; it is never buffered in full beyond the multipart
// memory threshold.
func (s *Server) handleImportWorkbook(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	summary, err := s.service.ImportWorkbook(r.Context(), importer.ImportRequest{
		CompanyID: companyID,
		FileName:  header.Filename,
		Timezone:  r.FormValue("timezone"),
		Data:      file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if summary.Runs == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, summary)
}

// handleGetRun returns a previously imported run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleHealthz reports process and database health.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
