package web

// errors.go maps import pipeline errors onto HTTP responses. The technical
// error is logged server-side with the request ID for correlation; the client
// only sees the user-facing message, action hint and stable code.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vendway/routeboard/internal/importer"
	"github.com/vendway/routeboard/internal/logging"
	"github.com/vendway/routeboard/internal/workbook"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code,omitempty"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	userMsg := importer.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, ErrorResponse{
		Error:  userMsg.Message,
		Action: userMsg.Action,
		Code:   userMsg.Code,
	})
}

// statusForError picks the HTTP status for an import pipeline error.
// Content problems in an otherwise valid request are 422; infrastructure
// failures are 500.
func statusForError(err error) int {
	var sheetErr *workbook.SheetFormatError
	var entryErr *importer.EntryError

	switch {
	case errors.Is(err, importer.ErrInvalidTimezone):
		return http.StatusBadRequest
	case errors.As(err, &sheetErr),
		errors.As(err, &entryErr),
		errors.Is(err, workbook.ErrNotAWorkbook),
		errors.Is(err, importer.ErrNothingToImport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a bare error message without going through MapError,
// for request-shape problems the pipeline never saw.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
