package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/intake/internal/core"
)

// maxJSONBody caps request bodies for the JSON endpoints.
const maxJSONBody = 1 << 20

// healthResponse is served by /healthz.
type healthResponse struct {
	Status  string                   `json:"status"`
	Uploads core.UploadLimiterStatus `json:"uploads"`
	Schemas int                      `json:"schemas"`
}

// handleHealth reports liveness plus upload slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Uploads: s.service.LimiterStatus(),
		Schemas: len(s.service.Schemas()),
	})
}

// handleListSchemas returns every registered data type with its fields.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"schemas": s.service.Schemas()})
}

// handleTemplate serves the header-only CSV for a data type.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	dataType := chi.URLParam(r, "dataType")

	body, err := s.service.Template(dataType)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, core.ErrUnknownDataType) {
			status = http.StatusNotFound
		}
		respondError(w, r, err, status)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, dataType))
	_, _ = io.WriteString(w, body)
}

// handleValidate checks a header row and suggests a mapping.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req core.ValidateRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp, err := s.service.Validate(req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// decodeJSON reads one JSON value from the body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: body over %d bytes", core.ErrFileTooLarge, tooBig.Limit)
		}
		return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	}
	return nil
}
