package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type jobResponse struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Text      string    `json:"text,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Words     int       `json:"words,omitempty"`
	Notes     int       `json:"notes,omitempty"`
	Phrases   int       `json:"phrases,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Words) == 0 || len(req.Header) == 0 {
		writeError(w, http.StatusBadRequest, "words and header payloads are required")
		return
	}
	if len(req.Pitch) == 0 {
		// Pitch is advisory: a missing contour yields neutral-pitch
		// notes plus warnings, same as the CLI.
		req.Pitch = json.RawMessage("[]")
	}

	job := s.jobs.Submit(req)
	s.logger.Info("job submitted", "id", job.ID)
	writeJSON(w, http.StatusAccepted, jobResponse{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no such job")
		return
	}

	resp := jobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
	}
	if job.Result != nil {
		resp.Text = job.Result.Text
		resp.Words = job.Result.WordCount
		resp.Notes = job.Result.NoteCount
		resp.Phrases = job.Result.PhraseCount
		for _, warn := range job.Result.Warnings {
			resp.Warnings = append(resp.Warnings, warn.String())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
