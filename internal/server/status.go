// status.go - Service health and collection statistics endpoints.
package server

import "net/http"

// statusResponse reports per-store liveness. Both probes are pure state
// reads, so this endpoint stays cheap and never blocks on a dead store.
type statusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// statsResponse reports collection counts for the reporting contract.
type statsResponse struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// handleStatus implements GET /status. It always answers 200: a dead
// backing store is reported in the body, not via the status code.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Redis: s.kv.IsAlive(),
		DB:    s.store.IsAlive(),
	})
}

// handleStats implements GET /stats with user and file collection counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	users, err := s.store.Count(r.Context(), usersCollection)
	if err != nil {
		s.log.Error("stats count failed", logFields(r, map[string]any{"collection": usersCollection}), err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}
	files, err := s.store.Count(r.Context(), filesCollection)
	if err != nil {
		s.log.Error("stats count failed", logFields(r, map[string]any{"collection": filesCollection}), err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Users: users, Files: files})
}
