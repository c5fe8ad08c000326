package api

import "net/http"

// handleListMessages returns the operational message log, newest first.
// The store caps the log at fifty entries, so no pagination is needed.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.messages.All(r.Context())
	if err != nil {
		s.logger.Error("message log read failed", "error", err)
		writeInternalError(w, "message log unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}
