package api

import (
	"net/http"
	"time"
)

// inputStatus is the JSON shape of one watched input line.
// Available is false when the line cannot be read, for example when the
// panel is running without hardware.
type inputStatus struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       bool   `json:"value"`
	Available   bool   `json:"available"`
}

// handleStatus reports panel identity, server time, uptime and the
// current state of every watched input line.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	loc, err := time.LoadLocation(s.panelCfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	defs := s.resolver.Registry().Inputs()
	inputs := make([]inputStatus, 0, len(defs))
	for _, def := range defs {
		status := inputStatus{Name: def.Name, Description: def.Description}
		if s.hw != nil {
			if value, err := s.hw.ReadLine(def.Line); err == nil {
				status.Value = value
				status.Available = true
			}
		}
		inputs = append(inputs, status)
	}

	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"panel":       s.panelCfg.Name,
		"version":     s.version,
		"server_time": now.Format(time.RFC3339),
		"timezone":    s.panelCfg.Timezone,
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"inputs":      inputs,
		"ws_clients":  clients,
	})
}
