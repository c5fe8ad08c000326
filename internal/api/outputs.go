package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/outpost/internal/control"
)

// outputResponse is the JSON shape of one output in API responses.
type outputResponse struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value"`
}

// setOutputRequest is the JSON body for PUT /outputs/{name}. The value
// is untyped; the resolver coerces it against the output's kind.
type setOutputRequest struct {
	Value any `json:"value"`
}

// powerUpResponse is the JSON shape of an output's power-up policy.
type powerUpResponse struct {
	Name       string `json:"name"`
	Value      any    `json:"value"`
	PowerUp    any    `json:"powerup_value"`
	UsePowerUp bool   `json:"use_powerup"`
}

// setPowerUpRequest is the JSON body for PUT /outputs/{name}/powerup.
type setPowerUpRequest struct {
	Value      any  `json:"value"`
	UsePowerUp bool `json:"use_powerup"`
}

// handleListOutputs returns every configured output with its current value.
func (s *Server) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	defs := s.resolver.Registry().Outputs()
	outputs := make([]outputResponse, 0, len(defs))

	for _, def := range defs {
		value, err := s.resolver.Read(r.Context(), def.Name)
		if err != nil {
			s.logger.Error("output read failed", "output", def.Name, "error", err)
			writeInternalError(w, "output store unavailable")
			return
		}
		outputs = append(outputs, outputResponse{
			Name:        def.Name,
			Kind:        string(def.Kind),
			Description: def.Description,
			Value:       value.Interface(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"outputs": outputs,
		"count":   len(outputs),
	})
}

// handleGetOutput returns a single output's current value.
func (s *Server) handleGetOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	def, ok := s.resolver.Registry().Lookup(name)
	if !ok {
		writeNotFound(w, "unknown output")
		return
	}

	value, err := s.resolver.Read(r.Context(), name)
	if err != nil {
		s.logger.Error("output read failed", "output", name, "error", err)
		writeInternalError(w, "output store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, outputResponse{
		Name:        def.Name,
		Kind:        string(def.Kind),
		Description: def.Description,
		Value:       value.Interface(),
	})
}

// handleSetOutput writes a new value to an output.
//
// The raw JSON value is handed to the resolver untyped: boolean outputs
// coerce leniently, integer and text outputs reject values that are not
// representable.
func (s *Server) handleSetOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req setOutputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	value, err := s.resolver.Write(r.Context(), name, req.Value)
	switch {
	case errors.Is(err, control.ErrUnknownOutput):
		writeNotFound(w, "unknown output")
		return
	case errors.Is(err, control.ErrInvalidValue):
		writeValidationError(w, err.Error())
		return
	case err != nil:
		s.logger.Error("output write failed", "output", name, "error", err)
		writeInternalError(w, "output store unavailable")
		return
	}

	def, _ := s.resolver.Registry().Lookup(name)
	writeJSON(w, http.StatusOK, outputResponse{
		Name:        def.Name,
		Kind:        string(def.Kind),
		Description: def.Description,
		Value:       value.Interface(),
	})
}

// handleGetPowerUp returns an output's power-up policy.
func (s *Server) handleGetPowerUp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	row, err := s.resolver.PowerUpConfig(r.Context(), name)
	switch {
	case errors.Is(err, control.ErrUnknownOutput):
		writeNotFound(w, "unknown output")
		return
	case err != nil:
		s.logger.Error("power-up read failed", "output", name, "error", err)
		writeInternalError(w, "output store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, powerUpResponse{
		Name:       row.Name,
		Value:      row.Current.Interface(),
		PowerUp:    row.PowerUp.Interface(),
		UsePowerUp: row.UsePowerUp,
	})
}

// handleSetPowerUp updates an output's power-up default and policy flag.
func (s *Server) handleSetPowerUp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req setPowerUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	err := s.resolver.SetPowerUp(r.Context(), name, req.Value, req.UsePowerUp)
	switch {
	case errors.Is(err, control.ErrUnknownOutput):
		writeNotFound(w, "unknown output")
		return
	case errors.Is(err, control.ErrInvalidValue):
		writeValidationError(w, err.Error())
		return
	case err != nil:
		s.logger.Error("power-up write failed", "output", name, "error", err)
		writeInternalError(w, "output store unavailable")
		return
	}

	row, err := s.resolver.PowerUpConfig(r.Context(), name)
	if err != nil {
		s.logger.Error("power-up read failed", "output", name, "error", err)
		writeInternalError(w, "output store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, powerUpResponse{
		Name:       row.Name,
		Value:      row.Current.Interface(),
		PowerUp:    row.PowerUp.Interface(),
		UsePowerUp: row.UsePowerUp,
	})
}
