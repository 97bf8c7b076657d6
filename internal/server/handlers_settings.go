package server

import (
	"net/http"

	"github.com/bobmcallan/roastme/internal/models"
)

type settingsRequest struct {
	HarshnessLevel string `json:"harshnessLevel"`
}

type settingsResponse struct {
	HarshnessLevel models.HarshnessLevel `json:"harshnessLevel"`
}

type settingsSavedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// routeSettings dispatches /api/settings by method.
func (s *Server) routeSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleSettingsGet(w, r)
	case http.MethodPost:
		s.handleSettingsSave(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	uc := requireIdentity(w, r)
	if uc == nil {
		return
	}

	level, err := s.app.SettingsService.GetHarshness(r.Context(), uc.IdentityRef)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, settingsResponse{HarshnessLevel: level})
}

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	uc := requireIdentity(w, r)
	if uc == nil {
		return
	}

	var req settingsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.SettingsService.SaveHarshness(r.Context(), uc.IdentityRef, req.HarshnessLevel); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, settingsSavedResponse{
		Success: true,
		Message: "Settings saved successfully.",
	})
}
