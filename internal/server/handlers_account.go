package server

import (
	"net/http"

	"github.com/bobmcallan/roastme/internal/models"
)

type dashboardResponse struct {
	Email          string                `json:"email"`
	Tokens         int                   `json:"tokens"`
	HarshnessLevel models.HarshnessLevel `json:"harshnessLevel"`
	Created        bool                  `json:"created"`
}

// handleDashboard handles GET /api/dashboard. The first visit after sign-up
// creates the local user record with the starting token grant.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc := requireIdentity(w, r)
	if uc == nil {
		return
	}

	user, created, err := s.app.AccountService.EnsureUser(r.Context(), uc.IdentityRef, uc.Email)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, dashboardResponse{
		Email:          user.Email,
		Tokens:         user.Tokens,
		HarshnessLevel: user.HarshnessLevel,
		Created:        created,
	})
}
