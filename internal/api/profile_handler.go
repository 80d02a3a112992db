package api

import (
	"log/slog"
	"net/http"

	"github.com/mathtrail/mathtrail-api/internal/api/shared"
	"github.com/mathtrail/mathtrail-api/internal/domain"
	"github.com/mathtrail/mathtrail-api/internal/service/auth"
)

// ProfileHandler handles the settings-page profile update endpoint.
type ProfileHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler with the given
// dependencies.
func NewProfileHandler(authService *auth.Service, log *slog.Logger) *ProfileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileHandler{
		authService: authService,
		logger:      log.With(slog.String("component", "profile_handler")),
	}
}

// Update handles PUT /api/account/profile. Only the session's own account
// is reachable; identity and credential fields stay untouched.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Display name cannot be empty", err)
		return
	}

	account, err := h.authService.UpdateProfile(r.Context(), domain.Profile{
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		Avatar:      req.Avatar,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: NewUserResponse(account)})
}
