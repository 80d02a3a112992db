package api

import (
	"log/slog"
	"net/http"

	"github.com/mathtrail/mathtrail-api/internal/api/shared"
	"github.com/mathtrail/mathtrail-api/internal/service/auth"
)

// AuthHandler handles the sign-up, sign-in, sign-out, and "who am I"
// endpoints.
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService *auth.Service, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Email and password required", err)
		return
	}

	account, err := h.authService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: NewUserResponse(account)})
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		// Missing fields fail sign-in the same way a wrong password does;
		// the response does not reveal which part was off.
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}

	account, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: NewUserResponse(account)})
}

// SignOut handles POST /api/auth/signout. It always succeeds.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context()); err != nil {
		h.logger.Error("failed to destroy session", slog.String("error", err.Error()))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, OKResponse{OK: true})
}

// Me handles GET /api/auth/me. An anonymous or stale session yields a
// null user, not an error.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.authService.Me(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: NewUserResponse(account)})
}
