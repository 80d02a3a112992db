package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mathtrail/mathtrail-api/internal/api/shared"
	"github.com/mathtrail/mathtrail-api/internal/service/auth"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAdminHandler creates a new AdminHandler with the given dependencies.
func NewAdminHandler(authService *auth.Service, log *slog.Logger) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{
		authService: authService,
		logger:      log.With(slog.String("component", "admin_handler")),
	}
}

// ListUsers handles GET /api/admin/users?page=&pageSize=&q=.
// Out-of-range paging values are clamped by the store, not rejected.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := store.ListParams{
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "pageSize"),
		Query:    r.URL.Query().Get("q"),
	}

	result, err := h.authService.ListAccounts(r.Context(), params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	users := make([]*UserResponse, 0, len(result.Accounts))
	for _, account := range result.Accounts {
		users = append(users, NewUserResponse(account))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListUsersResponse{
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
		Users:    users,
	})
}

// queryInt reads an integer query parameter, returning 0 when absent or
// malformed. Zero falls through to the store's defaults.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
