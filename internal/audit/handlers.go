package audit

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"bookingflow/internal/api"
)

type Lister interface {
	ListByCode(ctx context.Context, code string, limit int) ([]Entry, error)
}

type Handlers struct {
	Repo Lister
}

// List serves GET /v1/admin/audit?code=BKG123&limit=50.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "AUDIT_DISABLED", "audit log is not configured")
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing code")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "limit must be an integer")
			return
		}
		limit = n
	}

	items, err := h.Repo.ListByCode(r.Context(), code, limit)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load audit log")
		return
	}
	if items == nil {
		items = []Entry{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
