package status

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookingflow/internal/api"
)

type entry struct {
	Code int `json:"code"`
	Descriptor
}

func Table(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	codes := Codes(kind)
	out := make([]entry, 0, len(codes))
	for _, c := range codes {
		out = append(out, entry{Code: c, Descriptor: Resolve(kind, c)})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"kind": kind, "items": out})
}

// Lookup always answers 200 for a known kind; unregistered codes resolve to
// the Unknown descriptor.
func Lookup(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "status code must be an integer")
		return
	}
	api.WriteJSON(w, http.StatusOK, entry{Code: code, Descriptor: Resolve(kind, code)})
}
