package quotation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookingflow/internal/api"
	"bookingflow/internal/lifecycle"
	"bookingflow/internal/query"
	"bookingflow/internal/status"
	"bookingflow/pkg/decorapi"
)

type Handlers struct {
	Reader *query.Reader
}

type listItem struct {
	decorapi.Quotation
	StatusDisplay status.Descriptor `json:"statusDisplay"`
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	lp, ok := api.ListParams(r)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid paging parameters")
		return
	}

	page, err := h.Reader.Quotations(r.Context(), sess, api.RequestIDFromContext(r.Context()), lp)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}
	items := make([]listItem, 0, len(page.Items))
	for _, q := range page.Items {
		items = append(items, listItem{Quotation: q, StatusDisplay: status.Resolve(status.KindQuotation, q.Status)})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "totalCount": page.TotalCount})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing quotation code")
		return
	}

	q, err := h.Reader.Quotation(r.Context(), sess, api.RequestIDFromContext(r.Context()), code)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}
	actions := lifecycle.QuotationActions(sess.Role, q.Status, q.IsContractExisted)
	if actions == nil {
		actions = []lifecycle.Transition{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"quotation":     q,
		"statusDisplay": status.Resolve(status.KindQuotation, q.Status),
		"actions":       actions,
	})
}

// Contract returns the contract drafted from the quotation.
func (h Handlers) Contract(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing quotation code")
		return
	}

	ct, err := h.Reader.ContractForQuotation(r.Context(), sess, api.RequestIDFromContext(r.Context()), code)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}
	actions := lifecycle.ContractActions(sess.Role, ct.Status)
	if actions == nil {
		actions = []lifecycle.Transition{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"contract":      ct,
		"statusDisplay": status.Resolve(status.KindContract, ct.Status),
		"actions":       actions,
	})
}
