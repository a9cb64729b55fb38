package wallet

import (
	"net/http"

	"bookingflow/internal/api"
	"bookingflow/internal/payment"
	"bookingflow/internal/query"
)

type Handlers struct {
	Reader *query.Reader
}

// Transactions lists the caller's wallet ledger. The balance covers the
// returned page only.
func (h Handlers) Transactions(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.Reader.Transactions(r.Context(), sess, api.RequestIDFromContext(r.Context()), lp)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": page,
		"pageBalance":  payment.Balance(page.Items),
	})
}
