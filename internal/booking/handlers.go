package booking

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bookingflow/internal/api"
	"bookingflow/internal/lifecycle"
	"bookingflow/internal/payment"
	"bookingflow/internal/query"
	"bookingflow/internal/status"
	"bookingflow/pkg/decorapi"
)

type Handlers struct {
	Reader         *query.Reader
	DepositPercent decimal.Decimal
	CurrencyScale  payment.CurrencyScale
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

	page, err := h.Reader.Bookings(r.Context(), sess, api.RequestIDFromContext(r.Context()), lp)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}

	items := make([]listItem, 0, len(page.Items))
	for _, b := range page.Items {
		items = append(items, listItem{Booking: b, StatusDisplay: status.Resolve(status.KindBooking, b.Status)})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "totalCount": page.TotalCount})
}

type listItem struct {
	decorapi.Booking
	StatusDisplay status.Descriptor `json:"statusDisplay"`
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing booking code")
		return
	}

	b, err := h.Reader.Booking(r.Context(), sess, api.RequestIDFromContext(r.Context()), code)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":       b,
		"statusDisplay": status.Resolve(status.KindBooking, b.Status),
	})
}

// PresentationView is everything the booking card needs to render: the flags,
// the resolved message and action, and the transitions the caller may trigger.
type PresentationView struct {
	BookingCode   string                 `json:"bookingCode"`
	StatusDisplay status.Descriptor      `json:"statusDisplay"`
	Flags         lifecycle.Flags        `json:"flags"`
	Presentation  lifecycle.Presentation `json:"presentation"`
	ActionPath    string                 `json:"actionPath,omitempty"`
	AmountDue     *decimal.Decimal       `json:"amountDue,omitempty"`
	Actions       []lifecycle.Transition `json:"actions"`
}

func (h Handlers) Presentation(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing booking code")
		return
	}
	reqID := api.RequestIDFromContext(r.Context())

	b, err := h.Reader.Booking(r.Context(), sess, reqID, code)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}

	// A missing tracking feed only hides the tracking action.
	hasTracking := false
	if entries, err := h.Reader.Tracking(r.Context(), sess, reqID, code); err != nil {
		log.Printf("[booking/handlers] tracking for %s unavailable: %v", code, err)
	} else {
		hasTracking = len(entries) > 0
	}

	view := h.present(b, hasTracking)
	view.Actions = lifecycle.BookingActions(sess.Role, view.Flags)
	if view.Actions == nil {
		view.Actions = []lifecycle.Transition{}
	}
	api.WriteJSON(w, http.StatusOK, view)
}

func (h Handlers) present(b *decorapi.Booking, hasTracking bool) PresentationView {
	flags := lifecycle.DeriveBookingFlags(lifecycle.Input{
		Status:              b.Status,
		IsCommitDepositPaid: b.IsCommitDepositPaid,
		IsQuoteExisted:      b.IsQuoteExisted,
		IsContractExisted:   b.IsContractExisted,
		HasTerminated:       b.HasTerminated,
		IsReviewed:          b.IsReviewed,
		HasTrackingEntries:  hasTracking,
	})
	p := lifecycle.ResolveBookingPresentation(flags)
	view := PresentationView{
		BookingCode:   b.BookingCode,
		StatusDisplay: status.Resolve(status.KindBooking, b.Status),
		Flags:         flags,
		Presentation:  p,
		ActionPath:    p.PrimaryAction.Path(b.BookingCode),
	}
	if p.PrimaryAction == lifecycle.ActionCompletePayment {
		split, err := payment.SplitTotal(b.TotalPrice, h.DepositPercent, h.CurrencyScale)
		if err != nil {
			log.Printf("[booking/handlers] amount due for %s: %v", b.BookingCode, err)
		} else {
			view.AmountDue = &split.Final
		}
	}
	return view
}

func (h Handlers) Tracking(w http.ResponseWriter, r *http.Request) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing booking code")
		return
	}

	entries, err := h.Reader.Tracking(r.Context(), sess, api.RequestIDFromContext(r.Context()), code)
	if err != nil {
		api.WriteClientError(w, err, "failed to load")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}
