package mutation

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookingflow/internal/api"
	"bookingflow/internal/lifecycle"
	"bookingflow/pkg/decorapi"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Dispatcher *Dispatcher
}

// Submit forwards POST /v1/mutations/{kind}/{code} to the backend.
func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	t, err := lifecycle.ParseTransition(chi.URLParam(r, "kind"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "TRANSITION_UNKNOWN", err.Error())
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, t, chi.URLParam(r, "code"), body)
}

// Create handles POST /v1/bookings; the backend assigns the booking code.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req decorapi.CreateBookingRequest
	if json.Unmarshal(body, &req) == nil && (req.DecorServiceID <= 0 || req.AddressID <= 0) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "decorServiceId and addressId are required")
		return
	}
	h.dispatch(w, r, lifecycle.CreateBooking, "", body)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "could not read body")
		return nil, false
	}
	if len(body) > maxBodyBytes {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION_FAILED", "body too large")
		return nil, false
	}
	return body, true
}

func (h Handlers) dispatch(w http.ResponseWriter, r *http.Request, t lifecycle.Transition, code string, body []byte) {
	sess := api.SessionFromContext(r.Context())
	if sess == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	resp, err := h.Dispatcher.Dispatch(r.Context(), sess, Request{
		Transition: t,
		Code:       code,
		Body:       json.RawMessage(body),
		RequestID:  api.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		api.WriteClientError(w, err, "failed to submit")
		return
	}

	status := http.StatusOK
	if t == lifecycle.CreateBooking {
		status = http.StatusCreated
	}
	if len(resp) == 0 {
		resp = json.RawMessage(`{}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(resp)
}
