package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookingflow/pkg/decorapi"
)

type codedErr struct{}

func (codedErr) Error() string        { return "CODE_REQUIRED: missing code" }
func (codedErr) ErrorCode() string    { return "CODE_REQUIRED" }
func (codedErr) ErrorMessage() string { return "missing code" }

type forbiddenErr struct{ codedErr }

func (forbiddenErr) ErrorCode() string { return "ROLE_FORBIDDEN" }
func (forbiddenErr) HTTPStatus() int   { return http.StatusForbidden }

func TestWriteClientError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", codedErr{}, http.StatusBadRequest, "CODE_REQUIRED", "missing code"},
		{"validation with status", forbiddenErr{}, http.StatusForbidden, "ROLE_FORBIDDEN", "missing code"},
		{"rejection", &decorapi.APIError{Status: 409, Message: "Quotation already confirmed"}, http.StatusConflict, "BACKEND_REJECTED", "Quotation already confirmed"},
		{"wrapped rejection", fmt.Errorf("load: %w", &decorapi.APIError{Status: 404, Message: "Booking not found"}), http.StatusNotFound, "BACKEND_REJECTED", "Booking not found"},
		{"transport", fmt.Errorf("%w: dial", decorapi.ErrTransport), http.StatusBadGateway, "BACKEND_UNAVAILABLE", "failed to load"},
		{"other", fmt.Errorf("decode failed"), http.StatusInternalServerError, "INTERNAL", "failed to load"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteClientError(rec, tc.err, "failed to load")
		if rec.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.status)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if env.Error.Code != tc.code || env.Error.Message != tc.message {
			t.Fatalf("%s: got %+v", tc.name, env.Error)
		}
	}
}

func TestListParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/bookings?PageIndex=2&pageSize=25&Status=3", nil)
	lp, ok := ListParams(r)
	if !ok {
		t.Fatalf("expected valid params")
	}
	if lp.PageIndex != 2 || lp.PageSize != 25 || lp.Filters["Status"] != "3" {
		t.Fatalf("got %+v", lp)
	}

	for _, q := range []string{"PageIndex=0", "PageSize=abc", "PageSize=1000"} {
		if _, ok := ListParams(httptest.NewRequest(http.MethodGet, "/v1/bookings?"+q, nil)); ok {
			t.Fatalf("%s should be rejected", q)
		}
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("generated id %q not echoed (%q)", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "req-1" {
		t.Fatalf("caller id not kept: %q", seen)
	}
}
