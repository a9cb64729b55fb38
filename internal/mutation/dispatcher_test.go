package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingflow/internal/audit"
	"bookingflow/internal/lifecycle"
	"bookingflow/internal/querycache"
	"bookingflow/pkg/decorapi"
	"bookingflow/pkg/session"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memRecorder) Record(_ context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// fixture answers GETs from reads (404 when absent) and every other request
// with the fixed status and body. Only the latter count as calls.
type fixture struct {
	srv      *httptest.Server
	cache    *querycache.Memory
	recorder *memRecorder
	d        *Dispatcher
	reads    map[string]string
	calls    int32
	lastPath string
	lastAuth string
}

func newFixture(t *testing.T, status int, body string) *fixture {
	t.Helper()
	f := &fixture{cache: querycache.NewMemory(), recorder: &memRecorder{}, reads: map[string]string{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reply, ok := f.reads[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"not found"}`))
				return
			}
			w.Write([]byte(reply))
			return
		}
		atomic.AddInt32(&f.calls, 1)
		f.lastPath = r.Method + " " + r.URL.Path
		f.lastAuth = r.Header.Get("Authorization")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	f.d = &Dispatcher{
		Client: decorapi.New(f.srv.URL, 5*time.Second),
		Cache:  f.cache,
		Audit:  f.recorder,
	}
	return f
}

func (f *fixture) seed(t *testing.T, keys ...querycache.Key) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, f.cache.Set(context.Background(), k, []byte(`{}`), 0))
	}
}

func (f *fixture) has(k querycache.Key) bool {
	_, ok, _ := f.cache.Get(context.Background(), k)
	return ok
}

var (
	customer = &session.Session{AccountID: 9, Role: session.RoleCustomer, Token: "cust-token"}
	provider = &session.Session{AccountID: 5, Role: session.RoleProvider, Token: "prov-token"}
)

// linkBooking makes quotation Q1 belong to BKG123 and contract CT1 to Q1.
func (f *fixture) linkBooking() {
	f.reads["/api/Quotation/Q1"] = `{"quotationCode":"Q1","bookingCode":"BKG123","status":1}`
	f.reads["/api/Contract/CT1"] = `{"contractCode":"CT1","quotationCode":"Q1","status":1}`
}

func TestCancelBooking_InvalidatesProviderListNotCustomerQuotations(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{"message":"cancelled"}`)
	providerList := querycache.ProviderBookings.Scoped(5)
	customerQuotes := querycache.CustomerQuotations.Scoped(9)
	otherBooking := querycache.Booking("BKG999")
	f.seed(t, providerList, customerQuotes, querycache.Booking("BKG123"), otherBooking)

	resp, err := f.d.Dispatch(context.Background(), customer, Request{
		Transition: lifecycle.CancelBooking,
		Code:       "BKG123",
		RequestID:  "req-7",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"cancelled"}`, string(resp))
	assert.Equal(t, "PUT /api/Booking/cancel/BKG123", f.lastPath)
	assert.Equal(t, "Bearer cust-token", f.lastAuth)

	assert.False(t, f.has(providerList))
	assert.False(t, f.has(querycache.Booking("BKG123")))
	assert.True(t, f.has(customerQuotes))
	assert.True(t, f.has(otherBooking))

	require.Len(t, f.recorder.entries, 1)
	e := f.recorder.entries[0]
	assert.Equal(t, audit.OutcomeSucceeded, e.Outcome)
	assert.Equal(t, "BKG123", e.EntityCode)
	assert.Equal(t, int64(9), e.AccountID)
	assert.Equal(t, "req-7", e.RequestID)
}

func TestDispatch_MissingCodeNeverReachesBackend(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	for _, tr := range lifecycle.Transitions() {
		if tr == lifecycle.CreateBooking {
			continue
		}
		sess := customer
		if !lifecycle.Permits(tr, session.RoleCustomer) {
			sess = provider
		}
		_, err := f.d.Dispatch(context.Background(), sess, Request{Transition: tr, Code: "  ", Body: json.RawMessage(`{"x":1}`)})
		var ve ValidationError
		require.ErrorAs(t, err, &ve, "transition %s", tr)
		assert.Equal(t, "CODE_REQUIRED", ve.Code)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.calls))
	assert.Empty(t, f.recorder.entries)
}

func TestDispatch_BodyRequired(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	_, err := f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.TerminateContract, Code: "CT1"})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "BODY_REQUIRED", ve.Code)

	_, err = f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.CreateBooking, Body: json.RawMessage(`null`)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "BODY_REQUIRED", ve.Code)

	_, err = f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.CancelBooking, Code: "B", Body: json.RawMessage(`{bad`)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "VALIDATION_FAILED", ve.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.calls))
}

func TestDispatch_UnknownTransition(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	_, err := f.d.Dispatch(context.Background(), customer, Request{Transition: "dropBooking", Code: "B"})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "TRANSITION_UNKNOWN", ve.Code)
}

func TestDispatch_RejectionInvalidatesNothingAndIsNotRetried(t *testing.T) {
	f := newFixture(t, http.StatusConflict, `{"message":"Cannot deposit before quote exists"}`)
	f.seed(t, querycache.ProviderBookings, querycache.Booking("BKG1"), querycache.Wallet.Scoped(9))

	_, err := f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.DepositBooking, Code: "BKG1"})
	var apiErr *decorapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Cannot deposit before quote exists", apiErr.Message)

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
	assert.True(t, f.has(querycache.ProviderBookings))
	assert.True(t, f.has(querycache.Booking("BKG1")))
	assert.True(t, f.has(querycache.Wallet.Scoped(9)))

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, audit.OutcomeRejected, f.recorder.entries[0].Outcome)
	assert.Equal(t, "Cannot deposit before quote exists", f.recorder.entries[0].Error)
}

func TestDispatch_TransportFailure(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	f.srv.Close()
	f.seed(t, querycache.CustomerBookings)

	_, err := f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.PayBooking, Code: "BKG1"})
	assert.True(t, errors.Is(err, decorapi.ErrTransport))
	assert.True(t, f.has(querycache.CustomerBookings))
	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, audit.OutcomeFailed, f.recorder.entries[0].Outcome)
}

func TestDispatch_PaymentDropsWallet(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	f.seed(t, querycache.Wallet.Scoped(9), querycache.CustomerQuotations)

	_, err := f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.PayCommitDeposit, Code: "BKG1"})
	require.NoError(t, err)
	assert.Equal(t, "POST /api/Booking/payCommitDeposit/BKG1", f.lastPath)
	assert.False(t, f.has(querycache.Wallet.Scoped(9)))
	assert.True(t, f.has(querycache.CustomerQuotations))
}

func TestInvalidationTable_CoversEveryTransition(t *testing.T) {
	for _, tr := range lifecycle.Transitions() {
		_, ok := table[tr]
		assert.True(t, ok, "missing table entry for %s", tr)
	}
	assert.Len(t, table, len(lifecycle.Transitions()))
}

func TestInvalidates_KeysPerTransition(t *testing.T) {
	bookingLists := []querycache.Key{querycache.ProviderBookings, querycache.CustomerBookings}
	quotationLists := []querycache.Key{querycache.ProviderQuotations, querycache.CustomerQuotations}
	booking := func(extra ...querycache.Key) []querycache.Key {
		return append(append([]querycache.Key{}, bookingLists...), append([]querycache.Key{querycache.Booking("X")}, extra...)...)
	}
	quotation := func(extra ...querycache.Key) []querycache.Key {
		return append([]querycache.Key{querycache.Quotation("X"), querycache.ProviderQuotations, querycache.CustomerQuotations}, extra...)
	}
	linked := querycache.Booking("BKG-L")

	tests := []struct {
		transition lifecycle.Transition
		want       []querycache.Key
	}{
		{lifecycle.CreateBooking, bookingLists},
		{lifecycle.CancelBooking, booking()},
		{lifecycle.ApproveBooking, booking()},
		{lifecycle.RejectBooking, booking()},
		{lifecycle.RequestCancelBooking, booking()},
		{lifecycle.ApproveCancelRequest, booking()},
		{lifecycle.RevokeCancelRequest, booking()},
		{lifecycle.DepositBooking, booking(querycache.Wallet)},
		{lifecycle.PayBooking, booking(querycache.Wallet)},
		{lifecycle.PayCommitDeposit, booking(querycache.Wallet)},
		{lifecycle.CreateQuotation, booking(quotationLists...)},
		{lifecycle.ConfirmQuotation, quotation(querycache.ProviderBookings, querycache.CustomerBookings, linked)},
		{lifecycle.RequestChangeQuotation, quotation()},
		{lifecycle.ApproveChangeQuotation, quotation()},
		{lifecycle.RequestCancelQuotation, quotation()},
		{lifecycle.ApproveCancelQuotation, quotation(querycache.ProviderBookings, querycache.CustomerBookings, linked)},
		{lifecycle.CreateContract, quotation(querycache.ContractByQuotation("X"), querycache.ProviderBookings, querycache.CustomerBookings, linked)},
		{lifecycle.SignContract, []querycache.Key{querycache.Contract("X")}},
		{lifecycle.VerifySignature, []querycache.Key{querycache.Contract("X"), querycache.ProviderBookings, querycache.CustomerBookings, linked}},
		{lifecycle.RequestTerminationOtp, nil},
		{lifecycle.TerminateContract, []querycache.Key{querycache.Contract("X"), querycache.ProviderBookings, querycache.CustomerBookings, linked}},
	}
	require.Len(t, tests, len(lifecycle.Transitions()))
	for _, tt := range tests {
		t.Run(string(tt.transition), func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, Invalidates(tt.transition, "X", "BKG-L"))
		})
	}
}

func TestInvalidates_UnresolvedLinkSkipsBookingDetail(t *testing.T) {
	keys := Invalidates(lifecycle.TerminateContract, "CT1", "")
	assert.NotContains(t, keys, querycache.Booking(""))
	assert.Contains(t, keys, querycache.Contract("CT1"))
}

func TestDispatch_LinkedTransitionsDropBookingDetail(t *testing.T) {
	tests := []struct {
		transition lifecycle.Transition
		sess       *session.Session
		code       string
		body       json.RawMessage
	}{
		{lifecycle.ConfirmQuotation, customer, "Q1", nil},
		{lifecycle.ApproveCancelQuotation, provider, "Q1", nil},
		{lifecycle.CreateContract, provider, "Q1", json.RawMessage(`{"content":"terms"}`)},
		{lifecycle.VerifySignature, customer, "CT1", json.RawMessage(`{"otp":"123456"}`)},
		{lifecycle.TerminateContract, customer, "CT1", json.RawMessage(`{"otp":"123456"}`)},
	}
	for _, tt := range tests {
		t.Run(string(tt.transition), func(t *testing.T) {
			f := newFixture(t, http.StatusOK, `{}`)
			f.linkBooking()
			detail := querycache.Booking("BKG123").Scoped(9)
			other := querycache.Booking("BKG999").Scoped(9)
			f.seed(t, detail, other)

			_, err := f.d.Dispatch(context.Background(), tt.sess, Request{Transition: tt.transition, Code: tt.code, Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
			assert.False(t, f.has(detail))
			assert.True(t, f.has(other))
		})
	}
}

func TestDispatch_LinkLookupFailureStillMutates(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{"message":"terminated"}`)
	contract := querycache.Contract("CT1").Scoped(9)
	f.seed(t, contract, querycache.Booking("BKG123").Scoped(9))

	_, err := f.d.Dispatch(context.Background(), customer, Request{
		Transition: lifecycle.TerminateContract,
		Code:       "CT1",
		Body:       json.RawMessage(`{"otp":"123456"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
	assert.False(t, f.has(contract))
	assert.True(t, f.has(querycache.Booking("BKG123").Scoped(9)))
}

func TestDispatch_RoleNotAllowed(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	f.seed(t, querycache.Booking("BKG1"))

	_, err := f.d.Dispatch(context.Background(), customer, Request{Transition: lifecycle.ApproveBooking, Code: "BKG1"})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeRoleForbidden, ve.Code)
	assert.Equal(t, http.StatusForbidden, ve.HTTPStatus())

	_, err = f.d.Dispatch(context.Background(), provider, Request{Transition: lifecycle.PayBooking, Code: "BKG1"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeRoleForbidden, ve.Code)

	admin := &session.Session{AccountID: 1, Role: session.RoleAdmin, Token: "adm"}
	_, err = f.d.Dispatch(context.Background(), admin, Request{Transition: lifecycle.CancelBooking, Code: "BKG1"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeRoleForbidden, ve.Code)

	assert.Equal(t, int32(0), atomic.LoadInt32(&f.calls))
	assert.True(t, f.has(querycache.Booking("BKG1")))
	assert.Empty(t, f.recorder.entries)
}

func TestDispatch_CreateBookingWithoutCode(t *testing.T) {
	f := newFixture(t, http.StatusCreated, `{"bookingCode":"BKG-NEW"}`)
	f.seed(t, querycache.CustomerBookings.Scoped(9))

	resp, err := f.d.Dispatch(context.Background(), customer, Request{
		Transition: lifecycle.CreateBooking,
		Body:       json.RawMessage(`{"decorServiceId":3,"addressId":4,"surveyDate":"2026-11-01"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookingCode":"BKG-NEW"}`, string(resp))
	assert.Equal(t, "POST /api/Booking/create", f.lastPath)
	assert.False(t, f.has(querycache.CustomerBookings.Scoped(9)))
}
