package mutation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"bookingflow/internal/audit"
	"bookingflow/internal/lifecycle"
	"bookingflow/internal/querycache"
	"bookingflow/pkg/decorapi"
	"bookingflow/pkg/session"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e ValidationError) ErrorCode() string    { return e.Code }
func (e ValidationError) ErrorMessage() string { return e.Message }

func (e ValidationError) HTTPStatus() int {
	if e.Code == CodeRoleForbidden {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

const CodeRoleForbidden = "ROLE_FORBIDDEN"

type Request struct {
	Transition lifecycle.Transition
	// Code is the natural key of the entity the transition acts on
	// (bookingCode, quotationCode or contractCode).
	Code      string
	Body      json.RawMessage
	RequestID string
}

type Dispatcher struct {
	Client decorapi.Client
	Cache  querycache.Store
	Audit  audit.Recorder
}

// Dispatch validates req and the caller's role, performs the single backend
// call and, only when it succeeds, invalidates the cached views the transition
// declares. Failures are returned as-is; nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, req Request) (json.RawMessage, error) {
	e, err := validate(req)
	if err != nil {
		return nil, err
	}
	if sess == nil || !lifecycle.Permits(req.Transition, sess.Role) {
		return nil, ValidationError{Code: CodeRoleForbidden, Message: fmt.Sprintf("%s is not allowed for this role", req.Transition)}
	}
	code := strings.TrimSpace(req.Code)

	client := d.Client.WithToken(sess.Token)
	if req.RequestID != "" {
		client = client.WithRequestID(req.RequestID)
	}

	var body any
	if len(req.Body) > 0 {
		body = req.Body
	}

	bookingCode := linkedBooking(ctx, client, e.link, code)
	resp, callErr := e.call(client, ctx, code, body)

	// The backend may have applied the change even if the caller has gone away.
	bg := context.WithoutCancel(ctx)
	d.record(bg, sess, req, code, callErr)
	if callErr != nil {
		return nil, callErr
	}

	if keys := e.keys(code, bookingCode); len(keys) > 0 && d.Cache != nil {
		if err := d.Cache.Invalidate(bg, keys...); err != nil {
			log.Printf("[mutation] invalidate after %s %s failed: %v", req.Transition, code, err)
		}
	}
	return resp, nil
}

func validate(req Request) (entry, error) {
	e, ok := table[req.Transition]
	if !ok {
		return entry{}, ValidationError{Code: "TRANSITION_UNKNOWN", Message: fmt.Sprintf("unknown transition %q", req.Transition)}
	}
	if e.needsCode && strings.TrimSpace(req.Code) == "" {
		return entry{}, ValidationError{Code: "CODE_REQUIRED", Message: fmt.Sprintf("%s requires an entity code", req.Transition)}
	}
	trimmed := bytes.TrimSpace(req.Body)
	if e.needsBody && (len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))) {
		return entry{}, ValidationError{Code: "BODY_REQUIRED", Message: fmt.Sprintf("%s requires a request body", req.Transition)}
	}
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		return entry{}, ValidationError{Code: "VALIDATION_FAILED", Message: "invalid json"}
	}
	return e, nil
}

func (d *Dispatcher) record(ctx context.Context, sess *session.Session, req Request, code string, callErr error) {
	if d.Audit == nil {
		return
	}
	ent := audit.Entry{
		RequestID:  req.RequestID,
		Transition: string(req.Transition),
		EntityCode: code,
		Outcome:    audit.OutcomeSucceeded,
		OccurredAt: time.Now(),
	}
	if sess != nil {
		ent.AccountID = sess.AccountID
		ent.Role = int(sess.Role)
	}
	if callErr != nil {
		ent.Outcome = audit.OutcomeFailed
		ent.Error = callErr.Error()
		var apiErr *decorapi.APIError
		if errors.As(callErr, &apiErr) {
			ent.Outcome = audit.OutcomeRejected
			ent.Error = apiErr.Message
			ent.Metadata = map[string]any{"status": apiErr.Status}
		}
	}
	if err := d.Audit.Record(ctx, ent); err != nil {
		log.Printf("[mutation] audit %s %s failed: %v", req.Transition, code, err)
	}
}
