package query

import (
	"context"
	"time"

	"bookingflow/internal/querycache"
	"bookingflow/pkg/decorapi"
	"bookingflow/pkg/session"
)

// Reader serves backend reads through the shared query cache. List keys are
// scoped per account so one user's data never leaks into another's and
// the backend still authorises every first read.
type Reader struct {
	Client decorapi.Client
	Loader *querycache.Loader
	// TrackingTTL overrides the loader TTL for tracking entries, which no
	// mutation here invalidates. Zero uses the loader TTL.
	TrackingTTL time.Duration
}

func (r *Reader) client(sess *session.Session, requestID string) decorapi.Client {
	c := r.Client.WithRequestID(requestID)
	if sess != nil {
		c = c.WithToken(sess.Token)
	}
	return c
}

// Bookings returns the role's booking list: providers see bookings made with
// them, customers see their own.
func (r *Reader) Bookings(ctx context.Context, sess *session.Session, requestID string, lp decorapi.ListParams) (decorapi.Page[decorapi.Booking], error) {
	c := r.client(sess, requestID)
	if sess.Role == session.RoleProvider {
		key := querycache.ProviderBookings.Scoped(sess.AccountID).WithParams(lp.Values())
		return querycache.Load(ctx, r.Loader, key, func(ctx context.Context) (decorapi.Page[decorapi.Booking], error) {
			return c.ProviderBookings(ctx, lp)
		})
	}
	key := querycache.CustomerBookings.Scoped(sess.AccountID).WithParams(lp.Values())
	return querycache.Load(ctx, r.Loader, key, func(ctx context.Context) (decorapi.Page[decorapi.Booking], error) {
		return c.CustomerBookings(ctx, lp)
	})
}

func (r *Reader) Booking(ctx context.Context, sess *session.Session, requestID, code string) (*decorapi.Booking, error) {
	c := r.client(sess, requestID)
	return querycache.Load(ctx, r.Loader, querycache.Booking(code).Scoped(sess.AccountID), func(ctx context.Context) (*decorapi.Booking, error) {
		return c.Booking(ctx, code)
	})
}

func (r *Reader) Tracking(ctx context.Context, sess *session.Session, requestID, code string) ([]decorapi.TrackingEntry, error) {
	c := r.client(sess, requestID)
	ttl := r.TrackingTTL
	if ttl <= 0 {
		ttl = r.Loader.TTL
	}
	return querycache.LoadTTL(ctx, r.Loader, querycache.Tracking(code).Scoped(sess.AccountID), ttl, func(ctx context.Context) ([]decorapi.TrackingEntry, error) {
		entries, err := c.Tracking(ctx, code)
		if entries == nil && err == nil {
			entries = []decorapi.TrackingEntry{}
		}
		return entries, err
	})
}

func (r *Reader) Quotations(ctx context.Context, sess *session.Session, requestID string, lp decorapi.ListParams) (decorapi.Page[decorapi.Quotation], error) {
	c := r.client(sess, requestID)
	if sess.Role == session.RoleProvider {
		key := querycache.ProviderQuotations.Scoped(sess.AccountID).WithParams(lp.Values())
		return querycache.Load(ctx, r.Loader, key, func(ctx context.Context) (decorapi.Page[decorapi.Quotation], error) {
			return c.ProviderQuotations(ctx, lp)
		})
	}
	key := querycache.CustomerQuotations.Scoped(sess.AccountID).WithParams(lp.Values())
	return querycache.Load(ctx, r.Loader, key, func(ctx context.Context) (decorapi.Page[decorapi.Quotation], error) {
		return c.CustomerQuotations(ctx, lp)
	})
}

func (r *Reader) Quotation(ctx context.Context, sess *session.Session, requestID, code string) (*decorapi.Quotation, error) {
	c := r.client(sess, requestID)
	return querycache.Load(ctx, r.Loader, querycache.Quotation(code).Scoped(sess.AccountID), func(ctx context.Context) (*decorapi.Quotation, error) {
		return c.Quotation(ctx, code)
	})
}

// ContractForQuotation resolves the quotation's contract code once, then reads
// the contract under its own key so contract mutations can invalidate it.
func (r *Reader) ContractForQuotation(ctx context.Context, sess *session.Session, requestID, quotationCode string) (*decorapi.Contract, error) {
	c := r.client(sess, requestID)
	contractCode, err := querycache.Load(ctx, r.Loader, querycache.ContractByQuotation(quotationCode).Scoped(sess.AccountID), func(ctx context.Context) (string, error) {
		ct, err := c.ContractByQuotation(ctx, quotationCode)
		if err != nil {
			return "", err
		}
		return ct.ContractCode, nil
	})
	if err != nil {
		return nil, err
	}
	return querycache.Load(ctx, r.Loader, querycache.Contract(contractCode).Scoped(sess.AccountID), func(ctx context.Context) (*decorapi.Contract, error) {
		return c.Contract(ctx, contractCode)
	})
}

func (r *Reader) Transactions(ctx context.Context, sess *session.Session, requestID string, lp decorapi.ListParams) (decorapi.Page[decorapi.Transaction], error) {
	c := r.client(sess, requestID)
	key := querycache.Wallet.Scoped(sess.AccountID).WithParams(lp.Values())
	return querycache.Load(ctx, r.Loader, key, func(ctx context.Context) (decorapi.Page[decorapi.Transaction], error) {
		return c.Transactions(ctx, lp)
	})
}
