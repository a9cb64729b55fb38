package decorapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func codePath(resource, action, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("missing %s code", strings.ToLower(resource))
	}
	if action == "" {
		return resource + "/" + url.PathEscape(code), nil
	}
	return resource + "/" + action + "/" + url.PathEscape(code), nil
}

func (c Client) ProviderBookings(ctx context.Context, lp ListParams) (Page[Booking], error) {
	var out Page[Booking]
	_, err := c.doJSON(ctx, http.MethodGet, "Booking/getPaginatedBookingsForProvider", lp.Values(), nil, &out)
	return out, err
}

func (c Client) CustomerBookings(ctx context.Context, lp ListParams) (Page[Booking], error) {
	var out Page[Booking]
	_, err := c.doJSON(ctx, http.MethodGet, "Booking/getPaginatedBookingsForCustomer", lp.Values(), nil, &out)
	return out, err
}

func (c Client) Booking(ctx context.Context, bookingCode string) (*Booking, error) {
	p, err := codePath("Booking", "", bookingCode)
	if err != nil {
		return nil, err
	}
	var out Booking
	if _, err := c.doJSON(ctx, http.MethodGet, p, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tracking returns the booking's tracking entries ordered by creation time.
func (c Client) Tracking(ctx context.Context, bookingCode string) ([]TrackingEntry, error) {
	p, err := codePath("Booking", "tracking", bookingCode)
	if err != nil {
		return nil, err
	}
	var out Page[TrackingEntry]
	if _, err := c.doJSON(ctx, http.MethodGet, p, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c Client) ProviderQuotations(ctx context.Context, lp ListParams) (Page[Quotation], error) {
	var out Page[Quotation]
	_, err := c.doJSON(ctx, http.MethodGet, "Quotation/getPaginatedQuotationsForProvider", lp.Values(), nil, &out)
	return out, err
}

func (c Client) CustomerQuotations(ctx context.Context, lp ListParams) (Page[Quotation], error) {
	var out Page[Quotation]
	_, err := c.doJSON(ctx, http.MethodGet, "Quotation/getPaginatedQuotationsForCustomer", lp.Values(), nil, &out)
	return out, err
}

func (c Client) Quotation(ctx context.Context, quotationCode string) (*Quotation, error) {
	p, err := codePath("Quotation", "", quotationCode)
	if err != nil {
		return nil, err
	}
	var out Quotation
	if _, err := c.doJSON(ctx, http.MethodGet, p, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) ContractByQuotation(ctx context.Context, quotationCode string) (*Contract, error) {
	p, err := codePath("Contract", "getByQuotationCode", quotationCode)
	if err != nil {
		return nil, err
	}
	var out Contract
	if _, err := c.doJSON(ctx, http.MethodGet, p, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) Contract(ctx context.Context, contractCode string) (*Contract, error) {
	p, err := codePath("Contract", "", contractCode)
	if err != nil {
		return nil, err
	}
	var out Contract
	if _, err := c.doJSON(ctx, http.MethodGet, p, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) Transactions(ctx context.Context, lp ListParams) (Page[Transaction], error) {
	var out Page[Transaction]
	_, err := c.doJSON(ctx, http.MethodGet, "Wallet/transactions", lp.Values(), nil, &out)
	return out, err
}
