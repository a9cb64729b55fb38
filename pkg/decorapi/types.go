package decorapi

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	BookingCode         string          `json:"bookingCode"`
	Status              int             `json:"status"`
	CreatedDate         time.Time       `json:"createdDate"`
	SurveyDate          *time.Time      `json:"surveyDate,omitempty"`
	CompleteDate        *time.Time      `json:"completeDate,omitempty"`
	ProviderID          int64           `json:"providerId"`
	ProviderName        string          `json:"providerName,omitempty"`
	CustomerID          int64           `json:"customerId"`
	CustomerName        string          `json:"customerName,omitempty"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	IsCommitDepositPaid bool            `json:"isCommitDepositPaid"`
	IsQuoteExisted      bool            `json:"isQuoteExisted"`
	IsContractExisted   bool            `json:"isContractExisted"`
	HasTerminated       bool            `json:"hasTerminated"`
	IsReviewed          bool            `json:"isReviewed"`
}

type Quotation struct {
	QuotationCode     string          `json:"quotationCode"`
	Status            int             `json:"status"`
	BookingCode       string          `json:"bookingCode"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	IsContractExisted bool            `json:"isContractExisted"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type Contract struct {
	ContractCode  string    `json:"contractCode"`
	Status        int       `json:"status"`
	QuotationCode string    `json:"quotationCode"`
	IsSigned      bool      `json:"isSigned"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TrackingEntry is a provider-authored progress update. Entries are append-only.
type TrackingEntry struct {
	CreatedAt time.Time `json:"createdAt"`
	Task      string    `json:"task"`
	Note      string    `json:"note"`
	Images    []string  `json:"images"`
}

// Transaction is an immutable wallet ledger entry; positive amounts are credits.
type Transaction struct {
	ID              int64           `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType int             `json:"transactionType"`
	TransactionDate time.Time       `json:"transactionDate"`
}

// Page is a normalised list response. The backend answers list endpoints
// either with {data, totalCount} or with a bare array.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		p.Items = items
		p.TotalCount = len(items)
		return nil
	}
	var env struct {
		Data       []T `json:"data"`
		TotalCount int `json:"totalCount"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	p.Items = env.Data
	p.TotalCount = env.TotalCount
	if p.TotalCount == 0 {
		p.TotalCount = len(env.Data)
	}
	return nil
}

// MarshalJSON keeps the normalised shape so cached pages round-trip.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(struct {
		Data       []T `json:"data"`
		TotalCount int `json:"totalCount"`
	}{items, p.TotalCount})
}

type ListParams struct {
	PageIndex int
	PageSize  int
	Filters   map[string]string
}

const (
	DefaultPageIndex = 1
	DefaultPageSize  = 10
)

func (lp ListParams) Values() url.Values {
	v := url.Values{}
	idx, size := lp.PageIndex, lp.PageSize
	if idx <= 0 {
		idx = DefaultPageIndex
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	v.Set("PageIndex", strconv.Itoa(idx))
	v.Set("PageSize", strconv.Itoa(size))
	for k, val := range lp.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}
