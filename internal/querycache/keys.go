package querycache

import (
	"net/url"
	"strconv"
	"strings"
)

// Key names a cached query. Invalidating a Key drops the key itself and
// every variant derived from it with Scoped or WithParams.
type Key string

const (
	ProviderBookings   Key = "bookings:provider"
	CustomerBookings   Key = "bookings:customer"
	ProviderQuotations Key = "quotations:provider"
	CustomerQuotations Key = "quotations:customer"
	Wallet             Key = "wallet"
)

func Booking(code string) Key             { return Key("booking:" + code) }
func Tracking(code string) Key            { return Key("tracking:" + code) }
func Quotation(code string) Key           { return Key("quotation:" + code) }
func Contract(code string) Key            { return Key("contract:" + code) }
func ContractByQuotation(code string) Key { return Key("contract-by-quotation:" + code) }

// Scoped narrows a key to one account.
func (k Key) Scoped(accountID int64) Key {
	return Key(string(k) + "|" + strconv.FormatInt(accountID, 10))
}

// WithParams narrows a key to one set of query parameters.
func (k Key) WithParams(v url.Values) Key {
	if len(v) == 0 {
		return k
	}
	return Key(string(k) + "?" + v.Encode())
}

// Covers reports whether invalidating k must drop other.
func (k Key) Covers(other Key) bool {
	if other == k {
		return true
	}
	rest, ok := strings.CutPrefix(string(other), string(k))
	if !ok || rest == "" {
		return false
	}
	return rest[0] == '|' || rest[0] == '?'
}

// root strips the account scope and query params. Invalidation generations
// are tracked per root so any variant notices an invalidation of its base.
func (k Key) root() Key {
	if i := strings.IndexAny(string(k), "|?"); i >= 0 {
		return k[:i]
	}
	return k
}
