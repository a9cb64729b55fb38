package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bookingflow/pkg/decorapi"
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

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 0

// Split is a booking total divided into the deposit paid after signing and the
// final payment due once the work is done.
type Split struct {
	Deposit decimal.Decimal `json:"deposit"`
	Final   decimal.Decimal `json:"final"`
}

// SplitTotal computes the deposit as a percentage of total and assigns the
// rest, including any rounding delta, to the final payment so the two always
// add up to the rounded total.
func SplitTotal(total decimal.Decimal, depositPercent decimal.Decimal, scale CurrencyScale) (Split, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return Split{}, ValidationError{Code: "BOOKING_TOTAL_INVALID", Message: "booking total must be > 0"}
	}
	if depositPercent.LessThan(decimal.Zero) || depositPercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return Split{}, ValidationError{Code: "DEPOSIT_PERCENT_INVALID", Message: "deposit percent must be in [0, 100)"}
	}
	if scale < 0 {
		scale = DefaultCurrencyScale
	}

	rounded := total.Round(int32(scale))
	deposit := total.Mul(depositPercent).Div(decimal.NewFromInt(100)).Round(int32(scale))
	final := rounded.Sub(deposit)

	if final.LessThanOrEqual(decimal.Zero) {
		return Split{}, ValidationError{Code: "FINAL_PAYMENT_INVALID", Message: "final payment amount must be > 0"}
	}
	return Split{Deposit: deposit, Final: final}, nil
}

// Balance sums signed ledger amounts; credits are positive.
func Balance(txs []decorapi.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum
}
