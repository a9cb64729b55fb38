package decorapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// Every mutation below is a single call keyed by the entity's natural code.
// The raw backend response is returned untouched; callers decide what to read.

func (c Client) mutate(ctx context.Context, method, resource, action, code string, body any) (json.RawMessage, error) {
	p, err := codePath(resource, action, code)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if _, err := c.doJSON(ctx, method, p, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type CreateBookingRequest struct {
	DecorServiceID int64  `json:"decorServiceId"`
	AddressID      int64  `json:"addressId"`
	SurveyDate     string `json:"surveyDate"`
	Note           string `json:"note,omitempty"`
}

// CreateBooking has no code yet; the backend answers with the new bookingCode.
func (c Client) CreateBooking(ctx context.Context, body any) (json.RawMessage, error) {
	var out json.RawMessage
	if _, err := c.doJSON(ctx, http.MethodPost, "Booking/create", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Client) CancelBooking(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Booking", "cancel", bookingCode, body)
}

func (c Client) ApproveBooking(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Booking", "approve", bookingCode, body)
}

func (c Client) RejectBooking(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Booking", "reject", bookingCode, body)
}

func (c Client) RequestCancelBooking(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Booking", "requestCancel", bookingCode, body)
}

func (c Client) DepositBooking(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Booking", "deposit", bookingCode, body)
}

func (c Client) PayBooking(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Booking", "payFinal", bookingCode, body)
}

func (c Client) PayCommitDeposit(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Booking", "payCommitDeposit", bookingCode, body)
}

func (c Client) ApproveCancelRequest(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Booking", "approveCancellation", bookingCode, body)
}

func (c Client) RevokeCancelRequest(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Booking", "revokeCancellation", bookingCode, body)
}

func (c Client) CreateQuotation(ctx context.Context, bookingCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Quotation", "createQuotationByBookingCode", bookingCode, body)
}

func (c Client) ConfirmQuotation(ctx context.Context, quotationCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Quotation", "confirmQuotation", quotationCode, body)
}

func (c Client) RequestChangeQuotation(ctx context.Context, quotationCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Quotation", "requestChangeQuotation", quotationCode, body)
}

func (c Client) ApproveChangeQuotation(ctx context.Context, quotationCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Quotation", "approveChangeQuotation", quotationCode, body)
}

func (c Client) RequestCancelQuotation(ctx context.Context, quotationCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Quotation", "requestCancelQuotation", quotationCode, body)
}

func (c Client) ApproveCancelQuotation(ctx context.Context, quotationCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, "Quotation", "approveCancelQuotation", quotationCode, body)
}

func (c Client) CreateContract(ctx context.Context, quotationCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Contract", "createByQuotationCode", quotationCode, body)
}

// SignContract asks the backend to email the customer a signature link.
func (c Client) SignContract(ctx context.Context, contractCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Contract", "requestSignatureEmail", contractCode, body)
}

func (c Client) VerifySignature(ctx context.Context, contractCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Contract", "verifySignature", contractCode, body)
}

func (c Client) RequestTerminationOtp(ctx context.Context, contractCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Contract", "requestTerminationOtp", contractCode, body)
}

func (c Client) TerminateContract(ctx context.Context, contractCode string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, "Contract", "terminate", contractCode, body)
}
