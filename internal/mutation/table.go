package mutation

import (
	"context"
	"encoding/json"
	"log"

	"bookingflow/internal/lifecycle"
	"bookingflow/internal/querycache"
	"bookingflow/pkg/decorapi"
)

type call func(c decorapi.Client, ctx context.Context, code string, body any) (json.RawMessage, error)

// link says how to find the booking an entity belongs to. Quotation and
// contract transitions change fields on that booking's detail view.
type link int

const (
	linkNone link = iota
	linkQuotation
	linkContract
)

type entry struct {
	call      call
	needsCode bool
	needsBody bool
	link      link
	// invalidates lists the cached views the mutation can change. Keep it
	// narrow: every key here is a re-fetch for every open view.
	invalidates func(code string) []querycache.Key
}

func bookingViews(code string) []querycache.Key {
	return []querycache.Key{querycache.ProviderBookings, querycache.CustomerBookings, querycache.Booking(code)}
}

func paymentViews(code string) []querycache.Key {
	return append(bookingViews(code), querycache.Wallet)
}

func quotationViews(code string) []querycache.Key {
	return []querycache.Key{querycache.Quotation(code), querycache.ProviderQuotations, querycache.CustomerQuotations}
}

func quotationAndBookingViews(code string) []querycache.Key {
	return append(quotationViews(code), querycache.ProviderBookings, querycache.CustomerBookings)
}

func contractViews(code string) []querycache.Key {
	return []querycache.Key{querycache.Contract(code)}
}

func contractAndBookingViews(code string) []querycache.Key {
	return append(contractViews(code), querycache.ProviderBookings, querycache.CustomerBookings)
}

func none(string) []querycache.Key { return nil }

var table = map[lifecycle.Transition]entry{
	lifecycle.CreateBooking: {
		call: func(c decorapi.Client, ctx context.Context, _ string, body any) (json.RawMessage, error) {
			return c.CreateBooking(ctx, body)
		},
		needsBody: true,
		invalidates: func(string) []querycache.Key {
			return []querycache.Key{querycache.ProviderBookings, querycache.CustomerBookings}
		},
	},
	lifecycle.CancelBooking:        {call: decorapi.Client.CancelBooking, needsCode: true, invalidates: bookingViews},
	lifecycle.ApproveBooking:       {call: decorapi.Client.ApproveBooking, needsCode: true, invalidates: bookingViews},
	lifecycle.RejectBooking:        {call: decorapi.Client.RejectBooking, needsCode: true, invalidates: bookingViews},
	lifecycle.RequestCancelBooking: {call: decorapi.Client.RequestCancelBooking, needsCode: true, invalidates: bookingViews},
	lifecycle.ApproveCancelRequest: {call: decorapi.Client.ApproveCancelRequest, needsCode: true, invalidates: bookingViews},
	lifecycle.RevokeCancelRequest:  {call: decorapi.Client.RevokeCancelRequest, needsCode: true, invalidates: bookingViews},
	lifecycle.DepositBooking:       {call: decorapi.Client.DepositBooking, needsCode: true, invalidates: paymentViews},
	lifecycle.PayBooking:           {call: decorapi.Client.PayBooking, needsCode: true, invalidates: paymentViews},
	lifecycle.PayCommitDeposit:     {call: decorapi.Client.PayCommitDeposit, needsCode: true, invalidates: paymentViews},

	// createQuotation is keyed by the booking it quotes.
	lifecycle.CreateQuotation: {
		call:      decorapi.Client.CreateQuotation,
		needsCode: true,
		invalidates: func(bookingCode string) []querycache.Key {
			return append(bookingViews(bookingCode), querycache.ProviderQuotations, querycache.CustomerQuotations)
		},
	},
	lifecycle.ConfirmQuotation:       {call: decorapi.Client.ConfirmQuotation, needsCode: true, link: linkQuotation, invalidates: quotationAndBookingViews},
	lifecycle.RequestChangeQuotation: {call: decorapi.Client.RequestChangeQuotation, needsCode: true, invalidates: quotationViews},
	lifecycle.ApproveChangeQuotation: {call: decorapi.Client.ApproveChangeQuotation, needsCode: true, invalidates: quotationViews},
	lifecycle.RequestCancelQuotation: {call: decorapi.Client.RequestCancelQuotation, needsCode: true, invalidates: quotationViews},
	lifecycle.ApproveCancelQuotation: {call: decorapi.Client.ApproveCancelQuotation, needsCode: true, link: linkQuotation, invalidates: quotationAndBookingViews},

	// createContract is keyed by the quotation it is generated from.
	lifecycle.CreateContract: {
		call:      decorapi.Client.CreateContract,
		needsCode: true,
		link:      linkQuotation,
		invalidates: func(quotationCode string) []querycache.Key {
			return append(quotationViews(quotationCode), querycache.ContractByQuotation(quotationCode), querycache.ProviderBookings, querycache.CustomerBookings)
		},
	},
	lifecycle.SignContract:          {call: decorapi.Client.SignContract, needsCode: true, invalidates: contractViews},
	lifecycle.VerifySignature:       {call: decorapi.Client.VerifySignature, needsCode: true, needsBody: true, link: linkContract, invalidates: contractAndBookingViews},
	lifecycle.RequestTerminationOtp: {call: decorapi.Client.RequestTerminationOtp, needsCode: true, invalidates: none},
	lifecycle.TerminateContract:     {call: decorapi.Client.TerminateContract, needsCode: true, needsBody: true, link: linkContract, invalidates: contractAndBookingViews},
}

// Invalidates returns the cache keys a successful t on code drops.
// bookingCode is the linked booking resolved for quotation and contract
// transitions; it is ignored for the others.
func Invalidates(t lifecycle.Transition, code, bookingCode string) []querycache.Key {
	e, ok := table[t]
	if !ok {
		return nil
	}
	return e.keys(code, bookingCode)
}

func (e entry) keys(code, bookingCode string) []querycache.Key {
	keys := e.invalidates(code)
	if e.link != linkNone && bookingCode != "" {
		keys = append(keys, querycache.Booking(bookingCode))
	}
	return keys
}

// linkedBooking resolves the booking a quotation or contract belongs to. It
// runs before the mutation, while the entity is still readable; a failure
// only costs the booking detail its invalidation.
func linkedBooking(ctx context.Context, c decorapi.Client, l link, code string) string {
	if l == linkNone {
		return ""
	}
	quotationCode := code
	if l == linkContract {
		ct, err := c.Contract(ctx, code)
		if err != nil {
			log.Printf("[mutation] resolve quotation of contract %s failed: %v", code, err)
			return ""
		}
		quotationCode = ct.QuotationCode
	}
	q, err := c.Quotation(ctx, quotationCode)
	if err != nil {
		log.Printf("[mutation] resolve booking of quotation %s failed: %v", quotationCode, err)
		return ""
	}
	return q.BookingCode
}
