package lifecycle

import (
	"fmt"

	"bookingflow/internal/status"
	"bookingflow/pkg/session"
)

// Transition names a backend mutation that moves a booking, quotation or
// contract forward. Values double as URL segments.
type Transition string

const (
	CreateBooking        Transition = "createBooking"
	CancelBooking        Transition = "cancelBooking"
	ApproveBooking       Transition = "approveBooking"
	RejectBooking        Transition = "rejectBooking"
	RequestCancelBooking Transition = "requestCancelBooking"
	DepositBooking       Transition = "depositBooking"
	PayBooking           Transition = "payBooking"
	PayCommitDeposit     Transition = "payCommitDeposit"
	ApproveCancelRequest Transition = "approveCancelRequest"
	RevokeCancelRequest  Transition = "revokeCancelRequest"

	CreateQuotation        Transition = "createQuotation"
	ConfirmQuotation       Transition = "confirmQuotation"
	RequestChangeQuotation Transition = "requestChangeQuotation"
	ApproveChangeQuotation Transition = "approveChangeQuotation"
	RequestCancelQuotation Transition = "requestCancelQuotation"
	ApproveCancelQuotation Transition = "approveCancelQuotation"

	CreateContract        Transition = "createContract"
	SignContract          Transition = "signContract"
	VerifySignature       Transition = "verifySignature"
	RequestTerminationOtp Transition = "requestTerminationOtp"
	TerminateContract     Transition = "terminateContract"
)

var allTransitions = []Transition{
	CreateBooking, CancelBooking, ApproveBooking, RejectBooking, RequestCancelBooking,
	DepositBooking, PayBooking, PayCommitDeposit, ApproveCancelRequest, RevokeCancelRequest,
	CreateQuotation, ConfirmQuotation, RequestChangeQuotation, ApproveChangeQuotation,
	RequestCancelQuotation, ApproveCancelQuotation,
	CreateContract, SignContract, VerifySignature, RequestTerminationOtp, TerminateContract,
}

var (
	customerOnly = []session.Role{session.RoleCustomer}
	providerOnly = []session.Role{session.RoleProvider}
)

// transitionRoles names who may trigger each transition. It mirrors the
// action helpers below: a button a role never sees is a call it may not make.
var transitionRoles = map[Transition][]session.Role{
	CreateBooking:        customerOnly,
	CancelBooking:        customerOnly,
	ApproveBooking:       providerOnly,
	RejectBooking:        providerOnly,
	RequestCancelBooking: customerOnly,
	DepositBooking:       customerOnly,
	PayBooking:           customerOnly,
	PayCommitDeposit:     customerOnly,
	ApproveCancelRequest: providerOnly,
	RevokeCancelRequest:  customerOnly,

	CreateQuotation:        providerOnly,
	ConfirmQuotation:       customerOnly,
	RequestChangeQuotation: customerOnly,
	ApproveChangeQuotation: providerOnly,
	RequestCancelQuotation: customerOnly,
	ApproveCancelQuotation: providerOnly,

	CreateContract:        providerOnly,
	SignContract:          customerOnly,
	VerifySignature:       customerOnly,
	RequestTerminationOtp: customerOnly,
	TerminateContract:     customerOnly,
}

// Permits reports whether role may trigger t at all, whatever the entity's
// current state.
func Permits(t Transition, role session.Role) bool {
	for _, r := range transitionRoles[t] {
		if r == role {
			return true
		}
	}
	return false
}

func Transitions() []Transition {
	out := make([]Transition, len(allTransitions))
	copy(out, allTransitions)
	return out
}

func ParseTransition(s string) (Transition, error) {
	for _, t := range allTransitions {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transition: %s", s)
}

// BookingActions lists the booking transitions role may trigger for a booking
// in state f. The backend still decides; this only drives which buttons exist.
func BookingActions(role session.Role, f Flags) []Transition {
	if f.IsTerminal() {
		return nil
	}
	var out []Transition
	switch role {
	case session.RoleCustomer:
		switch {
		case f.IsPending:
			out = append(out, CancelBooking)
		case f.IsPlanning && !f.IsCommitDepositPaid:
			out = append(out, PayCommitDeposit, CancelBooking)
		case f.IsPendingCancel:
			out = append(out, RevokeCancelRequest)
		case f.IsPlanning, f.IsQuoting, f.IsContracting:
			out = append(out, RequestCancelBooking)
		case f.IsSigned:
			out = append(out, DepositBooking, RequestCancelBooking)
		case f.IsAllDone && f.IsCommitDepositPaid:
			out = append(out, PayBooking)
		}
	case session.RoleProvider:
		switch {
		case f.IsPending:
			out = append(out, ApproveBooking, RejectBooking)
		case f.IsPlanning && f.IsCommitDepositPaid && !f.IsQuoteExisted:
			out = append(out, CreateQuotation)
		case f.IsPendingCancel:
			out = append(out, ApproveCancelRequest)
		}
	}
	return out
}

// QuotationActions lists the quotation transitions available to role.
// Confirmation is offered only while the quotation is plain Pending.
func QuotationActions(role session.Role, code int, contractExisted bool) []Transition {
	switch role {
	case session.RoleCustomer:
		switch code {
		case status.QuotationPending:
			return []Transition{ConfirmQuotation, RequestChangeQuotation, RequestCancelQuotation}
		case status.QuotationConfirmed:
			return []Transition{RequestCancelQuotation}
		}
	case session.RoleProvider:
		switch code {
		case status.QuotationPendingChange:
			return []Transition{ApproveChangeQuotation}
		case status.QuotationPendingCancel:
			return []Transition{ApproveCancelQuotation}
		case status.QuotationConfirmed:
			if !contractExisted {
				return []Transition{CreateContract}
			}
		}
	}
	return nil
}

// ContractActions lists the contract transitions available to role.
func ContractActions(role session.Role, code int) []Transition {
	if role != session.RoleCustomer {
		return nil
	}
	switch code {
	case status.ContractPending:
		return []Transition{SignContract, VerifySignature}
	case status.ContractSigned:
		return []Transition{RequestTerminationOtp, TerminateContract}
	}
	return nil
}

func Allows(actions []Transition, t Transition) bool {
	for _, a := range actions {
		if a == t {
			return true
		}
	}
	return false
}
