package lifecycle

import "net/url"

type Message string

const (
	MessageNone                Message = ""
	MessageContractTerminated  Message = "contract_terminated"
	MessageCancelled           Message = "cancelled"
	MessageRejected            Message = "rejected"
	MessageCancellationPending Message = "cancellation_pending"
	MessageCompleted           Message = "completed"
	MessagePaymentCompleted    Message = "payment_completed"
	MessageAllDone             Message = "all_done"
	MessageTrackingReady       Message = "tracking_ready"
	MessageContractSigned      Message = "contract_signed"
	MessageDepositPaid         Message = "deposit_paid"
	MessageContractPending     Message = "contract_pending"
	MessageQuotationReady      Message = "quotation_ready"
)

type Action string

const (
	ActionNone                     Action = ""
	ActionViewBooking              Action = "view_booking"
	ActionLeaveReviewOrViewBooking Action = "leave_review_or_view_booking"
	ActionViewProvider             Action = "view_provider"
	ActionCompletePayment          Action = "complete_payment"
	ActionViewTracking             Action = "view_tracking"
	ActionPayCommitDeposit         Action = "pay_commit_deposit"
)

// Path returns the UI route the action points at.
func (a Action) Path(bookingCode string) string {
	code := url.PathEscape(bookingCode)
	switch a {
	case ActionViewBooking:
		return "/booking/" + code
	case ActionLeaveReviewOrViewBooking:
		return "/booking/review/" + code
	case ActionViewProvider:
		return "/booking/" + code + "/provider"
	case ActionCompletePayment:
		return "/payment/" + code + "?type=final"
	case ActionViewTracking:
		return "/booking/tracking/" + code
	case ActionPayCommitDeposit:
		return "/payment/" + code + "?type=commit"
	default:
		return ""
	}
}

type Overlay string

const (
	OverlayNone Overlay = ""
	// OverlayCommitDeposit blocks the booking view until the customer pays the
	// commitment deposit or cancels.
	OverlayCommitDeposit Overlay = "commit_deposit_or_cancel"
)

type Presentation struct {
	Rule          string  `json:"rule"`
	Message       Message `json:"message"`
	PrimaryAction Action  `json:"primaryAction,omitempty"`
	Overlay       Overlay `json:"overlay,omitempty"`
}

type rule struct {
	name     string
	terminal bool
	match    func(Flags) bool
	present  func(Flags) (Message, Action)
}

func fixed(m Message, a Action) func(Flags) (Message, Action) {
	return func(Flags) (Message, Action) { return m, a }
}

// bookingRules is evaluated top to bottom; the first match wins.
// Reordering changes what customers see.
var bookingRules = []rule{
	{
		name:     "terminated",
		terminal: true,
		match:    func(f Flags) bool { return f.HasTerminated },
		present:  fixed(MessageContractTerminated, ActionNone),
	},
	{
		name:     "cancelled",
		terminal: true,
		match:    func(f Flags) bool { return f.IsCancelled },
		present:  fixed(MessageCancelled, ActionNone),
	},
	{
		name:     "rejected",
		terminal: true,
		match:    func(f Flags) bool { return f.IsRejected },
		present:  fixed(MessageRejected, ActionNone),
	},
	{
		name:     "pending-cancel",
		terminal: true,
		match:    func(f Flags) bool { return f.IsPendingCancel },
		present:  fixed(MessageCancellationPending, ActionNone),
	},
	{
		name:  "completed",
		match: func(f Flags) bool { return f.IsCompleted },
		present: func(f Flags) (Message, Action) {
			if f.IsReviewed {
				return MessageCompleted, ActionViewBooking
			}
			return MessageCompleted, ActionLeaveReviewOrViewBooking
		},
	},
	{
		name:    "final-paid",
		match:   func(f Flags) bool { return f.IsFinalPaid },
		present: fixed(MessagePaymentCompleted, ActionViewProvider),
	},
	{
		name:  "all-done",
		match: func(f Flags) bool { return f.IsAllDone },
		present: func(f Flags) (Message, Action) {
			if f.IsCommitDepositPaid {
				return MessageAllDone, ActionCompletePayment
			}
			return MessageAllDone, ActionNone
		},
	},
	{
		name:    "tracked",
		match:   func(f Flags) bool { return f.IsTracked },
		present: fixed(MessageTrackingReady, ActionViewTracking),
	},
	{
		name:    "signed",
		match:   func(f Flags) bool { return f.IsSigned },
		present: fixed(MessageContractSigned, ActionNone),
	},
	{
		name:    "deposit-paid",
		match:   func(f Flags) bool { return f.IsDepositPaid },
		present: fixed(MessageDepositPaid, ActionNone),
	},
	{
		name:    "contracting",
		match:   func(f Flags) bool { return f.IsContracting && f.IsQuoteExisted },
		present: fixed(MessageContractPending, ActionNone),
	},
	{
		name:    "quote-existed",
		match:   func(f Flags) bool { return f.IsQuoteExisted && !f.IsDepositPaid },
		present: fixed(MessageQuotationReady, ActionNone),
	},
}

const RuleDefault = "default"

// ResolveBookingPresentation picks the message and the single primary action
// for a booking. The commit-deposit overlay is layered on top of whatever rule
// fired and replaces the action unless that rule was terminal.
func ResolveBookingPresentation(f Flags) Presentation {
	p := Presentation{Rule: RuleDefault}
	terminal := false
	for _, r := range bookingRules {
		if !r.match(f) {
			continue
		}
		p.Rule = r.name
		p.Message, p.PrimaryAction = r.present(f)
		terminal = r.terminal
		break
	}

	if f.IsPlanning && !f.IsCommitDepositPaid {
		p.Overlay = OverlayCommitDeposit
		if !terminal {
			p.PrimaryAction = ActionPayCommitDeposit
		}
	}
	return p
}

// RuleNames lists the resolver rules in evaluation order.
func RuleNames() []string {
	out := make([]string, 0, len(bookingRules)+1)
	for _, r := range bookingRules {
		out = append(out, r.name)
	}
	return append(out, RuleDefault)
}
