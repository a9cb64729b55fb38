package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingflow/internal/status"
	"bookingflow/pkg/session"
)

func allInputs() []Input {
	var out []Input
	for _, code := range status.Codes(status.KindBooking) {
		for mask := 0; mask < 1<<6; mask++ {
			out = append(out, Input{
				Status:              code,
				IsCommitDepositPaid: mask&1 != 0,
				IsQuoteExisted:      mask&2 != 0,
				HasTerminated:       mask&4 != 0,
				IsReviewed:          mask&8 != 0,
				HasTrackingEntries:  mask&16 != 0,
				IsContractExisted:   mask&32 != 0,
			})
		}
	}
	return out
}

func TestDeriveBookingFlags_ExactlyOneStatusFlag(t *testing.T) {
	for _, code := range status.Codes(status.KindBooking) {
		f := DeriveBookingFlags(Input{Status: code})
		set := []bool{
			f.IsPending, f.IsPlanning, f.IsQuoting, f.IsContracting, f.IsSigned,
			f.IsDepositPaid, f.IsPreparing, f.IsInTransit, f.IsProgressing, f.IsAllDone,
			f.IsFinalPaid, f.IsCompleted, f.IsPendingCancel, f.IsCancelled, f.IsRejected,
		}
		n := 0
		for _, b := range set {
			if b {
				n++
			}
		}
		assert.Equal(t, 1, n, "status %d", code)
	}
}

func TestDeriveBookingFlags_TrackedComesFromEntriesOnly(t *testing.T) {
	f := DeriveBookingFlags(Input{Status: status.BookingProgressing})
	assert.False(t, f.IsTracked)

	f = DeriveBookingFlags(Input{Status: status.BookingPreparing, HasTrackingEntries: true})
	assert.True(t, f.IsTracked)
}

func TestResolve_ExactlyOneRuleFires(t *testing.T) {
	names := RuleNames()
	for _, in := range allInputs() {
		f := DeriveBookingFlags(in)
		p := ResolveBookingPresentation(f)
		require.Contains(t, names, p.Rule)

		matched := 0
		for _, r := range bookingRules {
			if r.match(f) {
				matched++
				// the first matching rule must be the one reported
				if matched == 1 {
					assert.Equal(t, r.name, p.Rule, "%+v", in)
				}
			}
		}
		if matched == 0 {
			assert.Equal(t, RuleDefault, p.Rule)
			assert.Equal(t, MessageNone, p.Message)
		}
	}
}

func TestResolve_TerminatedWinsOverEverything(t *testing.T) {
	for _, in := range allInputs() {
		in.HasTerminated = true
		p := ResolveBookingPresentation(DeriveBookingFlags(in))
		assert.Equal(t, "terminated", p.Rule)
		assert.Equal(t, MessageContractTerminated, p.Message)
		assert.Equal(t, ActionNone, p.PrimaryAction)
	}
}

func TestResolve_PlanningWithoutCommitDepositAlwaysBlocks(t *testing.T) {
	for _, in := range allInputs() {
		if in.Status != status.BookingPlanning {
			continue
		}
		in.IsCommitDepositPaid = false
		p := ResolveBookingPresentation(DeriveBookingFlags(in))
		assert.Equal(t, OverlayCommitDeposit, p.Overlay, "%+v", in)
		if !in.HasTerminated {
			assert.Equal(t, ActionPayCommitDeposit, p.PrimaryAction, "%+v", in)
		}
	}
}

func TestResolve_OverlayDoesNotTouchFlags(t *testing.T) {
	f := DeriveBookingFlags(Input{Status: status.BookingPlanning, IsQuoteExisted: true})
	before := f
	p := ResolveBookingPresentation(f)
	assert.Equal(t, before, f)
	assert.Equal(t, "quote-existed", p.Rule)
	assert.Equal(t, MessageQuotationReady, p.Message)
	assert.Equal(t, ActionPayCommitDeposit, p.PrimaryAction)
}

func TestResolve_NoOverlayOnceCommitDepositPaid(t *testing.T) {
	p := ResolveBookingPresentation(DeriveBookingFlags(Input{Status: status.BookingPlanning, IsCommitDepositPaid: true}))
	assert.Equal(t, OverlayNone, p.Overlay)
	assert.Equal(t, ActionNone, p.PrimaryAction)
}

func TestResolve_AllDoneExposesCompletePayment(t *testing.T) {
	p := ResolveBookingPresentation(DeriveBookingFlags(Input{
		Status:              status.BookingAllDone,
		IsCommitDepositPaid: true,
		HasTrackingEntries:  true,
	}))
	assert.Equal(t, ActionCompletePayment, p.PrimaryAction)
	assert.Equal(t, "/payment/BKG123?type=final", p.PrimaryAction.Path("BKG123"))
}

func TestResolve_FinalPaidOnlyOffersProvider(t *testing.T) {
	p := ResolveBookingPresentation(DeriveBookingFlags(Input{
		Status:              status.BookingFinalPaid,
		IsCommitDepositPaid: true,
		HasTrackingEntries:  true,
	}))
	assert.Equal(t, MessagePaymentCompleted, p.Message)
	assert.Equal(t, ActionViewProvider, p.PrimaryAction)
	assert.Equal(t, OverlayNone, p.Overlay)
}

func TestResolve_CompletedDependsOnReview(t *testing.T) {
	p := ResolveBookingPresentation(DeriveBookingFlags(Input{Status: status.BookingCompleted}))
	assert.Equal(t, ActionLeaveReviewOrViewBooking, p.PrimaryAction)

	p = ResolveBookingPresentation(DeriveBookingFlags(Input{Status: status.BookingCompleted, IsReviewed: true}))
	assert.Equal(t, ActionViewBooking, p.PrimaryAction)
}

func TestResolve_PrecedenceTable(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		rule string
		msg  Message
		act  Action
	}{
		{"cancelled", Input{Status: status.BookingCancelled, HasTrackingEntries: true}, "cancelled", MessageCancelled, ActionNone},
		{"rejected", Input{Status: status.BookingRejected}, "rejected", MessageRejected, ActionNone},
		{"pending cancel", Input{Status: status.BookingPendingCancel, IsQuoteExisted: true}, "pending-cancel", MessageCancellationPending, ActionNone},
		{"tracked", Input{Status: status.BookingProgressing, HasTrackingEntries: true}, "tracked", MessageTrackingReady, ActionViewTracking},
		{"signed", Input{Status: status.BookingConfirmed, IsQuoteExisted: true, IsCommitDepositPaid: true}, "signed", MessageContractSigned, ActionNone},
		{"deposit", Input{Status: status.BookingDepositPaid, IsQuoteExisted: true, IsCommitDepositPaid: true}, "deposit-paid", MessageDepositPaid, ActionNone},
		{"contracting", Input{Status: status.BookingContracting, IsQuoteExisted: true, IsCommitDepositPaid: true}, "contracting", MessageContractPending, ActionNone},
		{"quoting", Input{Status: status.BookingQuoting, IsQuoteExisted: true, IsCommitDepositPaid: true}, "quote-existed", MessageQuotationReady, ActionNone},
		{"pending", Input{Status: status.BookingPending}, RuleDefault, MessageNone, ActionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ResolveBookingPresentation(DeriveBookingFlags(tc.in))
			assert.Equal(t, tc.rule, p.Rule)
			assert.Equal(t, tc.msg, p.Message)
			assert.Equal(t, tc.act, p.PrimaryAction)
		})
	}
}

func TestQuotationActions_PendingCancelNeverConfirms(t *testing.T) {
	for _, role := range []session.Role{session.RoleAdmin, session.RoleProvider, session.RoleCustomer} {
		acts := QuotationActions(role, status.QuotationPendingCancel, false)
		assert.False(t, Allows(acts, ConfirmQuotation), "role %d", role)
	}
	assert.True(t, Allows(QuotationActions(session.RoleCustomer, status.QuotationPending, false), ConfirmQuotation))
}

func TestQuotationActions_ProviderCreatesContractOnce(t *testing.T) {
	assert.Equal(t, []Transition{CreateContract}, QuotationActions(session.RoleProvider, status.QuotationConfirmed, false))
	assert.Empty(t, QuotationActions(session.RoleProvider, status.QuotationConfirmed, true))
}

func TestContractActions(t *testing.T) {
	assert.Equal(t, []Transition{SignContract, VerifySignature}, ContractActions(session.RoleCustomer, status.ContractPending))
	assert.Empty(t, ContractActions(session.RoleCustomer, 2))
	assert.Empty(t, ContractActions(session.RoleProvider, status.ContractPending))
}

func TestBookingActions(t *testing.T) {
	f := DeriveBookingFlags(Input{Status: status.BookingPending})
	assert.Equal(t, []Transition{ApproveBooking, RejectBooking}, BookingActions(session.RoleProvider, f))
	assert.Equal(t, []Transition{CancelBooking}, BookingActions(session.RoleCustomer, f))

	f = DeriveBookingFlags(Input{Status: status.BookingPlanning})
	assert.Equal(t, []Transition{PayCommitDeposit, CancelBooking}, BookingActions(session.RoleCustomer, f))

	f = DeriveBookingFlags(Input{Status: status.BookingCancelled})
	assert.Empty(t, BookingActions(session.RoleCustomer, f))

	f = DeriveBookingFlags(Input{Status: status.BookingFinalPaid, IsCommitDepositPaid: true})
	assert.Empty(t, BookingActions(session.RoleCustomer, f))
}

func TestParseTransition(t *testing.T) {
	for _, tr := range Transitions() {
		got, err := ParseTransition(string(tr))
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	_, err := ParseTransition("dropTable")
	assert.Error(t, err)
	assert.Len(t, Transitions(), 21)
}
