package lifecycle

import "bookingflow/internal/status"

// Input is the booking snapshot the flags are derived from. HasTrackingEntries
// must come from the tracking feed itself; it is never inferred from Status.
type Input struct {
	Status              int
	IsCommitDepositPaid bool
	IsQuoteExisted      bool
	IsContractExisted   bool
	HasTerminated       bool
	IsReviewed          bool
	HasTrackingEntries  bool
}

// Flags are independent booleans; several can be true at once
// (IsCompleted and IsReviewed, for example).
type Flags struct {
	Status int `json:"status"`

	IsPending       bool `json:"isPending"`
	IsPlanning      bool `json:"isPlanning"`
	IsQuoting       bool `json:"isQuoting"`
	IsContracting   bool `json:"isContracting"`
	IsSigned        bool `json:"isSigned"`
	IsDepositPaid   bool `json:"isDepositPaid"`
	IsPreparing     bool `json:"isPreparing"`
	IsInTransit     bool `json:"isInTransit"`
	IsProgressing   bool `json:"isProgressing"`
	IsAllDone       bool `json:"isAllDone"`
	IsFinalPaid     bool `json:"isFinalPaid"`
	IsCompleted     bool `json:"isCompleted"`
	IsPendingCancel bool `json:"isPendingCancel"`
	IsCancelled     bool `json:"isCancelled"`
	IsRejected      bool `json:"isRejected"`
	IsTracked       bool `json:"isTracked"`

	IsCommitDepositPaid bool `json:"isCommitDepositPaid"`
	IsQuoteExisted      bool `json:"isQuoteExisted"`
	IsContractExisted   bool `json:"isContractExisted"`
	HasTerminated       bool `json:"hasTerminated"`
	IsReviewed          bool `json:"isReviewed"`
}

func DeriveBookingFlags(in Input) Flags {
	s := in.Status
	return Flags{
		Status: s,

		IsPending:       s == status.BookingPending,
		IsPlanning:      s == status.BookingPlanning,
		IsQuoting:       s == status.BookingQuoting,
		IsContracting:   s == status.BookingContracting,
		IsSigned:        s == status.BookingConfirmed,
		IsDepositPaid:   s == status.BookingDepositPaid,
		IsPreparing:     s == status.BookingPreparing,
		IsInTransit:     s == status.BookingInTransit,
		IsProgressing:   s == status.BookingProgressing,
		IsAllDone:       s == status.BookingAllDone,
		IsFinalPaid:     s == status.BookingFinalPaid,
		IsCompleted:     s == status.BookingCompleted,
		IsPendingCancel: s == status.BookingPendingCancel,
		IsCancelled:     s == status.BookingCancelled,
		IsRejected:      s == status.BookingRejected,
		IsTracked:       in.HasTrackingEntries,

		IsCommitDepositPaid: in.IsCommitDepositPaid,
		IsQuoteExisted:      in.IsQuoteExisted,
		IsContractExisted:   in.IsContractExisted,
		HasTerminated:       in.HasTerminated,
		IsReviewed:          in.IsReviewed,
	}
}

// IsTerminal reports whether no further transitions can occur.
func (f Flags) IsTerminal() bool {
	return f.HasTerminated || f.IsCancelled || f.IsRejected
}
