package status

import (
	"fmt"
	"sort"
	"strings"
)

type EntityKind string

const (
	KindOrder     EntityKind = "order"
	KindService   EntityKind = "service"
	KindBooking   EntityKind = "booking"
	KindQuotation EntityKind = "quotation"
	KindContract  EntityKind = "contract"
)

func ParseKind(s string) (EntityKind, error) {
	switch k := EntityKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindOrder, KindService, KindBooking, KindQuotation, KindContract:
		return k, nil
	default:
		return "", fmt.Errorf("unknown entity kind: %s", s)
	}
}

// Booking status codes. These are wire values shared with the backend.
const (
	BookingPending       = 0
	BookingPlanning      = 1
	BookingQuoting       = 2
	BookingContracting   = 3
	BookingConfirmed     = 4
	BookingDepositPaid   = 5
	BookingPreparing     = 6
	BookingInTransit     = 7
	BookingProgressing   = 8
	BookingAllDone       = 9
	BookingFinalPaid     = 10
	BookingCompleted     = 11
	BookingPendingCancel = 12
	BookingCancelled     = 13
	BookingRejected      = 14
)

const (
	QuotationPending       = 0
	QuotationConfirmed     = 1
	QuotationPendingChange = 2
	QuotationPendingCancel = 3
	QuotationClosed        = 4
)

// Contract code 2 is not assigned.
const (
	ContractPending       = 0
	ContractSigned        = 1
	ContractPendingCancel = 3
	ContractCancelled     = 4
)

const (
	OrderPending   = 0
	OrderPaid      = 1
	OrderCancelled = 2
)

const (
	ServiceIncoming  = 0
	ServiceAvailable = 1
	ServiceDisabled  = 2
)

type Descriptor struct {
	Label    string `json:"label"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Animated bool   `json:"animated,omitempty"`
	Known    bool   `json:"known"`
}

// Unknown is returned for any kind/code pair missing from the registry.
var Unknown = Descriptor{Label: "Unknown", Color: "gray", Icon: "question"}

func d(label, color, icon string) Descriptor {
	return Descriptor{Label: label, Color: color, Icon: icon, Known: true}
}

func animated(label, color, icon string) Descriptor {
	return Descriptor{Label: label, Color: color, Icon: icon, Animated: true, Known: true}
}

var registry = map[EntityKind]map[int]Descriptor{
	KindBooking: {
		BookingPending:       d("Pending", "yellow", "hourglass"),
		BookingPlanning:      d("Planning", "blue", "clipboard"),
		BookingQuoting:       d("Quoting", "indigo", "receipt"),
		BookingContracting:   d("Contracting", "purple", "file-signature"),
		BookingConfirmed:     d("Confirmed", "teal", "check-circle"),
		BookingDepositPaid:   d("Deposit Paid", "green", "wallet"),
		BookingPreparing:     d("Preparing", "cyan", "box"),
		BookingInTransit:     animated("In Transit", "cyan", "truck"),
		BookingProgressing:   animated("Progressing", "blue", "hammer"),
		BookingAllDone:       d("All Done", "lime", "flag-checkered"),
		BookingFinalPaid:     d("Final Paid", "green", "money-check"),
		BookingCompleted:     d("Completed", "green", "trophy"),
		BookingPendingCancel: animated("Pending Cancel", "orange", "ban"),
		BookingCancelled:     d("Cancelled", "red", "times-circle"),
		BookingRejected:      d("Rejected", "red", "thumbs-down"),
	},
	KindQuotation: {
		QuotationPending:       d("Pending", "yellow", "hourglass"),
		QuotationConfirmed:     d("Confirmed", "green", "check-circle"),
		QuotationPendingChange: animated("Pending Change", "orange", "pen"),
		QuotationPendingCancel: animated("Pending Cancel", "orange", "ban"),
		QuotationClosed:        d("Closed", "gray", "lock"),
	},
	KindContract: {
		ContractPending:       d("Pending", "yellow", "hourglass"),
		ContractSigned:        d("Signed", "green", "file-signature"),
		ContractPendingCancel: animated("Pending Cancel", "orange", "ban"),
		ContractCancelled:     d("Cancelled", "red", "times-circle"),
	},
	KindOrder: {
		OrderPending:   d("Pending", "yellow", "hourglass"),
		OrderPaid:      d("Paid", "green", "money-check"),
		OrderCancelled: d("Cancelled", "red", "times-circle"),
	},
	KindService: {
		ServiceIncoming:  d("Incoming", "blue", "calendar"),
		ServiceAvailable: d("Available", "green", "check-circle"),
		ServiceDisabled:  d("Disabled", "gray", "eye-slash"),
	},
}

// Resolve returns display metadata for a status code. The backend may add codes
// before clients learn about them, so misses return Unknown.
func Resolve(kind EntityKind, code int) Descriptor {
	m, ok := registry[kind]
	if !ok {
		return Unknown
	}
	desc, ok := m[code]
	if !ok {
		return Unknown
	}
	return desc
}

// Codes lists the registered codes for kind in ascending order.
func Codes(kind EntityKind) []int {
	m := registry[kind]
	out := make([]int, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func Kinds() []EntityKind {
	return []EntityKind{KindOrder, KindService, KindBooking, KindQuotation, KindContract}
}
