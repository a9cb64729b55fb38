package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"bookingflow/internal/lifecycle"
	"bookingflow/internal/status"
	"bookingflow/pkg/session"
)

// statustable prints the status registry and, for bookings, what the
// resolver shows each role at every status.
func main() {
	var (
		kind        = flag.String("kind", "booking", "entity kind: order, service, booking, quotation, contract")
		depositPaid = flag.Bool("commit-deposit-paid", true, "assume the commitment deposit is paid")
		quoted      = flag.Bool("quote-existed", true, "assume a quotation exists")
		tracked     = flag.Bool("tracked", false, "assume tracking entries exist")
	)
	flag.Parse()

	k, err := status.ParseKind(*kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if k != status.KindBooking {
		fmt.Fprintln(tw, "CODE\tLABEL\tCOLOR\tICON")
		for _, c := range status.Codes(k) {
			d := status.Resolve(k, c)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c, d.Label, d.Color, d.Icon)
		}
		return
	}

	fmt.Fprintln(tw, "CODE\tLABEL\tRULE\tMESSAGE\tACTION\tOVERLAY\tCUSTOMER\tPROVIDER")
	for _, c := range status.Codes(k) {
		f := lifecycle.DeriveBookingFlags(lifecycle.Input{
			Status:              c,
			IsCommitDepositPaid: *depositPaid,
			IsQuoteExisted:      *quoted,
			HasTrackingEntries:  *tracked,
		})
		p := lifecycle.ResolveBookingPresentation(f)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%v\t%v\n",
			c, status.Resolve(k, c).Label, p.Rule, p.Message, p.PrimaryAction, p.Overlay,
			lifecycle.BookingActions(session.RoleCustomer, f),
			lifecycle.BookingActions(session.RoleProvider, f))
	}
}
