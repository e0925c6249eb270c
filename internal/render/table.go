package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"ledgerfetch/internal/core"
)

// Table renders an aligned plain-text table for terminals.
type Table struct{}

func (Table) ContentType() string { return "text/plain; charset=utf-8" }

func (Table) Render(w io.Writer, l core.Ledger) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "DATE\tCOMPANY\tACCOUNT\tAMOUNT\t")
	for _, r := range Rows(l) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Date, r.Company, r.Ledger, r.Amount)
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%s\t\n", FormatCurrency(l.Balance))

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}
