// Package render turns a collected ledger into something people can read.
// Renderers only consume core.Ledger; they never fetch.
package render

import (
	"fmt"
	"io"
	"slices"

	"ledgerfetch/internal/core"
)

// Renderer writes a ledger to a presentation surface.
type Renderer interface {
	Render(w io.Writer, l core.Ledger) error
	ContentType() string
}

// Formats lists the names accepted by ByName.
var Formats = []string{"table", "json", "html"}

// ByName returns the renderer registered under name.
func ByName(name string) (Renderer, error) {
	switch name {
	case "table":
		return Table{}, nil
	case "json":
		return JSON{Indent: "  "}, nil
	case "html":
		return NewHTML()
	default:
		return nil, fmt.Errorf("unknown format %q: must be one of %v", name, slices.Clone(Formats))
	}
}

// Row is one formatted transaction.
type Row struct {
	Date     string
	Company  string
	Ledger   string
	Amount   string
	Negative bool
}

// Rows formats every transaction in ledger order.
func Rows(l core.Ledger) []Row {
	rows := make([]Row, 0, len(l.Transactions))
	for _, t := range l.Transactions {
		rows = append(rows, Row{
			Date:     FormatDate(t.Date),
			Company:  t.Company,
			Ledger:   t.Ledger,
			Amount:   FormatCurrency(t.Amount),
			Negative: t.Amount.IsNegative(),
		})
	}
	return rows
}
