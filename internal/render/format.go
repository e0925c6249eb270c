package render

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ledgerfetch/internal/core"
)

// DateLayout is how dates are shown to people ("Dec 22, 2013").
const DateLayout = "Jan 2, 2006"

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatDate formats a transaction date for display.
func FormatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// FormatCurrency formats cents as a dollar amount with digit grouping,
// e.g. "$5,518.00" or "-$110.71".
func FormatCurrency(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	whole := cents / 100
	frac := cents % 100
	if whole < 0 {
		whole = -whole
	}
	if frac < 0 {
		frac = -frac
	}
	return sign + "$" + printer.Sprintf("%d", whole) + fmt.Sprintf(".%02d", frac)
}
