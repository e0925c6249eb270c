package render

import (
	"fmt"
	"html/template"
	"io"

	"ledgerfetch/internal/core"
	appweb "ledgerfetch/web"
)

// HTML renders the ledger page from the embedded template.
type HTML struct {
	tmpl *template.Template
}

// ledgerPage is the template model. Error is set instead of Rows when the
// collection failed.
type ledgerPage struct {
	Title    string
	Rows     []Row
	Count    int
	Total    string
	Negative bool
	Error    string
}

func NewHTML() (*HTML, error) {
	tmpl, err := template.ParseFS(appweb.TemplatesFS, "templates/ledger.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

func (*HTML) ContentType() string { return "text/html; charset=utf-8" }

func (h *HTML) Render(w io.Writer, l core.Ledger) error {
	return h.execute(w, ledgerPage{
		Title:    "Transactions",
		Rows:     Rows(l),
		Count:    l.Len(),
		Total:    FormatCurrency(l.Balance),
		Negative: l.Balance.IsNegative(),
	})
}

// RenderError renders the page with an error banner and no table.
func (h *HTML) RenderError(w io.Writer, cause error) error {
	return h.execute(w, ledgerPage{
		Title: "Transactions",
		Error: cause.Error(),
	})
}

func (h *HTML) execute(w io.Writer, page ledgerPage) error {
	if err := h.tmpl.ExecuteTemplate(w, "ledger.html", page); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}
