package render

import (
	"encoding/json"
	"fmt"
	"io"

	"ledgerfetch/internal/core"
)

// JSON renders the ledger as a JSON document. Amounts are decimal strings.
type JSON struct {
	Indent string
}

type jsonLedger struct {
	Transactions []core.Transaction `json:"transactions"`
	Balance      core.Money         `json:"balance"`
	TotalCount   int                `json:"totalCount"`
	PagesFetched int                `json:"pagesFetched"`
}

func (JSON) ContentType() string { return "application/json" }

func (j JSON) Render(w io.Writer, l core.Ledger) error {
	txs := l.Transactions
	if txs == nil {
		txs = []core.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", j.Indent)
	if err := enc.Encode(jsonLedger{
		Transactions: txs,
		Balance:      l.Balance,
		TotalCount:   l.TotalCount,
		PagesFetched: l.PagesFetched,
	}); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return nil
}
