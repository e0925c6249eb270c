package amqp

import (
	"encoding/json"
	"time"

	"ledgerfetch/internal/core"
)

// LedgerCollectedMessage announces a finished aggregation run. It carries the
// summary only; consumers that need the rows read them from an export.
type LedgerCollectedMessage struct {
	TotalCount   int       `json:"totalCount"`
	Transactions int       `json:"transactions"`
	PagesFetched int       `json:"pagesFetched"`
	BalanceCents int64     `json:"balanceCents"`
	Balance      string    `json:"balance"`
	Newest       string    `json:"newest,omitempty"`
	Oldest       string    `json:"oldest,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewLedgerCollectedMessage summarises a sorted ledger.
func NewLedgerCollectedMessage(l core.Ledger) *LedgerCollectedMessage {
	msg := &LedgerCollectedMessage{
		TotalCount:   l.TotalCount,
		Transactions: l.Len(),
		PagesFetched: l.PagesFetched,
		BalanceCents: l.Balance.Cents,
		Balance:      l.Balance.String(),
		Timestamp:    time.Now().UTC(),
	}
	if n := l.Len(); n > 0 {
		msg.Newest = l.Transactions[0].Date.String()
		msg.Oldest = l.Transactions[n-1].Date.String()
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *LedgerCollectedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerCollectedMessageFromJSON creates a message from JSON bytes
func LedgerCollectedMessageFromJSON(data []byte) (*LedgerCollectedMessage, error) {
	var msg LedgerCollectedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
