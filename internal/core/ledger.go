package core

import (
	"fmt"
	"slices"
)

// SortByDateDesc orders transactions most recent first. The sort is stable so
// transactions sharing a date keep their fetch order.
func SortByDateDesc(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
}

// Balance sums every amount in cents. It fails with ErrBalanceOverflow
// instead of wrapping.
func Balance(txs []Transaction) (Money, error) {
	var total Money
	for i, t := range txs {
		var err error
		if total, err = total.Add(t.Amount); err != nil {
			return Money{}, fmt.Errorf("sum transaction %d: %w", i, err)
		}
	}
	return total, nil
}

// NewLedger sorts the aggregate in place and computes its balance.
func NewLedger(txs []Transaction, totalCount, pages int) (Ledger, error) {
	balance, err := Balance(txs)
	if err != nil {
		return Ledger{}, err
	}
	SortByDateDesc(txs)
	return Ledger{
		Transactions: txs,
		Balance:      balance,
		TotalCount:   totalCount,
		PagesFetched: pages,
	}, nil
}
