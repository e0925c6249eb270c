package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"ledgerfetch/internal/core"
	"ledgerfetch/internal/source/memory"
	"ledgerfetch/internal/source/rest"
)

func txn(day int, company string, cents int64) core.Transaction {
	return core.Transaction{
		Date:    core.NewDate(2013, 12, day),
		Company: company,
		Ledger:  "Office Expense",
		Amount:  core.Money{Cents: cents},
	}
}

func TestAggregator_CollectMultiplePages(t *testing.T) {
	store := memory.New(
		core.Page{TotalCount: 5, Transactions: []core.Transaction{txn(12, "t1", 100), txn(20, "t2", -50), txn(15, "t3", 25)}},
		core.Page{TotalCount: 5, Transactions: []core.Transaction{txn(22, "t4", 1000), txn(1, "t5", -1)}},
		core.Page{TotalCount: 5, Transactions: []core.Transaction{txn(2, "never", 1)}},
	)

	ledger, err := NewAggregator(store).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got := store.Requests(); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("requested pages %v, want [1 2]", got)
	}
	if ledger.Len() != 5 || ledger.TotalCount != 5 || ledger.PagesFetched != 2 {
		t.Fatalf("unexpected ledger: len=%d total=%d pages=%d", ledger.Len(), ledger.TotalCount, ledger.PagesFetched)
	}

	var order []string
	for _, tx := range ledger.Transactions {
		order = append(order, tx.Company)
	}
	if want := []string{"t4", "t2", "t3", "t1", "t5"}; !slices.Equal(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if ledger.Balance.Cents != 1074 {
		t.Fatalf("balance = %d, want 1074", ledger.Balance.Cents)
	}
}

func TestAggregator_FirstPageSatisfiesCount(t *testing.T) {
	store := memory.New(
		core.Page{TotalCount: 2, Transactions: []core.Transaction{txn(1, "a", 1), txn(2, "b", 2)}},
		core.Page{TotalCount: 2, Transactions: []core.Transaction{txn(3, "c", 3)}},
	)

	ledger, err := NewAggregator(store).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := store.Requests(); !slices.Equal(got, []int{1}) {
		t.Fatalf("requested pages %v, want [1]", got)
	}
	if ledger.Len() != 2 {
		t.Fatalf("len = %d, want 2", ledger.Len())
	}
}

func TestAggregator_EmptyResult(t *testing.T) {
	store := memory.New(core.Page{TotalCount: 0, Transactions: []core.Transaction{}})

	ledger, err := NewAggregator(store).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := store.Requests(); !slices.Equal(got, []int{1}) {
		t.Fatalf("requested pages %v, want [1]", got)
	}
	if ledger.Transactions == nil || ledger.Len() != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", ledger.Transactions)
	}
	if ledger.Balance.Cents != 0 {
		t.Fatalf("balance = %d, want 0", ledger.Balance.Cents)
	}
}

func TestAggregator_FetchErrorAborts(t *testing.T) {
	store := memory.New(
		core.Page{TotalCount: 5, Transactions: []core.Transaction{txn(1, "a", 1), txn(2, "b", 2), txn(3, "c", 3)}},
		core.Page{TotalCount: 5, Transactions: []core.Transaction{txn(4, "d", 4), txn(5, "e", 5)}},
	).FailOn(2, &rest.FetchError{Page: 2, StatusCode: http.StatusInternalServerError})

	ledger, err := NewAggregator(store).Collect(context.Background())

	var fe *rest.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *rest.FetchError, got %T (%v)", err, err)
	}
	if fe.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", fe.StatusCode)
	}
	if got, want := err.Error(), "fetch page 2: unexpected status 500"; got != want {
		t.Fatalf("error message = %q, want %q", got, want)
	}
	if ledger.Transactions != nil || ledger.Len() != 0 || ledger.Balance.Cents != 0 {
		t.Fatalf("partial ledger returned: %+v", ledger)
	}
}

func TestAggregator_NoProgress(t *testing.T) {
	store := memory.New(
		core.Page{TotalCount: 5, Transactions: []core.Transaction{txn(1, "a", 1)}},
		core.Page{TotalCount: 5, Transactions: []core.Transaction{}},
	)

	_, err := NewAggregator(store).Collect(context.Background())
	if !errors.Is(err, ErrNoProgress) {
		t.Fatalf("expected ErrNoProgress, got %v", err)
	}
}

func TestAggregator_BalanceOverflow(t *testing.T) {
	big := core.Money{Cents: 90_000_000_000_000_000}
	var txs []core.Transaction
	for i := 0; i < 110; i++ {
		txs = append(txs, core.Transaction{Date: core.NewDate(2013, 12, 1), Company: "big", Amount: big})
	}
	store := memory.New(core.Page{TotalCount: len(txs), Transactions: txs})

	ledger, err := NewAggregator(store).Collect(context.Background())
	if !errors.Is(err, core.ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	if ledger.Transactions != nil {
		t.Fatalf("partial ledger returned: %+v", ledger.Balance)
	}
}

func TestAggregator_MaxPages(t *testing.T) {
	var pages []core.Page
	for i := 1; i <= 10; i++ {
		pages = append(pages, core.Page{TotalCount: 100, Transactions: []core.Transaction{txn(i, fmt.Sprint(i), 1)}})
	}
	store := memory.New(pages...)

	_, err := NewAggregator(store, WithMaxPages(3)).Collect(context.Background())
	if !errors.Is(err, ErrTooManyPages) {
		t.Fatalf("expected ErrTooManyPages, got %v", err)
	}
	if got := store.Requests(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("requested pages %v, want [1 2 3]", got)
	}
}

func TestAggregator_TotalCountReReadEachPage(t *testing.T) {
	store := memory.New(
		core.Page{TotalCount: 10, Transactions: []core.Transaction{txn(1, "a", 1), txn(2, "b", 2)}},
		core.Page{TotalCount: 3, Transactions: []core.Transaction{txn(3, "c", 3)}},
		core.Page{TotalCount: 3, Transactions: []core.Transaction{txn(4, "d", 4)}},
	)

	ledger, err := NewAggregator(store).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if ledger.Len() != 3 || ledger.TotalCount != 3 {
		t.Fatalf("len=%d total=%d, want 3/3", ledger.Len(), ledger.TotalCount)
	}
}

func TestAggregator_CancelledContext(t *testing.T) {
	store := memory.New(core.Page{TotalCount: 0})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewAggregator(store).Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAggregator_OverHTTP(t *testing.T) {
	pages := map[string]string{
		"/transactions/1.json": `{"totalCount":3,"page":1,"transactions":[
			{"Date":"2013-12-22","Ledger":"Phone & Internet Expense","Amount":"-110.71","Company":"SHAW CABLESYSTEMS CALGARY AB"},
			{"Date":"2013-12-21","Ledger":"Travel Expense, Nonlocal","Amount":"-8.1","Company":"BLACK TOP CABS VANCOUVER BC"}]}`,
		"/transactions/2.json": `{"totalCount":3,"page":2,"transactions":[
			{"Date":"2013-12-23","Ledger":"","Amount":"5518","Company":"PAYMENT RECEIVED"}]}`,
	}
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	ledger, err := NewAggregator(rest.NewClient(srv.URL + "/transactions/")).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("server hits = %v, want 2", hits)
	}
	if ledger.Transactions[0].Company != "PAYMENT RECEIVED" {
		t.Fatalf("newest first expected, got %s", ledger.Transactions[0].Company)
	}
	if ledger.Balance.Cents != 551800-11071-810 {
		t.Fatalf("balance = %d", ledger.Balance.Cents)
	}
}

func TestAggregator_OverHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1.json" {
			w.Write([]byte(`{"totalCount":5,"transactions":[{"Date":"2013-12-22","Amount":"1","Company":"a","Ledger":""}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ledger, err := NewAggregator(rest.NewClient(srv.URL + "/")).Collect(context.Background())
	var fe *rest.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 500 || fe.Page != 2 {
		t.Fatalf("expected FetchError(500) on page 2, got %v", err)
	}
	if ledger.Len() != 0 {
		t.Fatalf("partial ledger returned")
	}
}
