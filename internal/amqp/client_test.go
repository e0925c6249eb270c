package amqp

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"ledgerfetch/internal/core"
)

type fakeChannel struct {
	exchange, key string
	published     []amqp091.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func ledger(t *testing.T) core.Ledger {
	t.Helper()
	l, err := core.NewLedger([]core.Transaction{
		{Date: core.NewDate(2013, 12, 12), Company: "a", Amount: core.Money{Cents: -500}},
		{Date: core.NewDate(2013, 12, 22), Company: "b", Amount: core.Money{Cents: 1250}},
	}, 2, 1)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func TestNewLedgerCollectedMessage(t *testing.T) {
	msg := NewLedgerCollectedMessage(ledger(t))
	if msg.Transactions != 2 || msg.TotalCount != 2 || msg.PagesFetched != 1 {
		t.Fatalf("unexpected counts: %+v", msg)
	}
	if msg.BalanceCents != 750 || msg.Balance != "7.50" {
		t.Fatalf("unexpected balance: %+v", msg)
	}
	if msg.Newest != "2013-12-22" || msg.Oldest != "2013-12-12" {
		t.Fatalf("unexpected range: %s..%s", msg.Oldest, msg.Newest)
	}

	empty := NewLedgerCollectedMessage(core.Ledger{})
	if empty.Newest != "" || empty.Oldest != "" {
		t.Fatalf("empty ledger should have no date range: %+v", empty)
	}
}

func TestClient_Export(t *testing.T) {
	ch := &fakeChannel{}
	c := &Client{channel: ch, exchangeName: "ledger", routingKey: "ledger.collected"}

	if err := c.Export(context.Background(), ledger(t)); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if ch.exchange != "ledger" || ch.key != "ledger.collected" {
		t.Fatalf("published to %s/%s", ch.exchange, ch.key)
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages", len(ch.published))
	}
	pub := ch.published[0]
	if pub.ContentType != "application/json" || pub.DeliveryMode != amqp091.Persistent {
		t.Fatalf("unexpected publishing: %+v", pub)
	}
	msg, err := LedgerCollectedMessageFromJSON(pub.Body)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if msg.BalanceCents != 750 {
		t.Fatalf("balance in body = %d", msg.BalanceCents)
	}

	if err := c.Close(); err != nil || !ch.closed {
		t.Fatalf("Close() err=%v closed=%v", err, ch.closed)
	}
}

func TestClient_ExportPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	c := &Client{channel: &fakeChannel{err: boom}, exchangeName: "ledger", routingKey: "k"}
	if err := c.Export(context.Background(), ledger(t)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}
