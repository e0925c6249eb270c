package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry as returned by the transactions API.
	Transaction struct {
		Date    Date   `json:"Date"`
		Company string `json:"Company"`
		Ledger  string `json:"Ledger"`
		Amount  Money  `json:"Amount"`
	}

	// Page is one response unit of the paginated transactions API.
	Page struct {
		Transactions []Transaction `json:"transactions"`
		TotalCount   int           `json:"totalCount"`
	}

	// Ledger is the finished aggregation: every fetched transaction sorted by
	// date descending, plus the balance across all of them.
	Ledger struct {
		Transactions []Transaction
		Balance      Money
		TotalCount   int
		PagesFetched int
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrBalanceOverflow = errors.New("balance exceeds representable range")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String returns the date in YYYY-MM-DD format.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Len returns the number of transactions in the ledger.
func (l Ledger) Len() int {
	return len(l.Transactions)
}
