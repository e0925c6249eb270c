package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ledgerfetch/internal/core"
)

// Header is the first row written to the sheet.
var Header = []any{"Date", "Company", "Account", "Amount"}

// SheetExporter replaces the contents of one sheet with the latest ledger.
type SheetExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Credentials selects how the Sheets service authenticates. JSON wins over File.
type Credentials struct {
	JSON []byte
	File string
}

// NewSheetExporter creates an exporter authenticated with a service account.
func NewSheetExporter(ctx context.Context, spreadsheetID, sheetName string, creds Credentials, opts ...goption.ClientOption) (*SheetExporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx, creds, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetExporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService builds the Sheets API client. Extra options (endpoint,
// HTTP client) are appended after the credentials.
func newSheetsService(ctx context.Context, creds Credentials, extra ...goption.ClientOption) (*gsheet.Service, error) {
	credentialsJSON := creds.JSON
	if len(credentialsJSON) == 0 && creds.File != "" {
		slog.InfoContext(ctx, "Reading credentials from file", "path", creds.File)
		data, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	}

	var opts []goption.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	} else if len(extra) == 0 {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	opts = append(opts, extra...)

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (e *SheetExporter) Name() string { return "sheets" }

// Export clears the sheet and writes header, one row per transaction and a
// closing balance row. Values are written RAW so text from the API is never
// evaluated as a formula.
func (e *SheetExporter) Export(ctx context.Context, l core.Ledger) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:D", e.sheetName)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rows := BuildRows(l)
	writeRange := fmt.Sprintf("%s!A1:D%d", e.sheetName, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", writeRange, err)
	}

	slog.InfoContext(ctx, "Ledger exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"range", writeRange,
		"transactions", l.Len())
	return nil
}

// BuildRows lays the ledger out as sheet values. Text cells are copied as-is
// and amounts are numbers, so the sheet can sum them without parsing.
func BuildRows(l core.Ledger) [][]any {
	rows := make([][]any, 0, len(l.Transactions)+2)
	rows = append(rows, Header)
	for _, t := range l.Transactions {
		rows = append(rows, []any{t.Date.String(), t.Company, t.Ledger, amountCell(t.Amount)})
	}
	rows = append(rows, []any{"", "", "Balance", amountCell(l.Balance)})
	return rows
}

func amountCell(m core.Money) float64 {
	return m.Decimal().InexactFloat64()
}
