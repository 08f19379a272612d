package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"ledger/internal/core"
	"ledger/internal/forecast"
	ports "ledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Default tab names.
const (
	DefaultTransactionsSheet = "Transactions"
	DefaultProjectionSheet   = "Projection"
	DefaultAccountsSheet     = "Accounts"
)

var errNoService = errors.New("sheets service not initialized")

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	projectionSheet   string
	accountsSheet     string

	mu       sync.Mutex
	sheetIDs map[string]int64 // tab title -> numeric sheet id
}

// Ensure interface conformance
var (
	_ ports.TransactionWriter  = (*Client)(nil)
	_ ports.TransactionLister  = (*Client)(nil)
	_ ports.TransactionDeleter = (*Client)(nil)
	_ ports.AccountReader      = (*Client)(nil)
	_ ports.SeriesWriter       = (*Client)(nil)
)

// Options names the spreadsheet and its tabs. Empty tab names use the
// defaults.
type Options struct {
	SpreadsheetID     string
	TransactionsSheet string
	ProjectionSheet   string
	AccountsSheet     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, opts), nil
}

func newClient(svc *gsheet.Service, opts Options) *Client {
	return &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(opts.SpreadsheetID),
		transactionsSheet: orDefault(opts.TransactionsSheet, DefaultTransactionsSheet),
		projectionSheet:   orDefault(opts.ProjectionSheet, DefaultProjectionSheet),
		accountsSheet:     orDefault(opts.AccountsSheet, DefaultAccountsSheet),
		sheetIDs:          map[string]int64{},
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// Append adds tx as a new row of the transactions tab and returns the
// updated range.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errNoService
	}

	rng := fmt.Sprintf("%s!A:D", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: [][]interface{}{transactionRow(tx)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.transactionsSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Transaction appended to Google Sheets", "id", tx.ID, "range", ref)
	return ref, nil
}

// ListTransactions reads the whole transactions tab and keeps the rows dated
// in [from, to]. Rows that cannot be parsed are skipped and logged.
func (c *Client) ListTransactions(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	values, err := c.readTransactions(ctx)
	if err != nil {
		return nil, err
	}

	txs, skipped := parseTransactions(values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped unreadable transaction rows", "sheet", c.transactionsSheet, "count", skipped)
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(from.Time) || tx.Date.After(to.Time) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

// DeleteTransaction removes the row carrying id in the ID column.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.DeleteTransactionRow(ctx, core.Transaction{ID: id})
}

// DeleteTransactionRow removes the row matching tx. Rows are matched by ID
// when tx has one, otherwise by date, description and amount.
func (c *Client) DeleteTransactionRow(ctx context.Context, tx core.Transaction) error {
	values, err := c.readTransactions(ctx)
	if err != nil {
		return err
	}
	row := findTransactionRow(values, tx)
	if row < 0 {
		slog.WarnContext(ctx, "Transaction row not found in Google Sheets", "id", tx.ID, "description", tx.Description)
		return nil
	}

	sheetID, err := c.sheetID(ctx, c.transactionsSheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(row),
			EndIndex:   int64(row) + 1,
			// Zero is a valid sheet id and row index.
			ForceSendFields: []string{"SheetId", "StartIndex"},
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row+1, c.transactionsSheet, err)
	}

	slog.InfoContext(ctx, "Transaction deleted from Google Sheets", "id", tx.ID, "row", row+1)
	return nil
}

// ListAccounts reads the accounts tab (Name | Number | Balance).
func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	if c.svc == nil {
		return nil, errNoService
	}
	rng := fmt.Sprintf("%s!A:C", c.accountsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseAccounts(resp.Values), nil
}

// WriteSeries replaces the projection tab with the given series.
func (c *Client) WriteSeries(ctx context.Context, points []forecast.SeriesPoint) error {
	if c.svc == nil {
		return errNoService
	}

	rng := fmt.Sprintf("%s!A:C", c.projectionSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	vr := &gsheet.ValueRange{Values: seriesValues(points)}
	start := fmt.Sprintf("%s!A1", c.projectionSheet)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, start, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", start, err)
	}

	slog.InfoContext(ctx, "Balance series exported to Google Sheets", "sheet", c.projectionSheet, "points", len(points))
	return nil
}

func (c *Client) readTransactions(ctx context.Context) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errNoService
	}
	rng := fmt.Sprintf("%s!A:D", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// sheetID resolves and caches the numeric id of a tab.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
