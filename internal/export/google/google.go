// Package google is the Google Sheets adapter for the export ports.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "organizador/internal/export"
	"organizador/internal/report"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	remindersSheet string
	reportsSheet   string
}

// Ensure interface conformance
var (
	_ ports.ReminderLogger = (*Client)(nil)
	_ ports.ReportWriter   = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from the environment.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// GOOGLE_APPLICATION_CREDENTIALS, or a pre-minted GOOGLE_OAUTH_TOKEN.
// Optional sheet names: GOOGLE_REMINDERS_SHEET_NAME (default "Reminders"),
// GOOGLE_REPORTS_SHEET_NAME (default "Reports").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	reminders := strings.TrimSpace(os.Getenv("GOOGLE_REMINDERS_SHEET_NAME"))
	if reminders == "" {
		reminders = "Reminders"
	}
	reports := strings.TrimSpace(os.Getenv("GOOGLE_REPORTS_SHEET_NAME"))
	if reports == "" {
		reports = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		remindersSheet: reminders,
		reportsSheet:   reports,
	}, nil
}

// newSheetsService initializes a Sheets service. A static OAuth token takes
// precedence so operators can mint one with oauth-init and avoid shipping
// service account keys to the worker host.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if token := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN")); token != "" {
		slog.InfoContext(ctx, "Using static OAuth token for Sheets")
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		svc, err := gsheet.NewService(ctx, goption.WithTokenSource(src))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return svc, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing credentials (set GOOGLE_OAUTH_TOKEN, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// LogReminder appends one reminder row to the reminders sheet.
func (c *Client) LogReminder(ctx context.Context, e ports.ReminderEntry) (string, error) {
	row := []any{
		e.SentAt.Format(time.RFC3339),
		e.BillID,
		e.Description,
		e.Amount,
		e.DueDate,
		e.DaysUntil,
	}
	return c.appendRow(ctx, c.remindersSheet, row)
}

// AppendSummary appends one report row per window: bounds, totals and the
// top expense category.
func (c *Client) AppendSummary(ctx context.Context, a report.Analysis) (string, error) {
	topCategory := ""
	if len(a.Categories) > 0 {
		topCategory = a.Categories[0].Category
	}
	row := []any{
		a.From.Format("2006-01-02"),
		a.To.Format("2006-01-02"),
		a.Income.String(),
		a.Expenses.String(),
		a.Investments.String(),
		a.Balance.String(),
		topCategory,
	}
	return c.appendRow(ctx, c.reportsSheet, row)
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return fmt.Sprintf("%s!A:A", sheet), nil
}
