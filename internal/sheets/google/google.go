package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"taxiledger/internal/core"
	"taxiledger/internal/export"
	ports "taxiledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// summaryColumns bounds the cleared block; SummaryRows never uses more.
const summaryColumns = "H"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// summaryBase is the sheet name without year (e.g. "월별요약"); the year of
	// the summarised month is prefixed.
	summaryBase string
}

var _ ports.SummaryWriter = (*Client)(nil)

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, spreadsheetID, summaryBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(summaryBase) == "" {
		summaryBase = "Summary"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, summaryBase: summaryBase}, nil
}

// newSheetsService reads service account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		raw, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

// WriteMonthSummary replaces the summary block of the month's yearly sheet.
func (c *Client) WriteMonthSummary(ctx context.Context, ms core.MonthlySummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet, err := c.sheetFor(ms.Month)
	if err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:%s", sheet, summaryColumns)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	vr := &gsheet.ValueRange{Values: cellValues(export.SummaryRows(ms))}
	rng := fmt.Sprintf("%s!A1", sheet)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Month summary written to Google Sheets",
		"month", ms.Month,
		"sheet", sheet,
		"rows", len(vr.Values))
	return nil
}

func (c *Client) sheetFor(month string) (string, error) {
	if err := core.ValidateMonth(month); err != nil {
		return "", err
	}
	year, _ := strconv.Atoi(month[:4])
	return yearPrefixedName(c.summaryBase, year), nil
}

// cellValues converts a summary grid to what the Sheets API accepts: whole
// numbers stay numeric, empty rows become a single blank cell so the row is
// kept.
func cellValues(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			out[i] = []any{""}
			continue
		}
		cells := make([]any, len(row))
		for j, v := range row {
			switch x := v.(type) {
			case int64:
				cells[j] = x
			case int:
				cells[j] = int64(x)
			case float64:
				cells[j] = strconv.FormatFloat(x, 'f', -1, 64)
			default:
				cells[j] = fmt.Sprint(x)
			}
		}
		out[i] = cells
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
