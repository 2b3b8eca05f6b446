package exports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"opsboard/internal/core"
	"opsboard/internal/finance"
	"opsboard/internal/log"
)

// Credentials locate a Google service account key, or an OAuth client plus
// a saved user token. The service account wins when both are set, and JSON
// wins over File.
type Credentials struct {
	JSON string
	File string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		b, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// SheetsSource reads one tab per export from a spreadsheet. The first row of
// each tab holds the field names.
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

var _ finance.Source = (*SheetsSource)(nil)

func NewSheetsSource(ctx context.Context, spreadsheetID string, creds Credentials, logger *log.Logger) (*SheetsSource, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger = log.OrDefault(logger, log.ComponentExports)

	auth, err := creds.clientOption(ctx, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, auth, goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets export source ready", "spreadsheet_id", spreadsheetID)
	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// Fetch reads the four tabs concurrently. A tab that does not exist is an empty array.
func (s *SheetsSource) Fetch(ctx context.Context) (finance.Dataset, error) {
	return fetchAll(ctx, s.readTab)
}

func (s *SheetsSource) readTab(ctx context.Context, tab string) ([]core.Record, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, tab).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			s.logger.WarnContext(ctx, "Export tab not readable, using empty array",
				"tab", tab, log.FieldError, err)
			return []core.Record{}, nil
		}
		return nil, fmt.Errorf("read tab %s: %w", tab, err)
	}
	return rowsToRecords(resp.Values), nil
}

// rowsToRecords maps a values matrix to records keyed by the header row.
// Columns with a blank header and rows with no values are skipped.
func rowsToRecords(values [][]any) []core.Record {
	out := []core.Record{}
	if len(values) == 0 {
		return out
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(core.ToString(h))
	}

	for _, row := range values[1:] {
		rec := core.Record{}
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if s, ok := cell.(string); ok {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				cell = s
			}
			rec[headers[i]] = cell
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}
