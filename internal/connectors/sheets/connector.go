package sheets

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"startupmap/internal"
	"startupmap/internal/config"
	"startupmap/internal/pipeline"
)

// Connector reads the dataset from a Google Sheets range. The first row of the
// range holds dotted field paths, one record per following row.
type Connector struct {
	service       *sheetsapi.Service
	spreadsheetID string
	readRange     string
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	required := [][2]string{
		{"SHEETS_CLIENT_ID", cfg.SheetsClientID},
		{"SHEETS_CLIENT_SECRET", cfg.SheetsClientSecret},
		{"SHEETS_REFRESH_TOKEN", cfg.SheetsRefreshToken},
		{"SHEETS_SPREADSHEET_ID", cfg.SheetsSpreadsheetID},
	}
	for _, r := range required {
		if err := cfg.Require(r[0], r[1]); err != nil {
			return nil, err
		}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.SheetsClientID,
		ClientSecret: cfg.SheetsClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.SheetsRedirectURI,
		Scopes:       []string{sheetsapi.SpreadsheetsReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.SheetsRefreshToken})
	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{service: svc, spreadsheetID: cfg.SheetsSpreadsheetID, readRange: cfg.SheetsRange}, nil
}

func (c *Connector) Name() string {
	return fmt.Sprintf("sheets:%s!%s", c.spreadsheetID, c.readRange)
}

func (c *Connector) Fetch(ctx context.Context) ([]internal.RawRecord, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return RecordsFromValues(resp.Values), nil
}

// RecordsFromValues converts a values grid into raw records.
func RecordsFromValues(values [][]interface{}) []internal.RawRecord {
	if len(values) < 2 {
		return []internal.RawRecord{}
	}
	return pipeline.RecordsFromRows(cellStrings(values[0]), gridStrings(values[1:]))
}

func gridStrings(rows [][]interface{}) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, cellStrings(row))
	}
	return out
}

func cellStrings(row []interface{}) []string {
	out := make([]string, 0, len(row))
	for _, cell := range row {
		switch v := cell.(type) {
		case nil:
			out = append(out, "")
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
