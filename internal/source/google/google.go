// Package google loads the record table from a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"typhoondash/internal/core"
	"typhoondash/internal/source"
)

// DefaultRange covers the five record columns of the first sheet.
const DefaultRange = "Sheet1!A1:E"

// Config selects the spreadsheet and credentials.
type Config struct {
	SpreadsheetID string
	Range         string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// valuesReader abstracts the Sheets values endpoint.
type valuesReader interface {
	ReadValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

// Client loads records from a spreadsheet range.
type Client struct {
	values        valuesReader
	spreadsheetID string
	rng           string
}

var _ source.Loader = (*Client)(nil)

// New creates a Sheets-backed loader authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(serviceReader{svc: svc}, cfg), nil
}

func newClient(values valuesReader, cfg Config) *Client {
	rng := strings.TrimSpace(cfg.Range)
	if rng == "" {
		rng = DefaultRange
	}
	return &Client{values: values, spreadsheetID: cfg.SpreadsheetID, rng: rng}
}

// Name implements source.Loader.
func (c *Client) Name() string { return "sheets" }

// Load implements source.Loader.
func (c *Client) Load(ctx context.Context) ([]core.YearRecord, error) {
	values, err := c.values.ReadValues(ctx, c.spreadsheetID, c.rng)
	if err != nil {
		return nil, fmt.Errorf("%w: read range %s: %v", source.ErrDataUnavailable, c.rng, err)
	}
	records, err := source.ParseRows(toRows(values))
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", c.rng, err)
	}
	slog.DebugContext(ctx, "Loaded records from Google Sheets", "range", c.rng, "records", len(records))
	return records, nil
}

func toRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return rows
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

type serviceReader struct {
	svc *gsheet.Service
}

func (s serviceReader) ReadValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// newSheetsService initializes a read-only Sheets service using service
// account credentials, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service", "scope", gsheet.SpreadsheetsReadonlyScope)
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}
