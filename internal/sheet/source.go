package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxBodyBytes        = 10 << 20
	userAgent           = "phreshfoods-directory/1.0"
)

// ErrEmptyEndpoint is returned when a source is built without a location to fetch from.
var ErrEmptyEndpoint = errors.New("sheet endpoint must not be empty")

// Source retrieves the current set of directory records.
type Source interface {
	Fetch(ctx context.Context) ([]entity.Business, error)
}

// HTTPClient abstracts HTTP requests to simplify testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource downloads a published spreadsheet CSV export, optionally through
// a CORS relay that takes the target URL as an escaped suffix.
type HTTPSource struct {
	client   HTTPClient
	csvURL   string
	proxyURL string
	parser   *Parser
}

// NewHTTPSource builds a CSV source. A nil client gets a default timeout and a
// nil parser uses the package defaults.
func NewHTTPSource(client HTTPClient, csvURL, proxyURL string, parser *Parser) (*HTTPSource, error) {
	csvURL = strings.TrimSpace(csvURL)
	if csvURL == "" {
		return nil, ErrEmptyEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if parser == nil {
		parser = defaultParser
	}
	return &HTTPSource{
		client:   client,
		csvURL:   csvURL,
		proxyURL: strings.TrimSpace(proxyURL),
		parser:   parser,
	}, nil
}

// Endpoint returns the URL actually requested, including the relay prefix.
func (s *HTTPSource) Endpoint() string {
	if s.proxyURL == "" {
		return s.csvURL
	}
	return s.proxyURL + url.QueryEscape(s.csvURL)
}

// Fetch downloads and parses the sheet.
func (s *HTTPSource) Fetch(ctx context.Context) ([]entity.Business, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("sheet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sheet endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read sheet body: %w", err)
	}
	return s.parser.Parse(string(body)), nil
}

// SheetsSource reads a range through the Google Sheets API.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	parser        *Parser
}

// NewSheetsSource builds a Sheets API source authenticated with an API key.
// Extra client options are appended after the key.
func NewSheetsSource(ctx context.Context, apiKey, spreadsheetID, readRange string, parser *Parser, opts ...option.ClientOption) (*SheetsSource, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, ErrEmptyEndpoint
	}
	if strings.TrimSpace(readRange) == "" {
		readRange = "A:Z"
	}
	if parser == nil {
		parser = defaultParser
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSource{
		service:       service,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		parser:        parser,
	}, nil
}

// Fetch reads the configured range and parses it.
func (s *SheetsSource) Fetch(ctx context.Context) ([]entity.Business, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet values: %w", err)
	}
	return s.parser.ParseRows(stringRows(resp.Values)), nil
}

func stringRows(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, raw := range values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Source = (*SheetsSource)(nil)
)
