package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	SheetProducts     = "Products"
	SheetTestimonials = "Testimonials"

	DefaultSheetBaseURL = "https://opensheet.elk.sh"

	maxSheetBody = 8 << 20
)

// SheetSource читает строки листа таблицы через JSON-прокси (opensheet)
type SheetSource struct {
	client  *http.Client
	baseURL string
	sheetID string
	maxBody int64
}

var _ RowSource = (*SheetSource)(nil)

// NewSheetSource returns a source for sheetID. A nil client gets a traced
// client on the default transport.
func NewSheetSource(client *http.Client, baseURL, sheetID string) *SheetSource {
	if client == nil {
		client = NewTracedHTTPClient(nil)
	}
	if baseURL == "" {
		baseURL = DefaultSheetBaseURL
	}
	return &SheetSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		sheetID: strings.TrimSpace(sheetID),
		maxBody: maxSheetBody,
	}
}

// NewTracedHTTPClient wraps base (or http.DefaultTransport) with otelhttp.
func NewTracedHTTPClient(base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{Transport: otelhttp.NewTransport(base)}
}

func (s *SheetSource) URL(sheet string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, url.PathEscape(s.sheetID), url.PathEscape(sheet))
}

// Rows issues one GET for sheet. A body that is not a JSON array yields
// ErrMalformedResponse; non-object elements of the array are skipped.
func (s *SheetSource) Rows(ctx context.Context, sheet string) ([]Row, error) {
	if s.sheetID == "" {
		return nil, &ConfigurationError{Key: "SHEET_ID"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(sheet), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{Sheet: sheet, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBody))
		return nil, &SourceUnavailableError{Sheet: sheet, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, &SourceUnavailableError{Sheet: sheet, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("%w: %s body exceeds %d bytes", ErrResponseTooLarge, sheet, s.maxBody)
	}
	return DecodeRows(body)
}

// DecodeRows parses a JSON array of row objects.
func DecodeRows(body []byte) ([]Row, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	rows := make([]Row, 0, len(raw))
	for _, item := range raw {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		rows = append(rows, Row(obj))
	}
	return rows, nil
}
