package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/JonMunkholm/proker/internal/csvparse"
)

// DefaultMaxBodySize caps a single sheet export (10MB).
const DefaultMaxBodySize = 10 << 20

// Fetcher retrieves the raw CSV export of a sheet.
type Fetcher interface {
	Fetch(ctx context.Context, sheet Sheet) (string, error)
}

// HTTPFetcher downloads sheets from a published-CSV endpoint, for example
// https://docs.google.com/spreadsheets/d/e/<id>/pub?output=csv.
type HTTPFetcher struct {
	BaseURL     string
	Client      *http.Client
	MaxBodySize int64
}

// NewHTTPFetcher creates a fetcher with its own client and timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL:     baseURL,
		Client:      &http.Client{Timeout: timeout},
		MaxBodySize: DefaultMaxBodySize,
	}
}

// SheetURL returns the export URL of a sheet: the base URL with a gid
// parameter when the sheet has one.
func SheetURL(baseURL string, sheet Sheet) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid sheet base url: %w", err)
	}
	if sheet.GID == "" {
		return u.String(), nil
	}
	q := u.Query()
	q.Set("gid", sheet.GID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch GETs the sheet export and returns the decoded body. Non-2xx
// responses are reported with the sheet name and HTTP status.
func (f *HTTPFetcher) Fetch(ctx context.Context, sheet Sheet) (string, error) {
	target, err := SheetURL(f.BaseURL, sheet)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", sheet.Name, err)
	}
	req.Header.Set("Accept", "text/csv")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", sheet.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch %s: %d %s",
			sheet.Name, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	limit := f.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	counter := csvparse.NewCountingReader(io.LimitReader(resp.Body, limit+1))
	text, err := csvparse.ReadText(counter)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", sheet.Name, err)
	}
	if counter.BytesRead > limit {
		return "", fmt.Errorf("failed to fetch %s: sheet too large (limit %d bytes)", sheet.Name, limit)
	}

	slog.Debug("sheet downloaded", "sheet", sheet.Name, "bytes", counter.BytesRead)
	return text, nil
}
