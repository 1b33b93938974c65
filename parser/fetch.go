package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"model-eval/httpclient"
)

var ErrUnsupportedURL = errors.New("unsupported import url")

// FetchError is returned when the page responds with a non-2xx status.
type FetchError struct {
	StatusCode int
	URL        string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// Importer downloads a page and extracts its article text.
type Importer struct {
	client   *http.Client
	maxBytes int64
}

// NewImporter builds an importer that only connects to public addresses.
func NewImporter(timeout time.Duration, maxBytes int64) *Importer {
	return NewImporterWithClient(httpclient.New(httpclient.Config{
		Timeout:   timeout,
		Transport: publicTransport(),
	}), maxBytes)
}

// NewImporterWithClient uses client as given, without the public address check.
func NewImporterWithClient(client *http.Client, maxBytes int64) *Importer {
	if client == nil {
		client = httpclient.NewDefault()
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Importer{client: client, maxBytes: maxBytes}
}

// Import fetches rawURL and returns its main article.
func (i *Importer) Import(ctx context.Context, rawURL string) (*Article, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: only absolute http and https urls are allowed", ErrUnsupportedURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := i.client.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddress) {
			return nil, fmt.Errorf("%w: %s does not resolve to a public address", ErrUnsupportedURL, u.Hostname())
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{StatusCode: resp.StatusCode, URL: u.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBytes))
	if err != nil {
		return nil, err
	}
	return ParseArticle(string(body), u)
}
