package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"peajes/internal/errors"
)

// defaultMaxBody caps a single artifact download.
const defaultMaxBody = 64 << 20

// HTTPFetcher retrieves artifacts with GET requests relative to a base URL.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
}

// NewHTTPFetcher creates a fetcher for artifacts published under baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return NewHTTPFetcherWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewHTTPFetcherWithClient uses a caller-supplied client.
func NewHTTPFetcherWithClient(baseURL string, client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client, maxBody: defaultMaxBody}
}

// Describe names the artifact origin for logs.
func (f *HTTPFetcher) Describe() string {
	return f.baseURL
}

// Fetch downloads one artifact. Any status outside 2xx, and any transport
// failure, is returned as a RetrievalError.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := f.buildRequest(ctx, name)
	if err != nil {
		return nil, errors.Retrieval(name, 0, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Retrieval(name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.Retrieval(name, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, errors.Retrieval(name, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(body)) > f.maxBody {
		return nil, errors.Retrieval(name, resp.StatusCode, fmt.Errorf("response exceeds %d bytes", f.maxBody))
	}
	return body, nil
}

// buildRequest creates a GET request for name, escaping path segments.
func (f *HTTPFetcher) buildRequest(ctx context.Context, name string) (*http.Request, error) {
	segments := strings.Split(path.Clean("/"+name), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	target := f.baseURL + strings.Join(segments, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		req.Header.Set("Accept", "application/json")
	case ".csv":
		req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	}
	return req, nil
}
