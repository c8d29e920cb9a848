// Package loader retrieves dashboard artifacts over HTTP or from a local
// directory and returns them parsed.
package loader

import (
	"context"
	"strings"
	"time"

	"peajes/domain/preset"
	"peajes/domain/table"
	"peajes/internal"
	"peajes/internal/errors"
	"peajes/ports"
)

// Loader implements ports.ResourceLoader on top of a raw fetcher.
type Loader struct {
	fetcher ports.RawFetcher
	logger  *internal.Logger
}

var _ ports.ResourceLoader = (*Loader)(nil)

// New creates a loader. A nil logger uses internal.DefaultLogger.
func New(fetcher ports.RawFetcher, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// FromConfig picks the HTTP fetcher when baseURL is set, the directory
// fetcher otherwise.
func FromConfig(baseURL, dir string, timeout time.Duration, logger *internal.Logger) *Loader {
	if baseURL != "" {
		return New(NewHTTPFetcher(baseURL, timeout), logger)
	}
	return New(NewDirFetcher(dir), logger)
}

// LoadTable fetches a delimited text resource and parses it.
func (l *Loader) LoadTable(ctx context.Context, name string) (*table.Table, error) {
	start := time.Now()
	raw, err := l.fetcher.Fetch(ctx, name)
	if err != nil {
		l.logger.Warn("[Loader] %s from %s failed: %v", name, l.fetcher.Describe(), err)
		return nil, err
	}

	t := table.Parse(string(raw))
	l.logger.Trace("[Loader] %s columns: %s", name, strings.Join(t.Header, ", "))
	l.logger.Debug("[Loader] %s loaded in %.2fms (%d bytes, %d columns, %d rows)",
		name, float64(time.Since(start).Nanoseconds())/1e6, len(raw), len(t.Header), t.Len())
	return t, nil
}

// LoadPresets fetches and decodes the chart presets document.
func (l *Loader) LoadPresets(ctx context.Context, name string) (*preset.Set, error) {
	start := time.Now()
	raw, err := l.fetcher.Fetch(ctx, name)
	if err != nil {
		l.logger.Warn("[Loader] %s from %s failed: %v", name, l.fetcher.Describe(), err)
		return nil, err
	}

	set, err := preset.Decode(raw)
	if err != nil {
		l.logger.Warn("[Loader] %s is malformed: %v", name, err)
		return nil, errors.Wrapf(err, "decoding %s", name)
	}
	for _, w := range set.Warnings {
		l.logger.Warn("[Loader] %s: %s", name, w)
	}
	l.logger.Debug("[Loader] %s loaded in %.2fms (%d bytes, %d charts)",
		name, float64(time.Since(start).Nanoseconds())/1e6, len(raw), len(set.Charts()))
	return set, nil
}
