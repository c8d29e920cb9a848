package ports

import (
	"context"

	"peajes/domain/preset"
	"peajes/domain/table"
)

// ResourceLoader fetches named dashboard artifacts and returns them fully
// parsed. Failures to retrieve a resource are reported as
// *errors.RetrievalError.
type ResourceLoader interface {
	LoadTable(ctx context.Context, name string) (*table.Table, error)
	LoadPresets(ctx context.Context, name string) (*preset.Set, error)
}

// RawFetcher returns the bytes of a named artifact.
type RawFetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Describe() string
}
