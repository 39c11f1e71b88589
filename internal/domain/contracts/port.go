package contracts

import "context"

// SourceFetcher port (interface untuk Source Fetch Service).
// An empty string with a nil error means the service answered without
// source code.
type SourceFetcher interface {
	FetchSource(ctx context.Context, address string, network Network) (string, error)
}
