package blobstore

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedStore wraps a BlobStore and limits the request rate to the
// backend. Useful against shared object-storage endpoints where a scan
// over thousands of variant files would otherwise burst.
type RateLimitedStore struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// WithRateLimit wraps inner with a token bucket of requestsPerSec.
// A non-positive rate disables limiting and returns inner unwrapped
// behavior via a pass-through limiter.
func WithRateLimit(inner BlobStore, requestsPerSec float64) *RateLimitedStore {
	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}
	return &RateLimitedStore{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Open waits for a request token, then opens the named blob.
func (s *RateLimitedStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Open(ctx, name)
}

// List waits for a request token, then lists blobs under prefix.
func (s *RateLimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.List(ctx, prefix)
}
