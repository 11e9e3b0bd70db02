package blobstore

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compressedSuffixes in probe order. zstd first: it is what the
// embedding export pipeline emits by default.
var compressedSuffixes = []string{".zst", ".lz4"}

// DecompressingStore wraps a BlobStore and transparently decodes
// zstd- and lz4-compressed blobs.
//
// A blob requested as "a/b.npy" resolves to the first of "a/b.npy",
// "a/b.npy.zst", "a/b.npy.lz4" that exists. List reports logical names
// with the compression suffix stripped.
type DecompressingStore struct {
	inner BlobStore
}

// WithDecompression wraps inner with transparent decompression.
func WithDecompression(inner BlobStore) *DecompressingStore {
	return &DecompressingStore{inner: inner}
}

// Open opens the named blob, decompressing it if a compressed
// counterpart is stored instead of the plain blob.
func (s *DecompressingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.inner.Open(ctx, name)
	if err == nil {
		return rc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	for _, suffix := range compressedSuffixes {
		rc, err := s.inner.Open(ctx, name+suffix)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return newDecompressor(rc, suffix)
	}

	return nil, ErrNotFound
}

// List returns logical blob names under prefix, compression suffixes
// stripped, sorted and deduplicated.
func (s *DecompressingStore) List(ctx context.Context, prefix string) ([]string, error) {
	raw, err := s.inner.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		for _, suffix := range compressedSuffixes {
			name = strings.TrimSuffix(name, suffix)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func newDecompressor(rc io.ReadCloser, suffix string) (io.ReadCloser, error) {
	switch suffix {
	case ".zst":
		dec, err := zstd.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, err
		}
		return &zstdReadCloser{dec: dec, underlying: rc}, nil
	case ".lz4":
		return &lz4ReadCloser{r: lz4.NewReader(rc), underlying: rc}, nil
	default:
		_ = rc.Close()
		return nil, errors.New("blobstore: unknown compression suffix " + suffix)
	}
}

type zstdReadCloser struct {
	dec        *zstd.Decoder
	underlying io.Closer
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.underlying.Close()
}

type lz4ReadCloser struct {
	r          *lz4.Reader
	underlying io.Closer
}

func (l *lz4ReadCloser) Read(p []byte) (int, error) { return l.r.Read(p) }

func (l *lz4ReadCloser) Close() error { return l.underlying.Close() }
