package embstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/mutscan/mutscan/blobstore"
	"github.com/mutscan/mutscan/embedding"
	"github.com/mutscan/mutscan/npy"
)

// Store loads embedding matrices from a blobstore.
//
// Key layout, fixed by the embedding export pipeline:
//
//	{subject}/{gene}_L{layer}.npy          source embeddings
//	{subject}/variants/{file}              variant embeddings
type Store struct {
	blobs blobstore.BlobStore
}

// New creates a Store on top of the given blobstore.
func New(blobs blobstore.BlobStore) *Store {
	return &Store{blobs: blobs}
}

// SourceKey builds the blob name of a source embedding.
func SourceKey(subjectID, gene string, layer int) string {
	return fmt.Sprintf("%s/%s_L%d.npy", subjectID, gene, layer)
}

// VariantKey builds the blob name of a variant embedding file.
func VariantKey(subjectID, file string) string {
	return path.Join(subjectID, "variants", file)
}

// LoadSource loads the source embedding matrix of a subject's gene at
// the given layer. The exported tensor has a leading singleton batch
// axis, which is dropped.
func (s *Store) LoadSource(ctx context.Context, subjectID, gene string, layer int) (*embedding.Matrix, error) {
	return s.load(ctx, SourceKey(subjectID, gene, layer))
}

// LoadVariant loads a variant embedding matrix by its file name.
func (s *Store) LoadVariant(ctx context.Context, subjectID, file string) (*embedding.Matrix, error) {
	return s.load(ctx, VariantKey(subjectID, file))
}

func (s *Store) load(ctx context.Context, key string) (*embedding.Matrix, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, key)
	if err != nil {
		return nil, fmt.Errorf("embstore: open %s: %w", key, err)
	}

	arr, err := npy.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("embstore: decode %s: %w", key, err)
	}

	m, err := embedding.FromShape(arr.Data, arr.Shape)
	if err != nil {
		return nil, fmt.Errorf("embstore: %s: %w", key, err)
	}
	return m, nil
}

// DiscoverVariants lists the variant files of a subject that carry the
// given layer token, in lexicographic order. The returned names are
// relative to the subject's variants directory; this order is the
// discovery order used for ranking tie-breaks downstream.
func (s *Store) DiscoverVariants(ctx context.Context, subjectID string, layer int) ([]string, error) {
	prefix := subjectID + "/variants/"
	names, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("embstore: list %s: %w", prefix, err)
	}

	token := fmt.Sprintf("_L%d.", layer)
	var files []string
	for _, name := range names {
		file := strings.TrimPrefix(name, prefix)
		if strings.Contains(file, token) {
			files = append(files, file)
		}
	}
	return files, nil
}
