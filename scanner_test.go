package mutscan

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutscan/mutscan/blobstore"
	"github.com/mutscan/mutscan/codontab"
	"github.com/mutscan/mutscan/embstore"
	"github.com/mutscan/mutscan/npy"
	"github.com/mutscan/mutscan/subject"
)

const codonCSV = "codon,aa\nATG,M\nTGG,W\nGCA,A\n"

// Variant files follow {gene}_{position}_{codon}_L{layer}.npy;
// for gene "G1" and position "7" the codon starts at offset 5.
const testCodonOffset = 5

func testSubject() subject.Context {
	return subject.Context{
		ID:          "P001",
		Gene:        "G1",
		Position:    7,
		RegionStart: 0,
		RegionEnd:   21,
		SourceCodon: "GCA",
	}
}

func putMatrix(t *testing.T, blobs *blobstore.MemoryStore, name string, rows [][]float32) {
	t.Helper()
	var flat []float32
	for _, row := range rows {
		flat = append(flat, row...)
	}
	var buf bytes.Buffer
	require.NoError(t, npy.Encode(&buf, []int{1, len(rows), len(rows[0])}, flat))
	blobs.Put(name, buf.Bytes())
}

// fixture builds a store with source embeddings at layers 14/28 and the
// given variant matrices (same matrix stored at both layers unless a
// deep override is supplied).
func fixture(t *testing.T) (*blobstore.MemoryStore, *embstore.Store) {
	t.Helper()
	blobs := blobstore.NewMemoryStore()

	src := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	putMatrix(t, blobs, "P001/G1_L14.npy", src)
	putMatrix(t, blobs, "P001/G1_L28.npy", src)

	return blobs, embstore.New(blobstore.WithDecompression(blobs))
}

func newScanner(t *testing.T, store *embstore.Store, optFns ...Option) *Scanner {
	t.Helper()
	codons, err := codontab.Load(bytes.NewReader([]byte(codonCSV)))
	require.NoError(t, err)

	s, err := New(Config{
		Subject:      testSubject(),
		ShallowLayer: 14,
		DeepLayer:    28,
		CodonOffset:  testCodonOffset,
	}, store, codons, optFns...)
	require.NoError(t, err)
	return s
}

func TestRunIdenticalVariant(t *testing.T) {
	blobs, store := fixture(t)

	// Variant identical to source at both layers: all similarities 1.0,
	// differential all zero.
	same := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", same)

	res, err := newScanner(t, store).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, res.Table.Len())
	rec := res.Table.Records()[0]
	assert.Equal(t, "M_ATG", rec.Label)
	assert.Equal(t, "ATG", rec.Codon)
	assert.Equal(t, "M", rec.AminoAcid)
	assert.InDelta(t, 0, rec.Summary.Mean, 1e-9)
	assert.InDelta(t, 0, rec.Summary.Range, 1e-9)
	assert.InDelta(t, 0, rec.Summary.Std, 1e-9)
	assert.NotEmpty(t, res.RunID)
}

func TestRunRanksByImpact(t *testing.T) {
	blobs, store := fixture(t)

	same := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	shifted := [][]float32{{0, 1}, {1, 0}, {1, -1}}

	// ATG: identical at both layers, impact 0.
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", same)
	// TGG: matches source at the shallow layer but diverges at depth.
	putMatrix(t, blobs, "P001/variants/G1_7_TGG_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_TGG_L28.npy", shifted)

	res, err := newScanner(t, store).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, res.Table.Len())
	recs := res.Table.Records()
	assert.Equal(t, "W_TGG", recs[0].Label)
	assert.Equal(t, "M_ATG", recs[1].Label)
	assert.Greater(t, recs[0].Impact(), recs[1].Impact())

	// Top view is bounded by table size.
	assert.Len(t, res.Top, 2)
	assert.Equal(t, recs[0].Label, res.Top[0].Label)
}

func TestRunSkipsMissingCompanion(t *testing.T) {
	blobs, store := fixture(t)

	same := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", same)
	// TGG has no deep-layer companion.
	putMatrix(t, blobs, "P001/variants/G1_7_TGG_L14.npy", same)

	res, err := newScanner(t, store).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Table.Len())
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].File, "TGG_L28")
	assert.Contains(t, res.Skipped[0].Reason, "not found")
}

func TestRunSkipsUnknownCodon(t *testing.T) {
	blobs, store := fixture(t)

	same := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", same)
	// ZZZ is not in the codon table.
	putMatrix(t, blobs, "P001/variants/G1_7_ZZZ_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_ZZZ_L28.npy", same)

	res, err := newScanner(t, store).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Table.Len())
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Reason, "ZZZ")
}

func TestRunAbortsOnShapeMismatch(t *testing.T) {
	blobs, store := fixture(t)

	// Variant with a different position count: data-integrity error.
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", [][]float32{{1, 0}, {0, 1}})
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", [][]float32{{1, 0}, {0, 1}})

	_, err := newScanner(t, store).Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err))
}

func TestRunNoVariants(t *testing.T) {
	_, store := fixture(t)

	_, err := newScanner(t, store).Run(context.Background())
	require.ErrorIs(t, err, ErrNoVariants)
}

func TestRunMissingSource(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	store := embstore.New(blobs)

	_, err := newScanner(t, store).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRunZeroNormPropagates(t *testing.T) {
	blobs, store := fixture(t)

	// Middle position is a zero vector: its cosine is NaN and the
	// variant's statistics must surface that, not hide it.
	degenerate := [][]float32{{1, 0}, {0, 0}, {1, 1}}
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", degenerate)
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", degenerate)

	res, err := newScanner(t, store).Run(context.Background())
	require.NoError(t, err)

	rec := res.Table.Records()[0]
	assert.True(t, math.IsNaN(rec.Summary.Mean))
	assert.True(t, math.IsNaN(rec.Summary.MeanAbs))
}

func TestRunParallelMatchesSequential(t *testing.T) {
	blobs, store := fixture(t)

	same := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	shifted := [][]float32{{0, 1}, {1, 0}, {1, -1}}
	for _, codon := range []string{"ATG", "GCA", "TGG"} {
		putMatrix(t, blobs, "P001/variants/G1_7_"+codon+"_L14.npy", same)
		putMatrix(t, blobs, "P001/variants/G1_7_"+codon+"_L28.npy", shifted)
	}

	seq, err := newScanner(t, store).Run(context.Background())
	require.NoError(t, err)

	par, err := newScanner(t, store, WithWorkers(4)).Run(context.Background())
	require.NoError(t, err)

	// Identical impacts: order must equal discovery order, workers or not.
	require.Equal(t, seq.Table.Len(), par.Table.Len())
	seqRecs, parRecs := seq.Table.Records(), par.Table.Records()
	for i := range seqRecs {
		assert.Equal(t, seqRecs[i].Label, parRecs[i].Label)
	}
	assert.Equal(t, "M_ATG", seqRecs[0].Label)
	assert.Equal(t, "A_GCA", seqRecs[1].Label)
	assert.Equal(t, "W_TGG", seqRecs[2].Label)
}

func TestRunMetrics(t *testing.T) {
	blobs, store := fixture(t)

	same := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L14.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_ATG_L28.npy", same)
	putMatrix(t, blobs, "P001/variants/G1_7_TGG_L14.npy", same)

	mc := &BasicMetricsCollector{}
	_, err := newScanner(t, store, WithMetricsCollector(mc)).Run(context.Background())
	require.NoError(t, err)

	got := mc.GetStats()
	assert.Equal(t, int64(2), got.VariantCount)
	assert.Equal(t, int64(1), got.SkipCount)
	assert.Equal(t, int64(0), got.FailCount)
}

func TestNewValidation(t *testing.T) {
	codons, err := codontab.Load(bytes.NewReader([]byte(codonCSV)))
	require.NoError(t, err)
	_, store := fixture(t)

	t.Run("MissingSubject", func(t *testing.T) {
		_, err := New(Config{ShallowLayer: 14, DeepLayer: 28}, store, codons)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("EqualLayers", func(t *testing.T) {
		cfg := Config{Subject: testSubject(), ShallowLayer: 14, DeepLayer: 14}
		_, err := New(cfg, store, codons)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("NilStore", func(t *testing.T) {
		cfg := Config{Subject: testSubject(), ShallowLayer: 14, DeepLayer: 28}
		_, err := New(cfg, nil, codons)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("NilCodonTable", func(t *testing.T) {
		cfg := Config{Subject: testSubject(), ShallowLayer: 14, DeepLayer: 28}
		_, err := New(cfg, store, nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
