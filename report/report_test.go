package report

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutscan/mutscan"
	"github.com/mutscan/mutscan/ranking"
	"github.com/mutscan/mutscan/stats"
	"github.com/mutscan/mutscan/subject"
)

func testResult(t *testing.T) *mutscan.Result {
	t.Helper()

	tbl := ranking.NewTable()
	require.NoError(t, tbl.Append(ranking.Record{
		Label: "M_ATG", Codon: "ATG", AminoAcid: "M", File: "g_1_ATG_L14.npy",
		Summary: stats.Summary{Min: -0.2, Max: 0.05, Range: 0.25, Mean: -0.05, Median: 0, Std: 0.13, MeanAbs: 0.083},
	}))
	require.NoError(t, tbl.Append(ranking.Record{
		Label: "W_TGG", Codon: "TGG", AminoAcid: "W", File: "g_1_TGG_L14.npy",
		Summary: stats.Summary{Min: -1, Max: 0, Range: 1, Mean: -0.5, Median: -0.5, Std: 0.5, MeanAbs: 0.5},
	}))
	tbl.Sort()

	return &mutscan.Result{
		RunID:   "run-test",
		Subject: subject.Context{ID: "P001", Gene: "G1"},
		Table:   tbl,
		Top:     tbl.TopK(10),
		Skipped: []mutscan.Skip{{File: "g_1_GCA_L28.npy", Reason: "embedding blob not found"}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testResult(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		"rank,label,codon,aa,file,min_diff,max_diff,range_diff,mean_diff,median_diff,std_diff,abs_mean_diff",
		lines[0])
	// Sorted by impact: TGG outranks ATG.
	assert.True(t, strings.HasPrefix(lines[1], "1,W_TGG,TGG,W,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,M_ATG,ATG,M,"))
	assert.Contains(t, lines[2], "0.083")
}

func TestSQLiteSink(t *testing.T) {
	ctx := context.Background()
	res := testResult(t)

	sink := NewSQLiteSink(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, sink.Init(ctx))
	defer sink.Close()

	require.NoError(t, sink.SaveRun(ctx, res))

	db, err := sink.getDB()
	require.NoError(t, err)

	var runs int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 1, runs)

	var label string
	err = db.QueryRowContext(ctx,
		`SELECT label FROM variants WHERE run_id = ? AND rank = 1`, res.RunID).Scan(&label)
	require.NoError(t, err)
	assert.Equal(t, "W_TGG", label)
}

func TestSQLiteSinkUninitialized(t *testing.T) {
	sink := NewSQLiteSink("x.db")
	err := sink.SaveRun(context.Background(), testResult(t))
	require.Error(t, err)
}
