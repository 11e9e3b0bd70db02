package mutscan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mutscan/mutscan/blobstore"
	"github.com/mutscan/mutscan/codontab"
	"github.com/mutscan/mutscan/embedding"
	"github.com/mutscan/mutscan/embstore"
	"github.com/mutscan/mutscan/ranking"
	"github.com/mutscan/mutscan/similarity"
	"github.com/mutscan/mutscan/stats"
	"github.com/mutscan/mutscan/subject"
	"github.com/mutscan/mutscan/variant"
)

// DefaultTopK is the size of the bounded top view if not overridden.
const DefaultTopK = 10

// Config identifies what to scan and how variant files are named.
type Config struct {
	// Subject is the resolved per-subject metadata context.
	Subject subject.Context

	// ShallowLayer and DeepLayer are the two network depth checkpoints
	// being compared (deep − shallow).
	ShallowLayer int
	DeepLayer    int

	// CodonOffset is the byte offset of the codon inside a variant
	// file's base name.
	CodonOffset int
}

func (c Config) validate() error {
	if c.Subject.ID == "" || c.Subject.Gene == "" {
		return fmt.Errorf("%w: subject id and gene are required", ErrInvalidConfig)
	}
	if c.ShallowLayer == c.DeepLayer {
		return fmt.Errorf("%w: shallow and deep layer must differ", ErrInvalidConfig)
	}
	if c.CodonOffset < 0 {
		return fmt.Errorf("%w: negative codon offset", ErrInvalidConfig)
	}
	return nil
}

// Skip records one variant that was left out of the table, with the
// reason it was skipped.
type Skip struct {
	File   string
	Reason string
}

// Result is the complete output contract of a run: the fully sorted
// table, the bounded top view, and the skip list.
type Result struct {
	RunID   string
	Subject subject.Context
	Table   *ranking.Table
	Top     []ranking.Record
	Skipped []Skip
}

// Scanner runs the variant comparison pipeline for one subject.
type Scanner struct {
	cfg    Config
	store  *embstore.Store
	codons *codontab.Table
	opts   options
}

// New creates a Scanner.
func New(cfg Config, store *embstore.Store, codons *codontab.Table, optFns ...Option) (*Scanner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: embedding store is required", ErrInvalidConfig)
	}
	if codons == nil {
		return nil, fmt.Errorf("%w: codon table is required", ErrInvalidConfig)
	}

	return &Scanner{
		cfg:    cfg,
		store:  store,
		codons: codons,
		opts:   applyOptions(optFns),
	}, nil
}

// Run executes the scan: load the source embeddings at both layers,
// discover the subject's variant files, push every variant through the
// compare → reduce → aggregate pipeline, then sort and bound the table.
//
// Per-variant failures (missing companion file, unmapped codon, broken
// blob) skip that variant with a warning. Shape and series-length
// mismatches indicate systemic miscomputation and abort the whole run.
// The run fails if no variant completes.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	log := s.opts.logger.WithSubject(s.cfg.Subject.ID, s.cfg.Subject.Gene)

	srcShallow, err := s.store.LoadSource(ctx, s.cfg.Subject.ID, s.cfg.Subject.Gene, s.cfg.ShallowLayer)
	if err != nil {
		return nil, fmt.Errorf("mutscan: source layer %d: %w", s.cfg.ShallowLayer, err)
	}
	srcDeep, err := s.store.LoadSource(ctx, s.cfg.Subject.ID, s.cfg.Subject.Gene, s.cfg.DeepLayer)
	if err != nil {
		return nil, fmt.Errorf("mutscan: source layer %d: %w", s.cfg.DeepLayer, err)
	}
	if !srcShallow.SameShape(srcDeep) {
		return nil, fmt.Errorf("mutscan: source embeddings disagree across layers: %w",
			&similarity.ErrShapeMismatch{
				APositions: srcShallow.Positions(), ADims: srcShallow.Dims(),
				BPositions: srcDeep.Positions(), BDims: srcDeep.Dims(),
			})
	}

	files, err := s.store.DiscoverVariants(ctx, s.cfg.Subject.ID, s.cfg.ShallowLayer)
	if err != nil {
		return nil, err
	}

	// One slot per discovered file; exactly one of record/skip is set.
	// Filling slots by index keeps the merge in discovery order no
	// matter how many workers raced.
	records := make([]*ranking.Record, len(files))
	skips := make([]*Skip, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)
	for i, file := range files {
		g.Go(func() error {
			start := time.Now()
			rec, skip, err := s.processVariant(gctx, file, srcShallow, srcDeep)
			s.opts.metricsCollector.RecordVariant(time.Since(start), err)
			if err != nil {
				log.LogVariant(gctx, file, 0, err)
				return err
			}
			if skip != nil {
				s.opts.metricsCollector.RecordSkip()
				log.LogSkip(gctx, skip.File, skip.Reason)
				skips[i] = skip
				return nil
			}
			log.LogVariant(gctx, rec.Label, rec.Impact(), nil)
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := ranking.NewTable()
	var skipped []Skip
	for i := range files {
		switch {
		case records[i] != nil:
			if err := table.Append(*records[i]); err != nil {
				return nil, err
			}
		case skips[i] != nil:
			skipped = append(skipped, *skips[i])
		}
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w (discovered %d files)", ErrNoVariants, len(files))
	}

	// Terminal step: the table is never mutated again after this sort.
	table.Sort()

	result := &Result{
		RunID:   uuid.NewString(),
		Subject: s.cfg.Subject,
		Table:   table,
		Top:     table.TopK(s.opts.topK),
		Skipped: skipped,
	}
	log.LogRun(ctx, result.RunID, table.Len(), len(skipped))
	return result, nil
}

// processVariant runs one variant through load → compare → reduce →
// aggregate. It returns either a record, or a skip for recoverable
// per-variant conditions, or an error that aborts the run.
func (s *Scanner) processVariant(ctx context.Context, file string, srcShallow, srcDeep *embedding.Matrix) (*ranking.Record, *Skip, error) {
	codon, err := variant.CodonFromFile(file, s.cfg.CodonOffset)
	if err != nil {
		return nil, &Skip{File: file, Reason: err.Error()}, nil
	}

	aa, err := s.codons.Lookup(codon)
	if err != nil {
		return nil, &Skip{File: file, Reason: err.Error()}, nil
	}

	companion, err := variant.CompanionFile(file, s.cfg.ShallowLayer, s.cfg.DeepLayer)
	if err != nil {
		return nil, &Skip{File: file, Reason: err.Error()}, nil
	}

	varShallow, err := s.store.LoadVariant(ctx, s.cfg.Subject.ID, file)
	if err != nil {
		return loadSkip(file, err)
	}
	varDeep, err := s.store.LoadVariant(ctx, s.cfg.Subject.ID, companion)
	if err != nil {
		return loadSkip(companion, err)
	}

	simShallow, err := similarity.PositionwiseCosine(srcShallow, varShallow)
	if err != nil {
		return nil, nil, fmt.Errorf("mutscan: variant %s layer %d: %w", file, s.cfg.ShallowLayer, err)
	}
	simDeep, err := similarity.PositionwiseCosine(srcDeep, varDeep)
	if err != nil {
		return nil, nil, fmt.Errorf("mutscan: variant %s layer %d: %w", file, s.cfg.DeepLayer, err)
	}

	diff, err := similarity.Delta(simDeep, simShallow)
	if err != nil {
		return nil, nil, fmt.Errorf("mutscan: variant %s: %w", file, err)
	}

	summary, err := stats.Summarize(diff)
	if err != nil {
		return nil, nil, fmt.Errorf("mutscan: variant %s: %w", file, err)
	}

	return &ranking.Record{
		Label:     variant.Label(aa, codon),
		Codon:     codon,
		AminoAcid: aa,
		File:      file,
		Summary:   summary,
	}, nil, nil
}

// loadSkip converts a per-variant load failure (missing or corrupt
// blob) into a skip. Context cancellation propagates instead.
func loadSkip(file string, err error) (*ranking.Record, *Skip, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, nil, err
	}
	reason := err.Error()
	if errors.Is(err, blobstore.ErrNotFound) {
		reason = "embedding blob not found"
	}
	return nil, &Skip{File: file, Reason: reason}, nil
}
