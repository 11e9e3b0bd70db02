// Command mutscan scans the codon variants of one subject's gene and
// emits a ranked table of layer-differential impact.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mutscan/mutscan"
	"github.com/mutscan/mutscan/blobstore"
	minioblob "github.com/mutscan/mutscan/blobstore/minio"
	s3blob "github.com/mutscan/mutscan/blobstore/s3"
	"github.com/mutscan/mutscan/codontab"
	"github.com/mutscan/mutscan/embstore"
	"github.com/mutscan/mutscan/report"
	"github.com/mutscan/mutscan/subject"
)

func main() {
	var (
		subjectID   = flag.String("subject", "", "subject id to scan (required)")
		metaPath    = flag.String("meta", "metadata.csv", "subject metadata CSV")
		codonPath   = flag.String("codon-table", "codon_table.csv", "codon table CSV")
		shallow     = flag.Int("shallow", 14, "shallow layer number")
		deep        = flag.Int("deep", 28, "deep layer number")
		codonOffset = flag.Int("codon-offset", 11, "byte offset of the codon in variant file names")

		storeKind = flag.String("store", "local", "embedding store backend: local, s3 or minio")
		dataRoot  = flag.String("data", "./embeddings", "root directory for the local store")
		bucket    = flag.String("bucket", "", "bucket name for s3/minio stores")
		prefix    = flag.String("prefix", "", "key prefix inside the bucket")
		endpoint  = flag.String("endpoint", "", "minio endpoint host:port")
		secure    = flag.Bool("secure", true, "use TLS for the minio endpoint")
		rateLimit = flag.Float64("rate", 0, "max store requests per second (0 = unlimited)")

		workers  = flag.Int("workers", 1, "concurrent variant pipelines")
		topK     = flag.Int("top", mutscan.DefaultTopK, "size of the logged top view")
		outPath  = flag.String("out", "", "ranked table CSV output path (default stdout)")
		dbPath   = flag.String("sqlite", "", "optional sqlite database to persist the run")
		logJSON  = flag.Bool("log-json", false, "emit JSON logs")
		logDebug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *subjectID == "" {
		fmt.Fprintln(os.Stderr, "mutscan: -subject is required")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *logDebug {
		level = slog.LevelDebug
	}
	logger := mutscan.NewTextLogger(level)
	if *logJSON {
		logger = mutscan.NewJSONLogger(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, runConfig{
		subjectID:   *subjectID,
		metaPath:    *metaPath,
		codonPath:   *codonPath,
		shallow:     *shallow,
		deep:        *deep,
		codonOffset: *codonOffset,
		storeKind:   *storeKind,
		dataRoot:    *dataRoot,
		bucket:      *bucket,
		prefix:      *prefix,
		endpoint:    *endpoint,
		secure:      *secure,
		rateLimit:   *rateLimit,
		workers:     *workers,
		topK:        *topK,
		outPath:     *outPath,
		dbPath:      *dbPath,
	}); err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}
}

type runConfig struct {
	subjectID   string
	metaPath    string
	codonPath   string
	shallow     int
	deep        int
	codonOffset int

	storeKind string
	dataRoot  string
	bucket    string
	prefix    string
	endpoint  string
	secure    bool
	rateLimit float64

	workers int
	topK    int
	outPath string
	dbPath  string
}

func run(ctx context.Context, logger *mutscan.Logger, cfg runConfig) error {
	codons, err := codontab.LoadFile(cfg.codonPath)
	if err != nil {
		return err
	}

	subj, err := subject.LoadFile(cfg.metaPath, cfg.subjectID)
	if err != nil {
		return err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	blobs = blobstore.WithDecompression(blobs)
	if cfg.rateLimit > 0 {
		blobs = blobstore.WithRateLimit(blobs, cfg.rateLimit)
	}

	scanner, err := mutscan.New(mutscan.Config{
		Subject:      subj,
		ShallowLayer: cfg.shallow,
		DeepLayer:    cfg.deep,
		CodonOffset:  cfg.codonOffset,
	}, embstore.New(blobs), codons,
		mutscan.WithLogger(logger),
		mutscan.WithWorkers(cfg.workers),
		mutscan.WithTopK(cfg.topK),
	)
	if err != nil {
		return err
	}

	res, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	out := os.Stdout
	if cfg.outPath != "" {
		f, err := os.Create(cfg.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteCSV(out, res); err != nil {
		return err
	}

	if cfg.dbPath != "" {
		sink := report.NewSQLiteSink(cfg.dbPath)
		if err := sink.Init(ctx); err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.SaveRun(ctx, res); err != nil {
			return err
		}
	}

	report.LogTopK(ctx, logger, res)
	return nil
}

func newBlobStore(ctx context.Context, cfg runConfig) (blobstore.BlobStore, error) {
	switch cfg.storeKind {
	case "local":
		return blobstore.NewLocalStore(cfg.dataRoot), nil

	case "s3":
		if cfg.bucket == "" {
			return nil, fmt.Errorf("mutscan: -bucket is required for the s3 store")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return s3blob.NewStore(awss3.NewFromConfig(awsCfg), cfg.bucket, cfg.prefix), nil

	case "minio":
		if cfg.bucket == "" || cfg.endpoint == "" {
			return nil, fmt.Errorf("mutscan: -bucket and -endpoint are required for the minio store")
		}
		client, err := miniogo.New(cfg.endpoint, &miniogo.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: cfg.secure,
		})
		if err != nil {
			return nil, err
		}
		return minioblob.NewStore(client, cfg.bucket, cfg.prefix), nil

	default:
		return nil, fmt.Errorf("mutscan: unknown store kind %q", cfg.storeKind)
	}
}
