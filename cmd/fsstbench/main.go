package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/axiomhq/fsstbench/bench"
	"github.com/axiomhq/fsstbench/dataset"
	"github.com/axiomhq/fsstbench/internal/codec"
	log "github.com/axiomhq/fsstbench/internal/logger"
)

type arguments struct {
	CacheDir  string        `help:"Directory the dbtext corpora are cached in" default:"testdata/dbtext"`
	Filter    string        `help:"Only measure scenarios whose <dataset>/<scenario> name matches this regular expression"`
	BenchTime time.Duration `help:"Minimum measuring time per scenario" default:"1s"`
	BufferCap int           `help:"Capacity in bytes of the reused compress-only destination buffer" default:"209715200"`
	Baselines []string      `help:"General-purpose codecs to measure next to FSST (gzip, snappy, s2, lz4, zstd or all)"`
	Log       log.Config    `help:"Configuration for the logger" embed:"" prefix:"log-"`
}

// config is the validated form of the arguments.
type config struct {
	datasets  []dataset.Descriptor
	filter    *regexp.Regexp
	baselines []codec.Type
	bufferCap int
}

func logErrorAndExit(err error) {
	log.Fatalf("fsstbench: %v", err)
}

func main() {
	testing.Init()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logErrorAndExit(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logErrorAndExit(err)
	}
	log.Sync()
}

func loadConfig(args []string) (*config, error) {
	var a arguments
	parser, err := kong.New(&a,
		kong.Name("fsstbench"),
		kong.Description("Measures FSST training, compression and decompression over the dbtext corpora."))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := a.Log.Configure(); err != nil {
		return nil, err
	}
	if a.BenchTime <= 0 {
		return nil, errors.Errorf("bench-time must be positive, got %s", a.BenchTime)
	}
	// testing.Benchmark reads its measuring time from the test flags.
	if err := flag.Set("test.benchtime", a.BenchTime.String()); err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &config{
		datasets:  dataset.DBText(a.CacheDir),
		bufferCap: a.BufferCap,
	}
	if a.Filter != "" {
		if cfg.filter, err = regexp.Compile(a.Filter); err != nil {
			return nil, errors.Wrap(err, "filter")
		}
	}
	if cfg.baselines, err = codec.Parse(a.Baselines); err != nil {
		return nil, errors.Wrap(err, "baselines")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config) error {
	collector := bench.NewCollector(os.Stdout)
	r := bench.NewRunner(bench.Config{
		Datasets:  cfg.datasets,
		BufferCap: cfg.bufferCap,
		Filter:    cfg.filter,
		Baselines: cfg.baselines,
		Out:       os.Stdout,
	}, dataset.NewAcquirer(nil), bench.FSST, collector)

	reports, err := r.Run(ctx)
	if err != nil {
		return err
	}
	log.Infof("measured %d scenarios over %d corpora", len(collector.Results), len(cfg.datasets))
	fmt.Fprintln(os.Stderr, bench.Summary(collector.Results, reports))
	return nil
}
