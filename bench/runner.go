// Package bench measures FSST over real text corpora.
//
// For every dataset the Runner makes sure the corpus is cached, loads it and
// measures three scenarios in order:
//
//	train-and-compress  training plus bulk compression, per iteration
//	compress-only       one trained table, one reused destination buffer
//	decompress          decoding a buffer compressed once up front
//
// It then trains a fresh table, compresses the corpus and prints the
// compression factor.
package bench

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"github.com/pkg/errors"

	"github.com/axiomhq/fsstbench/dataset"
	"github.com/axiomhq/fsstbench/internal/codec"
	"github.com/axiomhq/fsstbench/internal/logger"
)

const (
	// DefaultBufferCap comfortably exceeds the compressed size of every
	// dbtext corpus.
	DefaultBufferCap = 200 << 20
	// DefaultDropLimit bounds how much per-iteration output is retained
	// before it is released with the timer stopped.
	DefaultDropLimit = 256 << 20
)

const (
	ScenarioTrainAndCompress = "train-and-compress"
	ScenarioCompressOnly     = "compress-only"
	ScenarioDecompress       = "decompress"
)

// Acquirer makes a corpus available at a local path.
type Acquirer interface {
	EnsureCached(ctx context.Context, url, path string) error
}

type Config struct {
	Datasets []dataset.Descriptor
	// BufferCap is the capacity of the compress-only destination buffer.
	BufferCap int
	DropLimit int
	// Filter, when set, selects scenarios by "<dataset>/<scenario>".
	Filter *regexp.Regexp
	// Baselines are general-purpose codecs measured after FSST.
	Baselines []codec.Type
	// Out receives the compression factor lines.
	Out io.Writer
}

type Runner struct {
	cfg      Config
	acquirer Acquirer
	engine   Engine
	measurer Measurer
}

func NewRunner(cfg Config, acquirer Acquirer, engine Engine, measurer Measurer) *Runner {
	cfg.Datasets = slices.Clone(cfg.Datasets)
	cfg.Baselines = slices.Clone(cfg.Baselines)
	if cfg.BufferCap <= 0 {
		cfg.BufferCap = DefaultBufferCap
	}
	if cfg.DropLimit <= 0 {
		cfg.DropLimit = DefaultDropLimit
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Runner{cfg: cfg, acquirer: acquirer, engine: engine, measurer: measurer}
}

// Run processes the datasets one after another. The first error stops the
// run; a dataset's factor is only printed once all its scenarios completed.
// Cancelling ctx stops the run before the next dataset or download.
func (r *Runner) Run(ctx context.Context) ([]Report, error) {
	var reports []Report
	for _, ds := range r.cfg.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		dsReports, err := r.runDataset(ctx, ds)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %s", ds.Name)
		}
		for _, rep := range dsReports {
			fmt.Fprintln(r.cfg.Out, rep)
		}
		reports = append(reports, dsReports...)
	}
	return reports, nil
}

func (r *Runner) runDataset(ctx context.Context, ds dataset.Descriptor) ([]Report, error) {
	if err := r.acquirer.EnsureCached(ctx, ds.URL, ds.Path); err != nil {
		return nil, err
	}
	logger.Debugf("%s: cached at %s", ds.Name, ds.Path)

	corpus, err := dataset.Load(ds.Path)
	if err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, errors.Errorf("corpus %s is empty", ds.Path)
	}
	logger.Debugf("%s: loaded %d bytes", ds.Name, len(corpus))
	docs := [][]byte{corpus}

	r.trainAndCompress(ds.Name, docs)

	c := r.engine.Train(docs)
	buf := make([]byte, 0, r.cfg.BufferCap)
	if err := r.compressOnly(ds.Name, c, corpus, buf); err != nil {
		return nil, err
	}

	compressed, err := c.CompressInto(buf[:0], corpus)
	if err != nil {
		return nil, errors.Wrap(err, "compress for decompress scenario")
	}
	r.decompress(ds.Name, c.Decompressor(), compressed, len(corpus))

	// A fresh table, as the one above may have seen different training.
	fresh := r.engine.Train(docs)
	size := 0
	for _, part := range fresh.CompressBulk(docs) {
		size += len(part)
	}
	rep := Report{Dataset: ds.Name, Uncompressed: len(corpus), Compressed: size}
	if ts, ok := fresh.(interface{ TableSize() int }); ok {
		rep.TableSize = ts.TableSize()
	}
	reports := []Report{rep}

	for _, typ := range r.cfg.Baselines {
		rep, err := r.baseline(ds.Name, typ, corpus)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	logger.Debugf("%s: done", ds.Name)
	return reports, nil
}

func (r *Runner) measure(name string, fn func(b B)) {
	if r.cfg.Filter != nil && !r.cfg.Filter.MatchString(name) {
		logger.Debugf("skipping %s", name)
		return
	}
	r.measurer.Measure(name, fn)
}

func (r *Runner) trainAndCompress(name string, docs [][]byte) {
	r.measure(name+"/"+ScenarioTrainAndCompress, func(b B) {
		q := newDropQueue(r.cfg.DropLimit)
		for b.Loop() {
			c := r.engine.Train(docs)
			out := c.CompressBulk(docs)
			q.push(b, outputSize(out), [2]any{c, out})
		}
		q.finish(b)
	})
}

func (r *Runner) compressOnly(name string, c Compressor, corpus, buf []byte) error {
	var err error
	r.measure(name+"/"+ScenarioCompressOnly, func(b B) {
		b.SetBytes(int64(len(corpus)))
		for b.Loop() {
			if _, err = c.CompressInto(buf[:0], corpus); err != nil {
				return
			}
		}
	})
	return errors.Wrap(err, ScenarioCompressOnly)
}

func (r *Runner) decompress(name string, d Decompressor, compressed []byte, size int) {
	r.measure(name+"/"+ScenarioDecompress, func(b B) {
		b.SetBytes(int64(size))
		q := newDropQueue(r.cfg.DropLimit)
		for b.Loop() {
			out := d.Decompress(compressed)
			q.push(b, len(out), out)
		}
		q.finish(b)
	})
}

// baseline measures a general-purpose codec over the corpus and reports its
// compression factor.
func (r *Runner) baseline(name string, typ codec.Type, corpus []byte) (Report, error) {
	compressed, err := codec.Compress(typ, nil, corpus)
	if err != nil {
		return Report{}, errors.Wrapf(err, "baseline %s", typ)
	}
	prefix := fmt.Sprintf("%s/baseline/%s/", name, typ)

	var measureErr error
	r.measure(prefix+"compress", func(b B) {
		b.SetBytes(int64(len(corpus)))
		dst := make([]byte, 0, len(compressed)+len(compressed)/8)
		for b.Loop() {
			if _, measureErr = codec.Compress(typ, dst[:0], corpus); measureErr != nil {
				return
			}
		}
	})
	r.measure(prefix+"decompress", func(b B) {
		b.SetBytes(int64(len(corpus)))
		q := newDropQueue(r.cfg.DropLimit)
		for b.Loop() {
			out, err := codec.Decompress(typ, compressed)
			if err != nil {
				measureErr = err
				return
			}
			q.push(b, len(out), out)
		}
		q.finish(b)
	})
	if measureErr != nil {
		return Report{}, errors.Wrapf(measureErr, "baseline %s", typ)
	}
	return Report{Dataset: name, Codec: typ.String(), Uncompressed: len(corpus), Compressed: len(compressed)}, nil
}

func outputSize(parts [][]byte) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}
