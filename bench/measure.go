package bench

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/axiomhq/fsstbench/internal/logger"
)

// B is the part of *testing.B a scenario uses.
type B interface {
	Loop() bool
	StopTimer()
	StartTimer()
	SetBytes(n int64)
	ReportAllocs()
}

var _ B = (*testing.B)(nil)

// Measurer runs one named scenario. Iteration count and sampling are up to
// the implementation.
type Measurer interface {
	Measure(name string, fn func(b B))
}

// SubBenchmarks measures each scenario as a sub-benchmark of b, so
// `go test -bench` filters apply to scenario names.
func SubBenchmarks(b *testing.B) Measurer {
	return subBenchmarks{b}
}

type subBenchmarks struct {
	b *testing.B
}

func (s subBenchmarks) Measure(name string, fn func(b B)) {
	s.b.Run(name, func(b *testing.B) {
		fn(b)
	})
}

// Result is one measured scenario.
type Result struct {
	Name string
	testing.BenchmarkResult
}

// Collector measures scenarios with testing.Benchmark, writes each result to
// out in the `go test -bench` line format and keeps it for the summary.
type Collector struct {
	out     io.Writer
	Results []Result
}

func NewCollector(out io.Writer) *Collector {
	return &Collector{out: out}
}

func (c *Collector) Measure(name string, fn func(b B)) {
	logger.Debugf("measuring %s", name)
	r := testing.Benchmark(func(b *testing.B) {
		fn(b)
	})
	c.Results = append(c.Results, Result{Name: name, BenchmarkResult: r})
	fmt.Fprintf(c.out, "%s\t%s\t%s\n", benchName(name), r.String(), r.MemString())
}

// benchName turns a scenario name into a benchmark name benchstat accepts.
func benchName(name string) string {
	return "BenchmarkDBText/" + strings.ReplaceAll(name, " ", "_")
}
