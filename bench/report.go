package bench

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// Report is the compression factor of one codec over one corpus.
type Report struct {
	Dataset      string
	Codec        string // empty for FSST
	Uncompressed int
	Compressed   int
	TableSize    int // serialized symbol table, FSST only
}

// Ratio is uncompressed over compressed size, or 0 when nothing was
// compressed.
func (r Report) Ratio() float64 {
	return ratio(r.Uncompressed, r.Compressed)
}

// FormatRatio renders a compression factor as "4.00:1".
func FormatRatio(uncompressed, compressed int) string {
	return fmt.Sprintf("%.2f:1", ratio(uncompressed, compressed))
}

func ratio(uncompressed, compressed int) float64 {
	if compressed <= 0 {
		return 0
	}
	return float64(uncompressed) / float64(compressed)
}

func (r Report) String() string {
	name := r.Dataset
	if r.Codec != "" {
		name += " with " + r.Codec
	}
	return fmt.Sprintf("compressed %s %d => %dB (compression factor %s)",
		name, r.Uncompressed, r.Compressed, FormatRatio(r.Uncompressed, r.Compressed))
}

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true)
)

// cellStyles pads every cell and bolds the header, which lipgloss renders as
// row 0.
func cellStyles(row, _ int) lipgloss.Style {
	if row == 0 {
		return headerStyle
	}
	return cellStyle
}

// Summary renders scenario timings and compression factors as two tables.
func Summary(results []Result, reports []Report) string {
	timings := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(cellStyles).
		Headers("Scenario", "Iterations", "Time/op", "Throughput", "Allocs/op", "Bytes/op")
	for _, r := range results {
		throughput := "-"
		if r.Bytes > 0 && r.T > 0 {
			perSec := float64(r.Bytes) * float64(r.N) / r.T.Seconds()
			throughput = humanize.IBytes(uint64(perSec)) + "/s"
		}
		timings.Row(
			r.Name,
			strconv.Itoa(r.N),
			time.Duration(r.NsPerOp()).String(),
			throughput,
			strconv.FormatInt(r.AllocsPerOp(), 10),
			humanize.IBytes(uint64(r.AllocedBytesPerOp())),
		)
	}

	factors := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(cellStyles).
		Headers("Dataset", "Codec", "Uncompressed", "Compressed", "Factor", "Symbol table")
	for _, r := range reports {
		codecName, tableSize := r.Codec, "-"
		if codecName == "" {
			codecName = "fsst"
			tableSize = humanize.IBytes(uint64(r.TableSize))
		}
		factors.Row(
			r.Dataset,
			codecName,
			humanize.IBytes(uint64(r.Uncompressed)),
			humanize.IBytes(uint64(r.Compressed)),
			FormatRatio(r.Uncompressed, r.Compressed),
			tableSize,
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, timings.String(), factors.String())
}
