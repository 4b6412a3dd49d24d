package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mabhi256/jalias/internal/trace"
	"github.com/mabhi256/jalias/utils"
)

const (
	FormatCLI     = "cli"
	FormatCLIMore = "cli-more"
)

type Options struct {
	Format string
	// Combined adds a section that counts remaining objects together with
	// deallocated ones.
	Combined bool
	Width    int
	// Plain draws charts without styling, for output that is not a terminal.
	Plain bool
}

var printer = message.NewPrinter(language.English)

// num formats an integer with thousands separators.
func num(n int) string { return printer.Sprintf("%d", n) }

// Write prints the summary of one analysed trace.
func Write(w io.Writer, source string, out *trace.Outcome, opts Options) error {
	if out == nil {
		return fmt.Errorf("no outcome to report for %s", source)
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	r := &writer{w: w, opts: opts}

	dealloc := Tally(out.Deallocated)
	remaining := Tally(out.Remaining)

	r.printf("🔍 Aliasing Analysis: %s\n", source)
	r.printf("Events: %s  |  Objects: %s  |  Execution time: %s\n",
		num(out.Events), num(dealloc.Objects+remaining.Objects), utils.FormatClock(out.Elapsed))
	r.printf("Run: %s\n", out.RunID)
	r.println(strings.Repeat("═", min(opts.Width, 65)))

	r.section("📦 DEALLOCATED OBJECTS", dealloc)
	r.section("👻 REMAINING OBJECTS (never deallocated)", remaining)
	if opts.Combined {
		r.section("📊 ALL OBJECTS", Combine(dealloc, remaining))
	}

	if opts.Format == FormatCLIMore {
		r.anomalies(out.Anomalies)
		r.frozen(Combine(dealloc, remaining))
		r.samples(out)
	}
	return r.err
}

type writer struct {
	w    io.Writer
	opts Options
	err  error
}

func (r *writer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *writer) println(s string) { r.printf("%s\n", s) }

func (r *writer) heading(title string) {
	r.printf("\n%s\n", title)
	r.println(strings.Repeat("─", 35))
}

func (r *writer) section(title string, s Stats) {
	r.heading(fmt.Sprintf("%s (%s)", title, num(s.Objects)))
	if s.Objects == 0 {
		r.println("   No objects")
		return
	}
	r.println("Monitors in accepting state:")
	for _, line := range StatLines(s) {
		r.println(line)
	}
}

// StatLines renders one "accepting/total ~= percent" line per monitor.
func StatLines(s Stats) []string {
	width := 0
	for _, m := range s.Monitors {
		width = max(width, len(num(m.Total)))
	}
	lines := make([]string, 0, len(s.Monitors))
	for _, m := range s.Monitors {
		ratio := m.Ratio()
		lines = append(lines, fmt.Sprintf("%s %*s/%s ~= %6.2f%%  %s",
			utils.AcceptanceIcon(ratio), width, num(m.Accepting), num(m.Total), ratio*100, m.Monitor))
	}
	return lines
}

func (r *writer) anomalies(a trace.Anomalies) {
	r.heading("⚠️  TRACE ANOMALIES (tolerated)")
	if a.Total() == 0 {
		r.println("✅ None")
		return
	}
	for _, row := range []struct {
		label string
		n     int
	}{
		{"Objects referenced before allocation", a.ImplicitObjects},
		{"Repeated allocations (monitors reset)", a.Reannounced},
		{"Stale reference removals skipped", a.StaleRemovals},
		{"Deallocations with residual references", a.ResidualDeallocs},
		{"Events with a null holder", a.NullHolders},
	} {
		if row.n > 0 {
			r.println(utils.FormatKeyValue(row.label, num(row.n), 42))
		}
	}
}

func (r *writer) frozen(s Stats) {
	if len(s.Monitors) == 0 {
		return
	}
	r.heading("🧊 VERDICTS SETTLED (frozen / objects)")
	barWidth := max(10, min(30, r.opts.Width-50))
	for _, m := range s.Monitors {
		ratio := 0.0
		if m.Total > 0 {
			ratio = float64(m.Frozen) / float64(m.Total)
		}
		r.printf("%s %6.2f%%  %s\n",
			utils.CreateProgressBar(ratio, barWidth, utils.InfoColor), ratio*100,
			utils.TruncateString(m.Monitor, max(20, r.opts.Width-barWidth-10)))
	}
}

func (r *writer) samples(out *trace.Outcome) {
	for _, name := range SampleNames(out) {
		c, ok := trace.CollectorByName(name)
		if !ok {
			continue
		}
		samples := out.Samples[name]
		for col, column := range c.Columns() {
			points := make([]utils.DataPoint, 0, len(samples))
			values := make([]float64, 0, len(samples))
			for _, s := range samples {
				if col < len(s.Values) {
					points = append(points, utils.DataPoint{Progress: s.Progress, Value: s.Values[col]})
					values = append(values, s.Values[col])
				}
			}
			r.heading(fmt.Sprintf("📈 %s: %s over execution", name, column))
			r.println(utils.CreateSparkline(values, min(60, r.opts.Width-4)))
			r.println(utils.CreatePlot(points, r.chartConfig()))
		}
	}
}

func (r *writer) chartConfig() utils.ChartConfig {
	width := min(r.opts.Width, 100)
	if r.opts.Plain {
		return utils.PlainChartConfig(width)
	}
	return utils.StyledChartConfig(width)
}
