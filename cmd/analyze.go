package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mabhi256/jalias/internal/config"
	"github.com/mabhi256/jalias/internal/report"
	"github.com/mabhi256/jalias/internal/trace"
	"github.com/mabhi256/jalias/internal/tui"
	"github.com/mabhi256/jalias/utils"
)

const stdinSource = "-"

var traceExtensions = []string{".trace", ".txt"}

type analyzeFlags struct {
	queryRate   int
	collectRate int
	updateRate  int
	output      string
	configPath  string
	csvDir      string
	noRemaining bool
}

var analyzeOpts analyzeFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze [trace-file...]",
	Short: "Replay traces and check the monitors on every object",
	Long: `Replay one or more execution traces and report, per monitor, how many
objects ended in an accepting state. Use "-" to read a trace from stdin; input
then ends at the first blank line.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(traceExtensions, true),
	RunE:              runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if n := countStdin(args); n > 1 {
		return NewExitError(ExitCommandError, "stdin (-) can only be analysed once")
	}
	if cfg.Analysis.Output == config.OutputTUI {
		if len(args) != 1 {
			return NewExitError(ExitCommandError, "tui output takes exactly one trace")
		}
		if !isTerminal(cmd.OutOrStdout()) {
			return NewExitError(ExitCommandError, "tui output needs an interactive terminal, use -o cli")
		}
	}

	outcomes, err := analyzeAll(cmd, cfg, args)
	if err != nil {
		return err
	}

	for i, source := range args {
		if err := present(cmd, cfg, source, outcomes[i]); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(analyzeOpts.configPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	flags := cmd.Flags()
	a := &cfg.Analysis
	if flags.Changed("query-rate") {
		a.QueryRate = analyzeOpts.queryRate
	}
	if flags.Changed("collect-rate") {
		a.CollectRate = analyzeOpts.collectRate
	}
	if flags.Changed("update-rate") {
		a.UpdateRate = analyzeOpts.updateRate
	}
	if flags.Changed("output") {
		a.Output = analyzeOpts.output
	}
	if flags.Changed("csv-dir") {
		a.CSVDir = analyzeOpts.csvDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func countStdin(args []string) int {
	n := 0
	for _, a := range args {
		if a == stdinSource {
			n++
		}
	}
	return n
}

// analyzeAll runs one independent driver per trace. Outcomes keep the order
// of sources.
func analyzeAll(cmd *cobra.Command, cfg *config.Config, sources []string) ([]*trace.Outcome, error) {
	progress := newProgressPrinter(cmd.ErrOrStderr(), len(sources) > 1)
	outcomes := make([]*trace.Outcome, len(sources))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, source := range sources {
		g.Go(func() error {
			out, err := analyzeOne(cmd.InOrStdin(), cfg, source, progress)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("analysis of %s failed", source), err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func analyzeOne(stdin io.Reader, cfg *config.Config, source string, progress *progressPrinter) (*trace.Outcome, error) {
	var (
		events []trace.Event
		err    error
	)
	if source == stdinSource {
		events, err = trace.ReadAll(stdin, trace.StopAtBlankLine())
	} else {
		events, err = trace.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	templates, err := config.Compile(cfg.Monitors)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Analysis.DriverOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = slog.Default().With("trace", source)
	opts.Progress = func(done, total int) { progress.update(source, done, total) }

	driver, err := trace.NewDriver(templates, opts)
	if err != nil {
		return nil, err
	}
	return driver.Run(events)
}

func present(cmd *cobra.Command, cfg *config.Config, source string, out *trace.Outcome) error {
	w := cmd.OutOrStdout()

	if cfg.Analysis.Output == config.OutputTUI {
		if err := tui.StartTUI(source, out); err != nil {
			return WrapExitError(ExitFailure, "tui failed", err)
		}
	} else {
		opts := report.Options{
			Format:   cfg.Analysis.Output,
			Combined: !analyzeOpts.noRemaining,
			Width:    utils.TerminalWidth(),
			Plain:    !isTerminal(w),
		}
		if err := report.Write(w, source, out, opts); err != nil {
			return WrapExitError(ExitFailure, "failed to write report", err)
		}
		if verbose {
			if err := report.WriteObjects(w, "DEALLOCATED OBJECTS", out.Deallocated); err != nil {
				return WrapExitError(ExitFailure, "failed to write report", err)
			}
			if err := report.WriteObjects(w, "REMAINING OBJECTS", out.Remaining); err != nil {
				return WrapExitError(ExitFailure, "failed to write report", err)
			}
		}
		fmt.Fprintln(w)
	}

	if cfg.Analysis.CSVDir != "" {
		paths, err := report.WriteSampleFiles(cfg.Analysis.CSVDir, source, out)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to write samples", err)
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.ErrOrStderr(), "💾 Samples written: %s\n", p)
		}
	}
	return nil
}

// progressPrinter serialises progress lines of concurrently analysed traces.
type progressPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	prefix bool
	line   *color.Color
	done   *color.Color
}

func newProgressPrinter(w io.Writer, prefix bool) *progressPrinter {
	return &progressPrinter{
		w:      w,
		prefix: prefix,
		line:   color.New(color.FgCyan),
		done:   color.New(color.FgGreen),
	}
}

func (p *progressPrinter) update(source string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := ""
	if p.prefix {
		label = fmt.Sprintf("[%s] ", source)
	}
	if done >= total {
		p.done.Fprintf(p.w, "✅ %sProcessed %d lines\n", label, total)
		return
	}
	p.line.Fprintf(p.w, "⏳ %sProcessing line %d/%d\n", label, done, total)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.IntVarP(&analyzeOpts.queryRate, "query-rate", "q", 1, "Apply monitors after every N-th event")
	flags.IntVarP(&analyzeOpts.collectRate, "collect-rate", "c", 1, "Sample collectors before every N-th event")
	flags.IntVarP(&analyzeOpts.updateRate, "update-rate", "u", 1000, "Report progress every N-th event")
	flags.StringVarP(&analyzeOpts.output, "output", "o", config.OutputCLI, "Output format (cli, cli-more, tui)")
	flags.StringVar(&analyzeOpts.configPath, "config", "", "YAML or TOML configuration file")
	flags.StringVar(&analyzeOpts.csvDir, "csv-dir", "", "Write collector samples as CSV files into this directory")
	flags.BoolVar(&analyzeOpts.noRemaining, "no-remaining", false, "Do not count remaining objects together with deallocated ones")

	analyzeCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputCLI, config.OutputCLIMore, config.OutputTUI}, cobra.ShellCompDirectiveNoFileComp
	})
	analyzeCmd.RegisterFlagCompletionFunc("config", utils.CompleteFilesByExtension([]string{".yaml", ".yml", ".toml"}, false))
}

