package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mabhi256/jalias/internal/trace"
	"github.com/mabhi256/jalias/utils"
)

var validateCmd = &cobra.Command{
	Use:               "validate [trace-file]",
	Short:             "Decode a trace and report its opcode histogram",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(traceExtensions, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		var r io.Reader
		var opts []trace.ScanOption
		if source == stdinSource {
			r = cmd.InOrStdin()
			opts = append(opts, trace.StopAtBlankLine())
		} else {
			file, err := os.Open(source)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open file", err)
			}
			defer file.Close()
			r = file
		}

		counts, lines, err := histogram(trace.NewScanner(r, opts...))
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("%s is not a valid trace", source), err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✅ Valid trace: %s\n", source)
		fmt.Fprintf(w, "Lines: %d  |  Events: %d\n", lines, sum(counts))
		for _, op := range trace.Opcodes() {
			fmt.Fprintf(w, "   %-8s %d\n", op, counts[op])
		}
		return nil
	},
}

func histogram(s *trace.Scanner) (map[trace.Opcode]int, int, error) {
	counts := make(map[trace.Opcode]int)
	for s.Scan() {
		counts[s.Event().Op]++
	}
	if err := s.Err(); err != nil {
		return nil, s.LineNum(), err
	}
	return counts, s.LineNum(), nil
}

func sum(counts map[trace.Opcode]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
