package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/mabhi256/jalias/internal/trace"
)

// WriteSamples writes one line per sample: the progress fraction followed by
// the collected values, separated by ", ".
func WriteSamples(w io.Writer, samples []trace.Sample) error {
	var b strings.Builder
	for _, s := range samples {
		b.WriteString(formatFloat(s.Progress))
		for _, v := range s.Values {
			b.WriteString(", ")
			b.WriteString(formatFloat(v))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SampleNames returns the collectors that produced samples, sorted.
func SampleNames(out *trace.Outcome) []string {
	names := make([]string, 0, len(out.Samples))
	for name := range out.Samples {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SampleFileName is <collector>_<base>_<run id>.csv.
func SampleFileName(collector, base, runID string) string {
	base = strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	if base == "" || base == "." || base == "-" {
		base = "stdin"
	}
	return fmt.Sprintf("%s_%s_%s.csv", collector, base, runID)
}

// WriteSampleFiles writes one CSV file per collector into dir and returns
// their paths.
func WriteSampleFiles(dir, source string, out *trace.Outcome) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, name := range SampleNames(out) {
		path := filepath.Join(dir, SampleFileName(name, source, out.RunID))
		if err := writeSampleFile(path, out.Samples[name]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSampleFile(path string, samples []trace.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteSamples(file, samples); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
