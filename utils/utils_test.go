package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type tab int

func TestCycleEnum(t *testing.T) {
	assert.Equal(t, tab(1), NextEnum(tab(0), 2))
	assert.Equal(t, tab(0), NextEnum(tab(2), 2))
	assert.Equal(t, tab(2), PrevEnum(tab(0), 2))
	assert.Equal(t, tab(0), CycleEnum(tab(1), -4, 2))
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{1500 * time.Millisecond, "00:00:01"},
		{61 * time.Second, "00:01:01"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "26:03:04"},
		{-time.Second, "00:00:00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatClock(tc.d), tc.d.String())
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500.0μs", FormatDuration(500*time.Microsecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "1m 30s", FormatDuration(90*time.Second))
	assert.Equal(t, "2h 5m", FormatDuration(2*time.Hour+5*time.Minute))
}

func TestDownsample(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}
	assert.Equal(t, []float64{0, 4, 8}, Downsample(values, 3))
	assert.Equal(t, []float64{8}, Downsample(values, 1))
	assert.Equal(t, values, Downsample(values, 20))
}

func TestCreateSparkline(t *testing.T) {
	assert.Equal(t, "▁█", CreateSparkline([]float64{1, 2}, 10))
	assert.Equal(t, "───", CreateSparkline([]float64{3, 3, 3}, 10))
	assert.Empty(t, CreateSparkline(nil, 10))
	assert.Equal(t, 4, len([]rune(CreateSparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4))))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "java/ut...", TruncateString("java/util/HashMap", 10))
	assert.Equal(t, "..", TruncateString("java/util/HashMap", 2))
	assert.Equal(t, "ab   ", PadRight("ab", 5))
}

func TestAcceptanceIcon(t *testing.T) {
	assert.Equal(t, "✅", AcceptanceIcon(1))
	assert.Equal(t, "⚠️", AcceptanceIcon(0.5))
	assert.Equal(t, "🔴", AcceptanceIcon(0.1))
}

func TestCreatePlot(t *testing.T) {
	assert.Equal(t, "No data", CreatePlot(nil, PlainChartConfig(60)))

	plot := CreatePlot([]DataPoint{{0, 0}, {0.5, 2}, {1, 1}}, PlainChartConfig(60))
	lines := strings.Split(plot, "\n")
	assert.Len(t, lines, ChartHeight+2)
	assert.Contains(t, lines[0], "2.00 ┤")
	assert.Contains(t, lines[ChartHeight-1], "0.00 ┤")
	assert.Equal(t, 3, strings.Count(plot, "●"))
	assert.Contains(t, lines[len(lines)-1], "0%")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "100%"))
}

func TestHasExtension(t *testing.T) {
	rotated := []*regexp.Regexp{regexp.MustCompile(`\.trace\.\d+$`)}
	exts := []string{".trace"}
	assert.True(t, hasExtension("app.trace", exts, rotated))
	assert.True(t, hasExtension("app.trace.3", exts, rotated))
	assert.False(t, hasExtension("app.trace.old", exts, rotated))
	assert.False(t, hasExtension("app.log", exts, nil))
}
