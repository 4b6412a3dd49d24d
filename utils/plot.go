package utils

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	ChartHeight     = 10
	YAxisLabelWidth = 10
	MinChartWidth   = 20
	MaxAxisLabels   = 6
	MinLabelSpacing = 10
)

type Renderer interface {
	Render(text string) string
}

type ChartStyles struct {
	Muted Renderer
	Point Renderer
}

// DataPoint is one sample of a series. Progress is the fraction of the
// trace replayed when it was taken.
type DataPoint struct {
	Progress float64
	Value    float64
}

type ChartConfig struct {
	Width  int
	Height int
	Styles ChartStyles
	Legend string
}

// SimpleRenderer returns the text unchanged.
type SimpleRenderer struct{}

func (s SimpleRenderer) Render(text string) string {
	return text
}

// StyleRenderer adapts a lipgloss style to Renderer.
type StyleRenderer struct {
	Style lipgloss.Style
}

func (r StyleRenderer) Render(text string) string {
	return r.Style.Render(text)
}

func StyledChartConfig(width int) ChartConfig {
	return ChartConfig{
		Width:  width,
		Height: ChartHeight,
		Styles: ChartStyles{Muted: StyleRenderer{MutedStyle}, Point: StyleRenderer{InfoStyle}},
	}
}

func PlainChartConfig(width int) ChartConfig {
	return ChartConfig{
		Width:  width,
		Height: ChartHeight,
		Styles: ChartStyles{Muted: SimpleRenderer{}, Point: SimpleRenderer{}},
	}
}

// CreatePlot draws a line chart of a series over trace progress, 0% at the
// left edge and 100% at the right.
func CreatePlot(points []DataPoint, config ChartConfig) string {
	if len(points) == 0 {
		return "No data"
	}
	width := config.Width - YAxisLabelWidth - 2
	if width < MinChartWidth {
		width = MinChartWidth
	}
	height := max(config.Height, 2)

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	maxVal, minVal := slices.Max(values), slices.Min(values)
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	grid := make([][]string, height)
	for i := range grid {
		grid[i] = make([]string, width)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	type cell struct{ x, y int }
	cells := make([]cell, len(points))
	for i, p := range points {
		x := int(p.Progress*float64(width-1) + 0.5)
		y := int((maxVal-p.Value)/(maxVal-minVal)*float64(height-1) + 0.5)
		cells[i] = cell{min(max(x, 0), width-1), min(max(y, 0), height-1)}
	}

	for i := 0; i+1 < len(cells); i++ {
		drawLine(grid, cells[i].x, cells[i].y, cells[i+1].x, cells[i+1].y, config.Styles.Muted)
	}
	for _, c := range cells {
		grid[c.y][c.x] = config.Styles.Point.Render("●")
	}

	lines := make([]string, 0, height+4)
	for row := range height {
		threshold := maxVal - (maxVal-minVal)*float64(row)/float64(height-1)
		label := fmt.Sprintf("%*.2f", YAxisLabelWidth-1, threshold)
		lines = append(lines, config.Styles.Muted.Render(label+" ┤")+strings.Join(grid[row], ""))
	}
	lines = append(lines, createProgressAxis(width, config.Styles.Muted)...)

	if config.Legend != "" {
		lines = append(lines, "", config.Styles.Muted.Render(config.Legend))
	}
	return strings.Join(lines, "\n")
}

// drawLine joins two cells with dots, leaving existing marks in place.
func drawLine(grid [][]string, x1, y1, x2, y2 int, muted Renderer) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		if grid[y][x] == " " {
			grid[y][x] = muted.Render("·")
		}
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func createProgressAxis(width int, muted Renderer) []string {
	indent := strings.Repeat(" ", YAxisLabelWidth)
	axisLine := indent + "└" + strings.Repeat("─", width)

	labels := []byte(strings.Repeat(" ", width+5))
	n := max(2, min(MaxAxisLabels, width/MinLabelSpacing))
	for i := range n {
		label := fmt.Sprintf("%d%%", i*100/(n-1))
		pos := i * (width - 1) / (n - 1)
		if pos+len(label) > len(labels) {
			pos = len(labels) - len(label)
		}
		copy(labels[pos:], label)
	}

	return []string{
		muted.Render(axisLine),
		muted.Render(indent + " " + strings.TrimRight(string(labels), " ")),
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
