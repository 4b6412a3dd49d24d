package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mabhi256/jalias/internal/heap"
	"github.com/mabhi256/jalias/utils"
)

const maxTypeWidth = 60

var divider = strings.Repeat("-", 50)

// Flags renders the accepting and frozen markers of a monitor.
func Flags(accepting, frozen bool) string {
	a, f := " ", " "
	if accepting {
		a = "A"
	}
	if frozen {
		f = "F"
	}
	return fmt.Sprintf("[%s] [%s]", a, f)
}

// WriteObjects lists every object of a bucket with the final state of each
// of its monitors.
func WriteObjects(w io.Writer, title string, results map[string]heap.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", title)
	fmt.Fprintln(&b, "A = Accepting, F = Frozen")
	fmt.Fprintln(&b, divider)
	for _, id := range SortedIDs(results) {
		res := results[id]
		fmt.Fprintf(&b, "OBJECT: %s, TYPE: %s\n", id, utils.TruncateString(res.Type, maxTypeWidth))
		for _, m := range res.Monitors {
			fmt.Fprintf(&b, "\t%s  %s\n", Flags(m.IsAccepting(), m.IsFrozen()), m.String())
		}
		fmt.Fprintln(&b, divider)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
