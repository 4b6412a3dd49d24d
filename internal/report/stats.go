// Package report renders analysis outcomes: acceptance statistics, the
// per-object listing and collector samples.
package report

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/mabhi256/jalias/internal/heap"
)

// MonitorStat counts, for one monitor, how many objects ended with it
// accepting and frozen.
type MonitorStat struct {
	Monitor   string
	Accepting int
	Frozen    int
	Total     int
}

func (s MonitorStat) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepting) / float64(s.Total)
}

// Stats aggregates one bucket of results. Monitors keep the order in which
// they first appear on objects sorted by id.
type Stats struct {
	Objects  int
	Monitors []MonitorStat
}

// Tally counts accepting monitors over a bucket of results. Monitors are
// identified by their rendering.
func Tally(results map[string]heap.Result) Stats {
	stats := Stats{Objects: len(results)}
	index := make(map[string]int)
	for _, id := range SortedIDs(results) {
		for _, m := range results[id].Monitors {
			key := m.String()
			i, ok := index[key]
			if !ok {
				i = len(stats.Monitors)
				index[key] = i
				stats.Monitors = append(stats.Monitors, MonitorStat{Monitor: key})
			}
			s := &stats.Monitors[i]
			s.Total++
			if m.IsAccepting() {
				s.Accepting++
			}
			if m.IsFrozen() {
				s.Frozen++
			}
		}
	}
	return stats
}

// Combine adds two tallies, as if their buckets had been one.
func Combine(a, b Stats) Stats {
	out := Stats{Objects: a.Objects + b.Objects}
	out.Monitors = slices.Clone(a.Monitors)
	index := make(map[string]int, len(out.Monitors))
	for i, s := range out.Monitors {
		index[s.Monitor] = i
	}
	for _, s := range b.Monitors {
		i, ok := index[s.Monitor]
		if !ok {
			out.Monitors = append(out.Monitors, s)
			continue
		}
		out.Monitors[i].Accepting += s.Accepting
		out.Monitors[i].Frozen += s.Frozen
		out.Monitors[i].Total += s.Total
	}
	return out
}

// SortedIDs orders object ids numerically. Ids that are not numbers follow,
// in lexical order.
func SortedIDs(results map[string]heap.Result) []string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

func compareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil && na != nb:
		return cmp.Compare(na, nb)
	case errA == nil && errB != nil:
		return -1
	case errA != nil && errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
