package trace

import "github.com/mabhi256/jalias/internal/heap"

// Collector samples an aggregate of the model while the trace is replayed.
type Collector interface {
	Name() string
	Columns() []string
	Collect(m *heap.Model) ([]float64, error)
}

// Sample is one collector reading. Progress is the fraction of the trace
// consumed when it was taken, from 0 to 1.
type Sample struct {
	Progress float64
	Values   []float64
}

type minMaxAvgIncoming struct{}

// MinMaxAvgIncoming samples the minimum, maximum and mean number of incoming
// references over live objects. An empty model reads as 0, 0, 0.
func MinMaxAvgIncoming() Collector { return minMaxAvgIncoming{} }

func (minMaxAvgIncoming) Name() string { return "min_max_avg" }

func (minMaxAvgIncoming) Columns() []string { return []string{"Min", "Max", "Avg"} }

func (minMaxAvgIncoming) Collect(m *heap.Model) ([]float64, error) {
	ids := m.ObjIDs()
	if len(ids) == 0 {
		return []float64{0, 0, 0}, nil
	}

	lo, hi, sum := -1, 0, 0
	for _, id := range ids {
		n, err := m.InTotalRefs(id)
		if err != nil {
			return nil, err
		}
		if lo < 0 || n < lo {
			lo = n
		}
		hi = max(hi, n)
		sum += n
	}
	return []float64{float64(lo), float64(hi), float64(sum) / float64(len(ids))}, nil
}

type builtinVsCustom struct{}

// BuiltinVsCustom counts live built-in and application objects.
func BuiltinVsCustom() Collector { return builtinVsCustom{} }

func (builtinVsCustom) Name() string { return "bltin_vs_custom" }

func (builtinVsCustom) Columns() []string { return []string{"Built-in", "Custom"} }

func (builtinVsCustom) Collect(m *heap.Model) ([]float64, error) {
	var builtin, custom float64
	for _, id := range m.ObjIDs() {
		ok, err := m.IsBuiltin(id)
		if err != nil {
			return nil, err
		}
		if ok {
			builtin++
		} else {
			custom++
		}
	}
	return []float64{builtin, custom}, nil
}

// CollectorByName resolves the collector names accepted in configuration.
func CollectorByName(name string) (Collector, bool) {
	for _, c := range []Collector{MinMaxAvgIncoming(), BuiltinVsCustom()} {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
