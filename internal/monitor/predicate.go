package monitor

import (
	"fmt"
	"strings"
)

// Graph is the read-only view of the reference graph that predicates sample.
// Every method fails when the object is not live.
type Graph interface {
	InStackRefs(id string) (int, error)
	InHeapRefs(id string) (int, error)
	InTotalRefs(id string) (int, error)
	OutStackRefs(id string) (int, error)
	OutHeapRefs(id string) (int, error)
	OutTotalRefs(id string) (int, error)
	ObjType(id string) (string, error)
}

// Predicate is a boolean test over one object of a Graph.
type Predicate interface {
	Eval(g Graph, id string) (bool, error)
	String() string
}

// Metric names one of the reference counters a Graph exposes.
type Metric string

const (
	InStackRefs  Metric = "in_stack_refs"
	InHeapRefs   Metric = "in_heap_refs"
	InTotalRefs  Metric = "in_total_refs"
	OutStackRefs Metric = "out_stack_refs"
	OutHeapRefs  Metric = "out_heap_refs"
	OutTotalRefs Metric = "out_total_refs"
)

func (mt Metric) read(g Graph, id string) (int, error) {
	switch mt {
	case InStackRefs:
		return g.InStackRefs(id)
	case InHeapRefs:
		return g.InHeapRefs(id)
	case InTotalRefs:
		return g.InTotalRefs(id)
	case OutStackRefs:
		return g.OutStackRefs(id)
	case OutHeapRefs:
		return g.OutHeapRefs(id)
	case OutTotalRefs:
		return g.OutTotalRefs(id)
	default:
		return 0, fmt.Errorf("unknown metric %q", string(mt))
	}
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch mt := Metric(s); mt {
	case InStackRefs, InHeapRefs, InTotalRefs, OutStackRefs, OutHeapRefs, OutTotalRefs:
		return mt, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// CmpOp is an integer comparison operator.
type CmpOp string

const (
	Less         CmpOp = "<"
	LessEqual    CmpOp = "<="
	Equal        CmpOp = "=="
	NotEqual     CmpOp = "!="
	GreaterEqual CmpOp = ">="
	Greater      CmpOp = ">"
)

func ParseCmpOp(s string) (CmpOp, error) {
	switch op := CmpOp(s); op {
	case Less, LessEqual, Equal, NotEqual, GreaterEqual, Greater:
		return op, nil
	}
	return "", fmt.Errorf("unknown comparison operator %q", s)
}

func (op CmpOp) compare(a, b int) bool {
	switch op {
	case Less:
		return a < b
	case LessEqual:
		return a <= b
	case Equal:
		return a == b
	case NotEqual:
		return a != b
	case GreaterEqual:
		return a >= b
	case Greater:
		return a > b
	}
	return false
}

type refCount struct {
	metric Metric
	op     CmpOp
	value  int
}

// RefCount tests a reference counter of the object against a constant,
// e.g. RefCount(InTotalRefs, LessEqual, 1).
func RefCount(metric Metric, op CmpOp, value int) Predicate {
	return refCount{metric: metric, op: op, value: value}
}

func (p refCount) Eval(g Graph, id string) (bool, error) {
	n, err := p.metric.read(g, id)
	if err != nil {
		return false, err
	}
	return p.op.compare(n, p.value), nil
}

func (p refCount) String() string {
	return fmt.Sprintf("%s %s %d", p.metric, p.op, p.value)
}

// UnknownType is the type of objects seen only through references.
const UnknownType = "(unknown)"

var builtinPrefixes = []string{"java/", "sun/", "["}

// IsBuiltinType reports whether a type name belongs to the JDK, an array, or
// was never announced by an allocation event.
func IsBuiltinType(t string) bool {
	if t == UnknownType {
		return true
	}
	for _, prefix := range builtinPrefixes {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

type builtin struct{}

// Builtin holds for objects whose type satisfies IsBuiltinType.
func Builtin() Predicate { return builtin{} }

func (builtin) Eval(g Graph, id string) (bool, error) {
	t, err := g.ObjType(id)
	if err != nil {
		return false, err
	}
	return IsBuiltinType(t), nil
}

func (builtin) String() string { return "builtin" }

type instanceOf struct{ typ string }

// InstanceOf holds for objects whose current type is exactly typ.
func InstanceOf(typ string) Predicate { return instanceOf{typ: typ} }

func (p instanceOf) Eval(g Graph, id string) (bool, error) {
	t, err := g.ObjType(id)
	if err != nil {
		return false, err
	}
	return t == p.typ, nil
}

func (p instanceOf) String() string { return "instance_of " + p.typ }

// PredicateFunc adapts a plain function to Predicate.
type PredicateFunc struct {
	Label string
	Fn    func(g Graph, id string) (bool, error)
}

func (p PredicateFunc) Eval(g Graph, id string) (bool, error) { return p.Fn(g, id) }
func (p PredicateFunc) String() string                        { return p.Label }
