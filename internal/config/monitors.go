package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mabhi256/jalias/internal/monitor"
)

// MonitorDef names one monitor template.
type MonitorDef struct {
	Name    string `yaml:"name" toml:"name"`
	Monitor Node   `yaml:"monitor" toml:"monitor"`
}

// Node is one combinator of a monitor tree. Exactly one field is set. Ref
// reuses the tree of another definition by name.
type Node struct {
	Ref         string      `yaml:"ref,omitempty" toml:"ref"`
	Observe     *ObserveDef `yaml:"observe,omitempty" toml:"observe"`
	Not         *Node       `yaml:"not,omitempty" toml:"not"`
	Ever        *Node       `yaml:"ever,omitempty" toml:"ever"`
	Always      *Node       `yaml:"always,omitempty" toml:"always"`
	Immediately *Node       `yaml:"immediately,omitempty" toml:"immediately"`
	Any         []Node      `yaml:"any,omitempty" toml:"any"`
	All         []Node      `yaml:"all,omitempty" toml:"all"`
}

// ObserveDef samples either a reference count comparison (Metric, Op, Value)
// or a type predicate (Predicate, Type).
type ObserveDef struct {
	Label     string `yaml:"label,omitempty" toml:"label"`
	Metric    string `yaml:"metric,omitempty" toml:"metric"`
	Op        string `yaml:"op,omitempty" toml:"op"`
	Value     int    `yaml:"value,omitempty" toml:"value"`
	Predicate string `yaml:"predicate,omitempty" toml:"predicate"`
	Type      string `yaml:"type,omitempty" toml:"type"`
}

const (
	PredicateBuiltin    = "builtin"
	PredicateInstanceOf = "instance_of"
)

var ErrMonitorCycle = errors.New("monitor definitions reference each other in a cycle")

// Compile turns definitions into monitor templates, in definition order.
func Compile(defs []MonitorDef) ([]monitor.Template, error) {
	c := &compiler{
		defs:     make(map[string]MonitorDef, len(defs)),
		compiled: make(map[string]*monitor.Monitor, len(defs)),
		visiting: make(map[string]bool),
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, errors.New("monitor definition without a name")
		}
		if _, dup := c.defs[d.Name]; dup {
			return nil, fmt.Errorf("monitor %q defined twice", d.Name)
		}
		c.defs[d.Name] = d
	}

	templates := make([]monitor.Template, 0, len(defs))
	for _, d := range defs {
		tree, err := c.named(d.Name)
		if err != nil {
			return nil, err
		}
		templates = append(templates, monitor.Template{Name: d.Name, Factory: monitor.Prototype(tree)})
	}
	return templates, nil
}

type compiler struct {
	defs     map[string]MonitorDef
	compiled map[string]*monitor.Monitor
	visiting map[string]bool
}

// named compiles a definition once. Prototypes are cloned on binding, so
// sharing a compiled tree between definitions is safe.
func (c *compiler) named(name string) (*monitor.Monitor, error) {
	if tree, ok := c.compiled[name]; ok {
		return tree, nil
	}
	def, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("unknown monitor %q", name)
	}
	if c.visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrMonitorCycle, name)
	}
	c.visiting[name] = true
	defer delete(c.visiting, name)

	tree, err := c.node(def.Monitor)
	if err != nil {
		return nil, fmt.Errorf("monitor %q: %w", name, err)
	}
	c.compiled[name] = tree
	return tree, nil
}

func (c *compiler) node(n Node) (*monitor.Monitor, error) {
	if set := n.kinds(); len(set) != 1 {
		if len(set) == 0 {
			return nil, errors.New("node must set one of ref, observe, not, ever, always, immediately, any, all")
		}
		return nil, fmt.Errorf("node sets %s; only one is allowed", strings.Join(set, " and "))
	}

	switch {
	case n.Ref != "":
		return c.named(n.Ref)
	case n.Observe != nil:
		return n.Observe.compile()
	case n.Not != nil:
		return c.unary(monitor.Not, *n.Not)
	case n.Ever != nil:
		return c.unary(monitor.Ever, *n.Ever)
	case n.Always != nil:
		return c.unary(monitor.Always, *n.Always)
	case n.Immediately != nil:
		return c.unary(monitor.Immediately, *n.Immediately)
	case len(n.Any) > 0:
		return c.list(monitor.Any, n.Any)
	default:
		return c.list(monitor.All, n.All)
	}
}

func (n Node) kinds() []string {
	var set []string
	add := func(name string, ok bool) {
		if ok {
			set = append(set, name)
		}
	}
	add("ref", n.Ref != "")
	add("observe", n.Observe != nil)
	add("not", n.Not != nil)
	add("ever", n.Ever != nil)
	add("always", n.Always != nil)
	add("immediately", n.Immediately != nil)
	add("any", len(n.Any) > 0)
	add("all", len(n.All) > 0)
	return set
}

func (c *compiler) unary(wrap func(*monitor.Monitor) *monitor.Monitor, child Node) (*monitor.Monitor, error) {
	q, err := c.node(child)
	if err != nil {
		return nil, err
	}
	return wrap(q), nil
}

func (c *compiler) list(join func(...*monitor.Monitor) *monitor.Monitor, children []Node) (*monitor.Monitor, error) {
	qs := make([]*monitor.Monitor, 0, len(children))
	for i, child := range children {
		q, err := c.node(child)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		qs = append(qs, q)
	}
	return join(qs...), nil
}

func (o ObserveDef) compile() (*monitor.Monitor, error) {
	pred, err := o.predicate()
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	return monitor.Observe(o.Label, pred), nil
}

func (o ObserveDef) predicate() (monitor.Predicate, error) {
	switch {
	case o.Metric != "" && o.Predicate != "":
		return nil, errors.New("set either metric or predicate, not both")
	case o.Metric != "":
		metric, err := monitor.ParseMetric(o.Metric)
		if err != nil {
			return nil, err
		}
		op, err := monitor.ParseCmpOp(o.Op)
		if err != nil {
			return nil, err
		}
		return monitor.RefCount(metric, op, o.Value), nil
	case o.Predicate == PredicateBuiltin:
		return monitor.Builtin(), nil
	case o.Predicate == PredicateInstanceOf:
		if o.Type == "" {
			return nil, errors.New("instance_of needs a type")
		}
		return monitor.InstanceOf(o.Type), nil
	case o.Predicate != "":
		return nil, fmt.Errorf("unknown predicate %q", o.Predicate)
	default:
		return nil, errors.New("metric or predicate is required")
	}
}
