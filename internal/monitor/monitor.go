package monitor

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags the combinator variant a Monitor node holds.
type Kind uint8

const (
	KindObserve Kind = iota
	KindNot
	KindEver
	KindAlways
	KindAny
	KindAll
	KindImmediately
)

func (k Kind) String() string {
	switch k {
	case KindObserve:
		return "Observe"
	case KindNot:
		return "Not"
	case KindEver:
		return "Ever"
	case KindAlways:
		return "Always"
	case KindAny:
		return "Any"
	case KindAll:
		return "All"
	case KindImmediately:
		return "Immediately"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ErrUnbound is returned when an Observe node is applied before it has been
// bound to a graph and an object id.
var ErrUnbound = errors.New("observe node is not bound to an object")

// Monitor is one node of a combinator tree. Every variant shares this struct;
// the fields a node uses depend on its Kind:
//
//	Observe      label, pred, graph, objectID, sample
//	Not          child
//	Ever         child, latched (success)
//	Always       child, latched (failure)
//	Immediately  child, latched (done)
//	Any, All     children (retained), repr
type Monitor struct {
	kind Kind

	label    string
	pred     Predicate
	graph    Graph
	objectID string
	sample   bool

	child    *Monitor
	children []*Monitor
	latched  bool

	// Any/All render the children they were built with, not the pruned set.
	repr string
}

// Observe samples pred on every apply. It never freezes.
func Observe(label string, pred Predicate) *Monitor {
	if label == "" && pred != nil {
		label = pred.String()
	}
	return &Monitor{kind: KindObserve, label: label, pred: pred}
}

func Not(q *Monitor) *Monitor { return &Monitor{kind: KindNot, child: q} }

// Ever accepts, permanently, from the first event at which q accepts.
func Ever(q *Monitor) *Monitor { return &Monitor{kind: KindEver, child: q} }

// Always rejects, permanently, from the first event at which q rejects.
func Always(q *Monitor) *Monitor { return &Monitor{kind: KindAlways, child: q} }

// Immediately applies q exactly once and keeps its verdict.
func Immediately(q *Monitor) *Monitor { return &Monitor{kind: KindImmediately, child: q} }

func Any(qs ...*Monitor) *Monitor {
	return &Monitor{kind: KindAny, children: qs, repr: renderList("Any", qs)}
}

func All(qs ...*Monitor) *Monitor {
	return &Monitor{kind: KindAll, children: qs, repr: renderList("All", qs)}
}

func renderList(name string, qs []*Monitor) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = q.String()
	}
	return fmt.Sprintf("%s([%s])", name, strings.Join(parts, ", "))
}

func (m *Monitor) Kind() Kind { return m.kind }

// Apply advances the monitor by one event.
func (m *Monitor) Apply() error {
	switch m.kind {
	case KindObserve:
		if m.pred == nil || m.graph == nil {
			return ErrUnbound
		}
		ok, err := m.pred.Eval(m.graph, m.objectID)
		if err != nil {
			return fmt.Errorf("observe %q on object %s: %w", m.label, m.objectID, err)
		}
		m.sample = ok

	case KindNot:
		return m.child.Apply()

	case KindEver:
		if m.latched {
			return nil
		}
		if err := m.child.Apply(); err != nil {
			return err
		}
		if m.child.IsAccepting() {
			m.latched = true
		}

	case KindAlways:
		if m.latched {
			return nil
		}
		if err := m.child.Apply(); err != nil {
			return err
		}
		if !m.child.IsAccepting() {
			m.latched = true
		}

	case KindImmediately:
		if m.latched {
			return nil
		}
		if err := m.child.Apply(); err != nil {
			return err
		}
		m.latched = true

	case KindAny, KindAll:
		if m.IsFrozen() {
			return nil
		}
		for _, q := range m.children {
			if err := q.Apply(); err != nil {
				return err
			}
		}
		m.prune()
	}
	return nil
}

// prune drops children whose frozen verdict can no longer affect the result:
// rejecting ones for Any, accepting ones for All.
func (m *Monitor) prune() {
	useless := m.kind == KindAll
	kept := m.children[:0]
	for _, q := range m.children {
		if q.IsFrozen() && q.IsAccepting() == useless {
			continue
		}
		kept = append(kept, q)
	}
	clear(m.children[len(kept):])
	m.children = kept
}

func (m *Monitor) IsAccepting() bool {
	switch m.kind {
	case KindObserve:
		return m.sample
	case KindNot:
		return !m.child.IsAccepting()
	case KindEver:
		return m.latched
	case KindAlways:
		return !m.latched
	case KindImmediately:
		return m.child.IsAccepting()
	case KindAny:
		for _, q := range m.children {
			if q.IsAccepting() {
				return true
			}
		}
		return false
	case KindAll:
		for _, q := range m.children {
			if !q.IsAccepting() {
				return false
			}
		}
		return true
	}
	return false
}

func (m *Monitor) IsFrozen() bool {
	switch m.kind {
	case KindObserve:
		return false
	case KindNot:
		return m.child.IsFrozen()
	case KindEver, KindAlways, KindImmediately:
		return m.latched
	case KindAny, KindAll:
		// decisive: Any has a frozen acceptor, All has a frozen rejector.
		decisive := m.kind == KindAny
		settled := true
		for _, q := range m.children {
			frozen := q.IsFrozen()
			if frozen && q.IsAccepting() == decisive {
				return true
			}
			if !frozen {
				settled = false
			}
		}
		// Every retained child is frozen with the non-decisive verdict,
		// vacuously so for an empty list.
		return settled
	}
	return false
}

// Clone returns a deep copy carrying the same state and binding.
func (m *Monitor) Clone() *Monitor {
	c := *m
	if m.child != nil {
		c.child = m.child.Clone()
	}
	if m.children != nil {
		c.children = make([]*Monitor, len(m.children))
		for i, q := range m.children {
			c.children[i] = q.Clone()
		}
	}
	return &c
}

// Bind returns a clone of m whose Observe nodes sample g for objectID.
func (m *Monitor) Bind(g Graph, objectID string) *Monitor {
	c := m.Clone()
	c.bind(g, objectID)
	return c
}

func (m *Monitor) bind(g Graph, objectID string) {
	switch m.kind {
	case KindObserve:
		m.graph = g
		m.objectID = objectID
	case KindAny, KindAll:
		for _, q := range m.children {
			q.bind(g, objectID)
		}
	default:
		m.child.bind(g, objectID)
	}
}

func (m *Monitor) String() string {
	switch m.kind {
	case KindObserve:
		return m.label
	case KindAny, KindAll:
		return m.repr
	default:
		return fmt.Sprintf("%s(%s)", m.kind, m.child.String())
	}
}

// Retained reports how many children an Any/All node still evaluates.
func (m *Monitor) Retained() int { return len(m.children) }
