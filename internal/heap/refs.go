package heap

import "fmt"

// RefKind selects which counter of a Multiplicity an operation touches.
type RefKind uint8

const (
	Stack RefKind = iota // local variables and call arguments
	Heap                 // object fields
	Total                // both; only valid for queries
)

func (k RefKind) String() string {
	switch k {
	case Stack:
		return "stack"
	case Heap:
		return "heap"
	case Total:
		return "total"
	default:
		return fmt.Sprintf("RefKind(%d)", uint8(k))
	}
}

// Multiplicity counts the references from one referrer to one referee.
type Multiplicity struct {
	Stack int
	Heap  int
}

func (mp *Multiplicity) count(kind RefKind) int {
	switch kind {
	case Stack:
		return mp.Stack
	case Heap:
		return mp.Heap
	default:
		return mp.Stack + mp.Heap
	}
}

func (mp *Multiplicity) counter(kind RefKind) *int {
	if kind == Heap {
		return &mp.Heap
	}
	return &mp.Stack
}

func sumRefs(edges map[string]*Multiplicity, kind RefKind) int {
	total := 0
	for _, mp := range edges {
		total += mp.count(kind)
	}
	return total
}

func (m *Model) endpoints(op, referrer, referee string) error {
	if _, err := m.find(referrer); err != nil {
		return refErr(op, referrer, referee, fmt.Errorf("referrer: %w", err))
	}
	if _, err := m.find(referee); err != nil {
		return refErr(op, referrer, referee, fmt.Errorf("referee: %w", err))
	}
	return nil
}

func (m *Model) addRef(op string, kind RefKind, referrer, referee string) error {
	if err := m.endpoints(op, referrer, referee); err != nil {
		return err
	}
	mp, ok := m.out[referrer][referee]
	if !ok {
		mp = &Multiplicity{}
		if m.out[referrer] == nil {
			m.out[referrer] = make(map[string]*Multiplicity)
		}
		if m.in[referee] == nil {
			m.in[referee] = make(map[string]*Multiplicity)
		}
		m.out[referrer][referee] = mp
		m.in[referee][referrer] = mp
	}
	*mp.counter(kind)++
	return nil
}

func (m *Model) removeRef(op string, kind RefKind, referrer, referee string) error {
	if err := m.endpoints(op, referrer, referee); err != nil {
		return err
	}
	mp, ok := m.out[referrer][referee]
	if !ok {
		return refErr(op, referrer, referee, ErrNoReference)
	}
	c := mp.counter(kind)
	if *c == 0 {
		return refErr(op, referrer, referee, ErrCounterUnderflow)
	}
	*c--
	return nil
}

func (m *Model) hasRef(op string, kind RefKind, referrer, referee string) (bool, error) {
	if err := m.endpoints(op, referrer, referee); err != nil {
		return false, err
	}
	mp, ok := m.out[referrer][referee]
	return ok && mp.count(kind) > 0, nil
}

func (m *Model) AddStackRef(referrer, referee string) error {
	return m.addRef("add_stack_ref", Stack, referrer, referee)
}

func (m *Model) AddHeapRef(referrer, referee string) error {
	return m.addRef("add_heap_ref", Heap, referrer, referee)
}

func (m *Model) RemoveStackRef(referrer, referee string) error {
	return m.removeRef("remove_stack_ref", Stack, referrer, referee)
}

func (m *Model) RemoveHeapRef(referrer, referee string) error {
	return m.removeRef("remove_heap_ref", Heap, referrer, referee)
}

// HasStackRef reports whether at least one stack reference goes from referrer
// to referee. Both objects must be live.
func (m *Model) HasStackRef(referrer, referee string) (bool, error) {
	return m.hasRef("has_stack_ref", Stack, referrer, referee)
}

func (m *Model) HasHeapRef(referrer, referee string) (bool, error) {
	return m.hasRef("has_heap_ref", Heap, referrer, referee)
}

// Edge returns a copy of the multiplicity slot between two objects, if one
// was ever created.
func (m *Model) Edge(referrer, referee string) (Multiplicity, bool) {
	mp, ok := m.out[referrer][referee]
	if !ok {
		return Multiplicity{}, false
	}
	return *mp, true
}

func (m *Model) inRefs(op string, kind RefKind, id string) (int, error) {
	if _, err := m.lookup(op, id); err != nil {
		return 0, err
	}
	return sumRefs(m.in[id], kind), nil
}

func (m *Model) outRefs(op string, kind RefKind, id string) (int, error) {
	if _, err := m.lookup(op, id); err != nil {
		return 0, err
	}
	return sumRefs(m.out[id], kind), nil
}

func (m *Model) InStackRefs(id string) (int, error)  { return m.inRefs("in_stack_refs", Stack, id) }
func (m *Model) InHeapRefs(id string) (int, error)   { return m.inRefs("in_heap_refs", Heap, id) }
func (m *Model) InTotalRefs(id string) (int, error)  { return m.inRefs("in_total_refs", Total, id) }
func (m *Model) OutStackRefs(id string) (int, error) { return m.outRefs("out_stack_refs", Stack, id) }
func (m *Model) OutHeapRefs(id string) (int, error)  { return m.outRefs("out_heap_refs", Heap, id) }
func (m *Model) OutTotalRefs(id string) (int, error) { return m.outRefs("out_total_refs", Total, id) }
