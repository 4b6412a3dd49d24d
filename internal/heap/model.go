package heap

import (
	"maps"

	"github.com/mabhi256/jalias/internal/monitor"
)

// NullID denotes "no object" (null or a primitive value) in trace events. It
// is never a node of the model.
const NullID = "0"

// UnknownType is the type of objects created by a reference before their
// allocation event was seen.
const UnknownType = monitor.UnknownType

type object struct {
	typ      string
	monitors []*monitor.Monitor
}

// Result is the snapshot of an object taken when it leaves the model.
type Result struct {
	Type     string
	Monitors []*monitor.Monitor
}

// Model holds the live objects of a replayed execution and the stack and heap
// references between them. Each ordered (referrer, referee) pair owns one
// Multiplicity slot which is created on first use and kept until one of its
// endpoints is removed, even when both counters drop to zero.
type Model struct {
	templates []monitor.Template
	objects   map[string]*object

	// out[referrer][referee] and in[referee][referrer] share the same slot.
	out map[string]map[string]*Multiplicity
	in  map[string]map[string]*Multiplicity

	results map[string]Result
}

// NewModel creates an empty model that gives every object one monitor per
// template.
func NewModel(templates []monitor.Template) (*Model, error) {
	if err := monitor.ValidateTemplates(templates); err != nil {
		return nil, err
	}
	return &Model{
		templates: templates,
		objects:   make(map[string]*object),
		out:       make(map[string]map[string]*Multiplicity),
		in:        make(map[string]map[string]*Multiplicity),
		results:   make(map[string]Result),
	}, nil
}

// Templates returns the monitor templates in registration order.
func (m *Model) Templates() []monitor.Template { return m.templates }

func (m *Model) find(id string) (*object, error) {
	if id == NullID {
		return nil, ErrNullObject
	}
	obj, ok := m.objects[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

func (m *Model) lookup(op, id string) (*object, error) {
	obj, err := m.find(id)
	if err != nil {
		return nil, objErr(op, id, err)
	}
	return obj, nil
}

// AddObj creates an object. An empty type means UnknownType.
func (m *Model) AddObj(id, typ string) error {
	if id == NullID {
		return objErr("add_obj", id, ErrNullObject)
	}
	if _, ok := m.objects[id]; ok {
		return objErr("add_obj", id, ErrObjectExists)
	}
	if typ == "" {
		typ = UnknownType
	}
	m.objects[id] = &object{
		typ:      typ,
		monitors: monitor.Instantiate(m.templates, m, id),
	}
	return nil
}

func (m *Model) HasObj(id string) bool {
	_, ok := m.objects[id]
	return ok
}

func (m *Model) SetObjType(id, typ string) error {
	obj, err := m.lookup("set_obj_type", id)
	if err != nil {
		return err
	}
	obj.typ = typ
	return nil
}

func (m *Model) ObjType(id string) (string, error) {
	obj, err := m.lookup("get_obj_type", id)
	if err != nil {
		return "", err
	}
	return obj.typ, nil
}

// Monitors returns the live monitor instances of an object so the caller can
// apply them.
func (m *Model) Monitors(id string) ([]*monitor.Monitor, error) {
	obj, err := m.lookup("get_obj_monitors", id)
	if err != nil {
		return nil, err
	}
	return obj.monitors, nil
}

// ResetMonitors discards the accumulated monitor state of an object and
// instantiates fresh monitors from the templates.
func (m *Model) ResetMonitors(id string) error {
	obj, err := m.lookup("reset_monitors", id)
	if err != nil {
		return err
	}
	obj.monitors = monitor.Instantiate(m.templates, m, id)
	return nil
}

// RemoveObj deletes an object together with every edge touching it and
// records its type and monitors in the results. Unless force is set the
// object must have no incoming or outgoing references left.
func (m *Model) RemoveObj(id string, force bool) error {
	obj, err := m.lookup("remove_obj", id)
	if err != nil {
		return err
	}
	if !force && (sumRefs(m.in[id], Total) > 0 || sumRefs(m.out[id], Total) > 0) {
		return objErr("remove_obj", id, ErrOutstandingRefs)
	}

	m.results[id] = Result{Type: obj.typ, Monitors: obj.monitors}

	for referee := range m.out[id] {
		delete(m.in[referee], id)
	}
	for referrer := range m.in[id] {
		delete(m.out[referrer], id)
	}
	delete(m.out, id)
	delete(m.in, id)
	delete(m.objects, id)
	return nil
}

// ObjIDs returns a copy of the live object ids in no particular order. The
// copy stays valid while the model changes.
func (m *Model) ObjIDs() []string {
	ids := make([]string, 0, len(m.objects))
	for id := range m.objects {
		ids = append(ids, id)
	}
	return ids
}

// Len is the number of live objects.
func (m *Model) Len() int { return len(m.objects) }

// Results returns a copy of the snapshots of every removed object.
func (m *Model) Results() map[string]Result {
	return maps.Clone(m.results)
}

// Remaining snapshots the objects that are still live. After a complete
// trace these are objects whose deallocation was never observed.
func (m *Model) Remaining() map[string]Result {
	out := make(map[string]Result, len(m.objects))
	for id, obj := range m.objects {
		out[id] = Result{Type: obj.typ, Monitors: obj.monitors}
	}
	return out
}

func (m *Model) IsInstanceOf(id, typ string) (bool, error) {
	obj, err := m.lookup("is_instance_of", id)
	if err != nil {
		return false, err
	}
	return obj.typ == typ, nil
}

// IsBuiltin reports whether the object is a JDK object, an array, or of
// unknown type.
func (m *Model) IsBuiltin(id string) (bool, error) {
	obj, err := m.lookup("is_builtin", id)
	if err != nil {
		return false, err
	}
	return monitor.IsBuiltinType(obj.typ), nil
}

var _ monitor.Graph = (*Model)(nil)
