package heap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/jalias/internal/monitor"
)

func unaliased() monitor.Template {
	return monitor.Template{
		Name:    "always-unaliased",
		Factory: monitor.Prototype(monitor.Always(monitor.Observe("Object is unaliased", monitor.RefCount(monitor.InTotalRefs, monitor.LessEqual, 1)))),
	}
}

func newModel(t *testing.T, ids ...string) *Model {
	t.Helper()
	m, err := NewModel([]monitor.Template{unaliased()})
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, m.AddObj(id, "T"))
	}
	return m
}

func TestAddObj(t *testing.T) {
	m := newModel(t)
	require.NoError(t, m.AddObj("1", ""))
	assert.True(t, m.HasObj("1"))

	typ, err := m.ObjType("1")
	require.NoError(t, err)
	assert.Equal(t, UnknownType, typ)

	mons, err := m.Monitors("1")
	require.NoError(t, err)
	require.Len(t, mons, 1)
	assert.Equal(t, "Always(Object is unaliased)", mons[0].String())

	err = m.AddObj("1", "T")
	assert.ErrorIs(t, err, ErrObjectExists)
	var me *ModelError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "add_obj", me.Op)
	assert.Equal(t, "1", me.ObjectID)
}

func TestAddObj_RejectsNullID(t *testing.T) {
	m := newModel(t)
	assert.ErrorIs(t, m.AddObj(NullID, "T"), ErrNullObject)
	assert.False(t, m.HasObj(NullID))
}

func TestNewModel_RejectsBadTemplates(t *testing.T) {
	_, err := NewModel([]monitor.Template{unaliased(), unaliased()})
	assert.Error(t, err)
}

func TestObjectOperationsRequireLiveObject(t *testing.T) {
	m := newModel(t)
	ops := map[string]error{
		"set_obj_type":   m.SetObjType("9", "T"),
		"reset_monitors": m.ResetMonitors("9"),
		"remove_obj":     m.RemoveObj("9", true),
	}
	_, ops["get_obj_type"] = m.ObjType("9")
	_, ops["in_total_refs"] = m.InTotalRefs("9")
	_, ops["out_heap_refs"] = m.OutHeapRefs("9")
	_, ops["is_builtin"] = m.IsBuiltin("9")
	for op, err := range ops {
		assert.ErrorIs(t, err, ErrObjectNotFound, op)
		var me *ModelError
		if assert.True(t, errors.As(err, &me), op) {
			assert.Equal(t, op, me.Op)
		}
	}
}

func TestReferenceOperationsRequireBothEndpoints(t *testing.T) {
	m := newModel(t, "a")
	assert.ErrorIs(t, m.AddStackRef("a", "b"), ErrObjectNotFound)
	assert.ErrorIs(t, m.AddHeapRef("b", "a"), ErrObjectNotFound)
	assert.ErrorIs(t, m.RemoveStackRef("a", "b"), ErrObjectNotFound)
	_, err := m.HasHeapRef("a", "b")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, m.AddHeapRef("a", NullID), ErrNullObject)

	err = m.AddStackRef("a", "b")
	assert.Contains(t, err.Error(), "add_stack_ref: a -> b: referee")
}

func TestHeapRefMultiplicity(t *testing.T) {
	m := newModel(t, "x", "y")
	require.NoError(t, m.AddHeapRef("x", "y"))
	require.NoError(t, m.AddHeapRef("x", "y"))
	require.NoError(t, m.RemoveHeapRef("x", "y"))

	edge, ok := m.Edge("x", "y")
	require.True(t, ok)
	assert.Equal(t, Multiplicity{Heap: 1}, edge)

	has, err := m.HasHeapRef("x", "y")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRemoveRef_CounterUnderflow(t *testing.T) {
	m := newModel(t, "x", "y")
	assert.ErrorIs(t, m.RemoveHeapRef("x", "y"), ErrNoReference)

	require.NoError(t, m.AddHeapRef("x", "y"))
	require.NoError(t, m.RemoveHeapRef("x", "y"))

	// The slot survives at zero and the next removal must still fail.
	edge, ok := m.Edge("x", "y")
	require.True(t, ok)
	assert.Equal(t, Multiplicity{}, edge)
	assert.ErrorIs(t, m.RemoveHeapRef("x", "y"), ErrCounterUnderflow)

	require.NoError(t, m.AddStackRef("x", "y"))
	assert.ErrorIs(t, m.RemoveHeapRef("x", "y"), ErrCounterUnderflow, "stack count does not cover heap removal")
}

func TestRefCounts(t *testing.T) {
	m := newModel(t, "a", "b", "c")
	require.NoError(t, m.AddStackRef("a", "c"))
	require.NoError(t, m.AddStackRef("a", "c"))
	require.NoError(t, m.AddHeapRef("b", "c"))
	require.NoError(t, m.AddHeapRef("c", "a"))

	counts := []struct {
		name string
		fn   func(string) (int, error)
		id   string
		want int
	}{
		{"in_stack", m.InStackRefs, "c", 2},
		{"in_heap", m.InHeapRefs, "c", 1},
		{"in_total", m.InTotalRefs, "c", 3},
		{"out_stack", m.OutStackRefs, "a", 2},
		{"out_heap", m.OutHeapRefs, "a", 0},
		{"out_total", m.OutTotalRefs, "c", 1},
		{"in_total_b", m.InTotalRefs, "b", 0},
	}
	for _, tc := range counts {
		got, err := tc.fn(tc.id)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestRemoveObj_RequiresNoReferences(t *testing.T) {
	m := newModel(t, "a", "b")
	require.NoError(t, m.AddStackRef("a", "b"))

	assert.ErrorIs(t, m.RemoveObj("b", false), ErrOutstandingRefs)
	assert.ErrorIs(t, m.RemoveObj("a", false), ErrOutstandingRefs)

	require.NoError(t, m.RemoveStackRef("a", "b"))
	require.NoError(t, m.RemoveObj("b", false))
	assert.False(t, m.HasObj("b"))

	_, ok := m.Edge("a", "b")
	assert.False(t, ok, "edges of a removed object must be gone")
	out, err := m.OutTotalRefs("a")
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestRemoveObj_ForceDropsIncidentEdges(t *testing.T) {
	m := newModel(t, "a", "b", "c")
	require.NoError(t, m.AddStackRef("a", "b"))
	require.NoError(t, m.AddHeapRef("b", "c"))
	require.NoError(t, m.AddHeapRef("b", "b"))

	require.NoError(t, m.RemoveObj("b", true))
	for _, id := range []string{"a", "c"} {
		in, err := m.InTotalRefs(id)
		require.NoError(t, err)
		out, err := m.OutTotalRefs(id)
		require.NoError(t, err)
		assert.Zero(t, in+out, id)
	}

	// b can come back as a fresh object with no history.
	require.NoError(t, m.AddObj("b", "T"))
	in, err := m.InTotalRefs("b")
	require.NoError(t, err)
	assert.Zero(t, in)
}

func TestResultsSnapshot(t *testing.T) {
	m := newModel(t, "a", "b")
	require.NoError(t, m.SetObjType("a", "com/acme/Cart"))
	require.NoError(t, m.RemoveObj("a", false))

	res := m.Results()
	require.Contains(t, res, "a")
	assert.Equal(t, "com/acme/Cart", res["a"].Type)
	assert.Len(t, res["a"].Monitors, 1)

	delete(res, "a")
	assert.Contains(t, m.Results(), "a", "Results returns a copy")

	rem := m.Remaining()
	assert.Len(t, rem, 1)
	assert.Contains(t, rem, "b")
}

func TestResetMonitors(t *testing.T) {
	m := newModel(t, "a", "b", "c")
	require.NoError(t, m.AddStackRef("b", "a"))
	require.NoError(t, m.AddStackRef("c", "a"))

	mons, err := m.Monitors("a")
	require.NoError(t, err)
	require.NoError(t, mons[0].Apply())
	assert.False(t, mons[0].IsAccepting())

	require.NoError(t, m.ResetMonitors("a"))
	fresh, err := m.Monitors("a")
	require.NoError(t, err)
	assert.True(t, fresh[0].IsAccepting())
	assert.False(t, fresh[0].IsFrozen())
}

func TestObjIDs_IsSnapshot(t *testing.T) {
	m := newModel(t, "a", "b", "c")
	ids := m.ObjIDs()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)

	for _, id := range ids {
		require.NoError(t, m.RemoveObj(id, false))
	}
	assert.Len(t, ids, 3)
	assert.Zero(t, m.Len())
}

func TestTypePredicates(t *testing.T) {
	m := newModel(t)
	require.NoError(t, m.AddObj("1", "java/util/HashMap"))
	require.NoError(t, m.AddObj("2", "com/acme/Cart"))

	b, err := m.IsBuiltin("1")
	require.NoError(t, err)
	assert.True(t, b)
	b, err = m.IsBuiltin("2")
	require.NoError(t, err)
	assert.False(t, b)

	ok, err := m.IsInstanceOf("2", "com/acme/Cart")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefKindString(t *testing.T) {
	assert.Equal(t, "stack", Stack.String())
	assert.Equal(t, "heap", Heap.String())
	assert.Equal(t, "total", Total.String())
}
