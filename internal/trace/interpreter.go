package trace

import (
	"fmt"
	"log/slog"

	"github.com/mabhi256/jalias/internal/heap"
)

// Anomalies counts the trace inconsistencies the interpreter tolerated.
type Anomalies struct {
	ImplicitObjects  int // objects created by a reference before their ALLOC
	Reannounced      int // ALLOC of an id that was already live
	StaleRemovals    int // reference removals with no matching reference
	ResidualDeallocs int // DEALLOC while references to or from the object remained
	NullHolders      int // stores or calls whose holder was the null id
}

func (a Anomalies) Total() int {
	return a.ImplicitObjects + a.Reannounced + a.StaleRemovals + a.ResidualDeallocs + a.NullHolders
}

// Interpreter applies decoded events to a heap model. Objects that show up
// in a reference before their allocation event are created on first
// reference with an unknown type.
type Interpreter struct {
	model     *heap.Model
	log       *slog.Logger
	anomalies Anomalies
}

func NewInterpreter(model *heap.Model, log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	return &Interpreter{model: model, log: log}
}

func (in *Interpreter) Anomalies() Anomalies { return in.anomalies }

// Process applies one event. Model errors that escape the guards below are
// returned unchanged and end the run.
func (in *Interpreter) Process(ev Event) error {
	switch ev.Op {
	case Alloc:
		return in.alloc(ev)
	case FLoad:
		return nil
	case FStore:
		return in.fieldStore(ev)
	case MCall:
		return in.methodCall(ev)
	case Dealloc:
		return in.dealloc(ev)
	case MExit:
		return in.methodExit(ev)
	case VStore:
		return in.varStore(ev)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, ev.Op)
	}
}

func (in *Interpreter) anomaly(ev Event, msg string, args ...any) {
	in.log.Debug(msg, append([]any{"line", ev.LineNum, "op", ev.Op.String()}, args...)...)
}

// ensure creates id if it has not been seen yet. It reports false for the
// null id, which never names an object.
func (in *Interpreter) ensure(ev Event, id string) (bool, error) {
	if id == heap.NullID {
		return false, nil
	}
	if in.model.HasObj(id) {
		return true, nil
	}
	if err := in.model.AddObj(id, ""); err != nil {
		return false, err
	}
	in.anomalies.ImplicitObjects++
	in.anomaly(ev, "object created on first reference", "id", id)
	return true, nil
}

func (in *Interpreter) alloc(ev Event) error {
	id, typ := ev.Field(1), ev.Field(2)
	if !in.model.HasObj(id) {
		return in.model.AddObj(id, typ)
	}

	// A constructor call usually precedes the allocation event. This is the
	// first authoritative sighting, so the monitors start over.
	if err := in.model.SetObjType(id, typ); err != nil {
		return err
	}
	in.anomalies.Reannounced++
	in.anomaly(ev, "allocation of live object, monitors reset", "id", id, "type", typ)
	return in.model.ResetMonitors(id)
}

func (in *Interpreter) fieldStore(ev Event) error {
	newRef, oldRef, holder := ev.Field(2), ev.Field(3), ev.Field(5)
	live, err := in.ensure(ev, holder)
	if err != nil {
		return err
	}
	if !live {
		in.anomalies.NullHolders++
		in.anomaly(ev, "field store on null holder skipped")
		return nil
	}

	if oldRef != heap.NullID {
		if err := in.removeIfPresent(ev, heap.Heap, holder, oldRef); err != nil {
			return err
		}
	}
	if newRef == heap.NullID {
		return nil
	}
	if _, err := in.ensure(ev, newRef); err != nil {
		return err
	}
	return in.model.AddHeapRef(holder, newRef)
}

func (in *Interpreter) methodCall(ev Event) error {
	caller, owner := ev.Field(2), ev.Field(3)
	if _, err := in.ensure(ev, caller); err != nil {
		return err
	}
	ownerLive, err := in.ensure(ev, owner)
	if err != nil {
		return err
	}
	if !ownerLive && len(ev.Rest(4)) > 0 {
		in.anomalies.NullHolders++
		in.anomaly(ev, "arguments passed by null owner not referenced")
	}

	for _, arg := range ev.Rest(4) {
		live, err := in.ensure(ev, arg)
		if err != nil {
			return err
		}
		if !live || !ownerLive {
			continue
		}
		// The owner must have held a reference to pass the argument.
		if err := in.model.AddStackRef(owner, arg); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) dealloc(ev Event) error {
	id := ev.Field(1)
	if in.model.HasObj(id) {
		inRefs, err := in.model.InTotalRefs(id)
		if err != nil {
			return err
		}
		outRefs, err := in.model.OutTotalRefs(id)
		if err != nil {
			return err
		}
		if inRefs+outRefs > 0 {
			in.anomalies.ResidualDeallocs++
			in.anomaly(ev, "deallocated with residual references", "id", id, "in", inRefs, "out", outRefs)
		}
	}
	return in.model.RemoveObj(id, true)
}

func (in *Interpreter) methodExit(ev Event) error {
	owner := ev.Field(4)
	for _, obj := range ev.Rest(5) {
		if obj == heap.NullID {
			continue
		}
		if err := in.removeIfPresent(ev, heap.Stack, owner, obj); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) varStore(ev Event) error {
	newVal, oldVal, holder := ev.Field(1), ev.Field(2), ev.Field(3)
	live, err := in.ensure(ev, holder)
	if err != nil {
		return err
	}
	if !live {
		in.anomalies.NullHolders++
		in.anomaly(ev, "variable store on null holder skipped")
		return nil
	}

	if oldVal != heap.NullID {
		if err := in.removeIfPresent(ev, heap.Stack, holder, oldVal); err != nil {
			return err
		}
	}
	if newVal == heap.NullID {
		return nil
	}
	if _, err := in.ensure(ev, newVal); err != nil {
		return err
	}
	return in.model.AddStackRef(holder, newVal)
}

// removeIfPresent drops one reference of the given kind when the trace's
// claim that it exists holds, and records an anomaly otherwise.
func (in *Interpreter) removeIfPresent(ev Event, kind heap.RefKind, referrer, referee string) error {
	if !in.model.HasObj(referrer) || !in.model.HasObj(referee) {
		in.anomalies.StaleRemovals++
		in.anomaly(ev, "reference removal on absent object skipped", "kind", kind.String(), "referrer", referrer, "referee", referee)
		return nil
	}

	has := in.model.HasStackRef
	remove := in.model.RemoveStackRef
	if kind == heap.Heap {
		has = in.model.HasHeapRef
		remove = in.model.RemoveHeapRef
	}

	ok, err := has(referrer, referee)
	if err != nil {
		return err
	}
	if !ok {
		in.anomalies.StaleRemovals++
		in.anomaly(ev, "stale reference removal skipped", "kind", kind.String(), "referrer", referrer, "referee", referee)
		return nil
	}
	return remove(referrer, referee)
}
