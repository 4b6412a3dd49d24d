package heap

import (
	"errors"
	"fmt"
)

// Contract violations reported by Model. They are never retried: each one
// points at a bug in the caller or at a trace anomaly nobody guarded against.
var (
	ErrObjectExists     = errors.New("object already exists")
	ErrObjectNotFound   = errors.New("object doesn't exist")
	ErrNullObject       = errors.New("object id 0 denotes no object")
	ErrNoReference      = errors.New("referrer and referee have no connection")
	ErrCounterUnderflow = errors.New("no references left to remove")
	ErrOutstandingRefs  = errors.New("object still has references")
)

// ModelError records which operation failed and on which objects.
type ModelError struct {
	Op        string // e.g. "remove_heap_ref"
	ObjectID  string // object, or referrer for reference operations
	RefereeID string // empty unless Op is a reference operation
	Err       error
}

func (e *ModelError) Error() string {
	if e.RefereeID != "" {
		return fmt.Sprintf("%s: %s -> %s: %v", e.Op, e.ObjectID, e.RefereeID, e.Err)
	}
	return fmt.Sprintf("%s: object %s: %v", e.Op, e.ObjectID, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func objErr(op, id string, err error) error {
	return &ModelError{Op: op, ObjectID: id, Err: err}
}

func refErr(op, referrer, referee string, err error) error {
	return &ModelError{Op: op, ObjectID: referrer, RefereeID: referee, Err: err}
}
