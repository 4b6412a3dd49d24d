package trace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownOpcode  = errors.New("opcode not recognised")
	ErrMalformedEvent = errors.New("malformed event")
)

// Event is one decoded trace line. Fields keeps every token of the line,
// the opcode included, so operand positions match the instrumentation
// documentation.
type Event struct {
	Op      Opcode
	Fields  []string
	Line    string
	LineNum int
}

// Field returns the i-th token or "" when the line is shorter.
func (e Event) Field(i int) string {
	if i < 0 || i >= len(e.Fields) {
		return ""
	}
	return e.Fields[i]
}

// Rest returns the tokens from position i on.
func (e Event) Rest(i int) []string {
	if i >= len(e.Fields) {
		return nil
	}
	return e.Fields[i:]
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Op, strings.Join(e.Rest(1), " "))
}

// Decode splits a trace line on spaces and checks the opcode and the
// operand count.
func Decode(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}, fmt.Errorf("%w: empty line", ErrMalformedEvent)
	}
	op, err := ParseOpcode(fields[0])
	if err != nil {
		return Event{}, err
	}
	if want := minFields[op]; len(fields) < want {
		return Event{}, fmt.Errorf("%w: %s needs %d fields, got %d", ErrMalformedEvent, op, want, len(fields))
	}
	return Event{Op: op, Fields: fields, Line: line}, nil
}

type ParseError struct {
	Line    string
	LineNum int
	Err     error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v", e.LineNum, e.Err)
}

func (e ParseError) Unwrap() error { return e.Err }
