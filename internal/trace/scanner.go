package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineSize = 16 * 1024 * 1024

// Scanner reads trace events lazily, one line at a time. It cannot be
// restarted.
type Scanner struct {
	sc          *bufio.Scanner
	stopAtBlank bool
	lineNum     int
	event       Event
	err         error
}

type ScanOption func(*Scanner)

// StopAtBlankLine ends the stream at the first empty line, the way an
// interactive session on stdin is terminated. Without it blank lines are
// skipped.
func StopAtBlankLine() ScanOption {
	return func(s *Scanner) { s.stopAtBlank = true }
}

func NewScanner(r io.Reader, opts ...ScanOption) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	s := &Scanner{sc: sc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan advances to the next event. It returns false at the end of the
// stream or on the first error, which Err then reports as a ParseError.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.sc.Scan() {
		s.lineNum++
		line := s.sc.Text()
		if strings.TrimSpace(line) == "" {
			if s.stopAtBlank {
				return false
			}
			continue
		}

		ev, err := Decode(line)
		if err != nil {
			s.err = ParseError{Line: line, LineNum: s.lineNum, Err: err}
			return false
		}
		ev.LineNum = s.lineNum
		s.event = ev
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = fmt.Errorf("scanner error: %w", err)
	}
	return false
}

func (s *Scanner) Event() Event { return s.event }

func (s *Scanner) Err() error { return s.err }

// LineNum is the number of lines consumed so far, blank ones included.
func (s *Scanner) LineNum() int { return s.lineNum }

// ReadAll decodes the whole stream.
func ReadAll(r io.Reader, opts ...ScanOption) ([]Event, error) {
	s := NewScanner(r, opts...)
	var events []Event
	for s.Scan() {
		events = append(events, s.Event())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ReadFile decodes a trace file.
func ReadFile(filename string) ([]Event, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadAll(file)
}
