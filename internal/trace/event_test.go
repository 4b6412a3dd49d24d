package trace

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ev, err := Decode("4 run 7 12 30 0 31")
	require.NoError(t, err)
	assert.Equal(t, MCall, ev.Op)
	assert.Equal(t, "12", ev.Field(3))
	assert.Equal(t, []string{"30", "0", "31"}, ev.Rest(4))
	assert.Empty(t, ev.Field(42))
	assert.Nil(t, ev.Rest(9))
	assert.Equal(t, "MCALL run 7 12 30 0 31", ev.String())
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]error{
		"":            ErrMalformedEvent,
		"   ":         ErrMalformedEvent,
		"8 A":         ErrUnknownOpcode,
		"0 A":         ErrUnknownOpcode,
		"x A":         ErrUnknownOpcode,
		"-1 A":        ErrUnknownOpcode,
		"300 A":       ErrUnknownOpcode,
		"1 A":         ErrMalformedEvent,
		"3 f 1 0 x":   ErrMalformedEvent,
		"6 m 1 2":     ErrMalformedEvent,
		"7 A 0":       ErrMalformedEvent,
		"5":           ErrMalformedEvent,
		"4 m 1":       ErrMalformedEvent,
		"2":           nil,
		"6 m c o s":   nil,
		"1 A java/T":  nil,
		"3 f 1 0 x H": nil,
	}
	for line, want := range cases {
		_, err := Decode(line)
		if want == nil {
			assert.NoError(t, err, line)
			continue
		}
		assert.ErrorIs(t, err, want, line)
	}
}

func TestOpcodeString(t *testing.T) {
	names := make([]string, 0, 7)
	for _, op := range Opcodes() {
		names = append(names, op.String())
	}
	assert.Equal(t, "ALLOC FLOAD FSTORE MCALL DEALLOC MEXIT VSTORE", strings.Join(names, " "))
	assert.Equal(t, "Opcode(9)", Opcode(9).String())
	assert.False(t, Opcode(0).Valid())
}

func TestScanner_SkipsBlankLinesInFiles(t *testing.T) {
	events, err := ReadAll(strings.NewReader("1 A T\n\n1 B T\n"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].LineNum)
	assert.Equal(t, 3, events[1].LineNum)
	assert.Equal(t, "1 B T", events[1].Line)
}

func TestScanner_StopsAtBlankLine(t *testing.T) {
	events, err := ReadAll(strings.NewReader("1 A T\n1 B T\n\n9 never decoded\n"), StopAtBlankLine())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestScanner_ReportsLine(t *testing.T) {
	s := NewScanner(strings.NewReader("1 A T\n9 A\n1 B T\n"))
	require.True(t, s.Scan())
	assert.False(t, s.Scan())
	assert.False(t, s.Scan(), "scanner stays stopped after an error")

	var pe ParseError
	require.True(t, errors.As(s.Err(), &pe))
	assert.Equal(t, 2, pe.LineNum)
	assert.Equal(t, "9 A", pe.Line)
	assert.ErrorIs(t, s.Err(), ErrUnknownOpcode)
	assert.Contains(t, s.Err().Error(), "parse error at line 2")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("testdata/does-not-exist.trace")
	assert.Error(t, err)
}
