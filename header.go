package keygen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var headerAssignment = regexp.MustCompile(`(\w+)\s*=\s*(\w+)`)

// HeaderLineError is returned for a header line that contains an assignment that cannot be read.
type HeaderLineError struct {
	Line int
	Text string
}

func (err *HeaderLineError) Error() string {
	return fmt.Sprintf("line %d: bad keycode assignment: %s", err.Line, strings.TrimSpace(err.Text))
}

// ParseHeader reads keycode assignments of a QMK keycodes.h. Lines of the form NAME = 0xHHHH define a keycode and add NAME to the code, key and alias tables. Lines of the form NAME = OTHER make NAME an alias of OTHER. Lines without an assignment and preprocessor lines are ignored.
func ParseHeader(r io.Reader) (*Tables, error) {
	t := NewTables()

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		text := s.Text()
		if !strings.Contains(text, "=") || strings.HasPrefix(text, "#") {
			continue
		}

		m := headerAssignment.FindStringSubmatch(text)
		if m == nil {
			return nil, &HeaderLineError{line, text}
		}
		qmkid, rhs := m[1], m[2]
		if strings.HasPrefix(rhs, "0x") {
			// base 0 accepts underscores between digits and after the prefix
			code, err := strconv.ParseInt(rhs, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad keycode %s: %w", line, rhs, err)
			}
			t.Codes.Set(code, qmkid)
			t.Keys.Set(qmkid, codeKey(qmkid, code))
			t.Aliases.Set(qmkid, qmkid)
		} else {
			t.Aliases.Set(qmkid, rhs)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func ParseHeaderFile(filename string) (*Tables, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}
