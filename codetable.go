package keygen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2/js"
)

var dictStart = regexp.MustCompile(`^\s*(\w+)\s*=\s*\{`)

// CodeEntry is a keycode name with its numeric code.
type CodeEntry struct {
	Name string
	Code int64
}

// CodeTable is a secondary keycode table, such as vial-gui's keycodes_v6.py. Its names are either aliases of codes known from the header or new canonical identifiers.
type CodeTable struct {
	Entries []CodeEntry
	index   map[string]int
}

// Get returns the code of name.
func (t *CodeTable) Get(name string) (int64, bool) {
	if i, ok := t.index[name]; ok {
		return t.Entries[i].Code, true
	}
	return 0, false
}

// Set adds an entry or overwrites the code of an existing one.
func (t *CodeTable) Set(name string, code int64) {
	if i, ok := t.index[name]; ok {
		t.Entries[i].Code = code
		return
	}
	if t.index == nil {
		t.index = map[string]int{}
	}
	t.index[name] = len(t.Entries)
	t.Entries = append(t.Entries, CodeEntry{name, code})
}

// ParseCodeTable reads the entries of the form "NAME": 0xHHHH of a Python dictionary literal. If dict is not empty, only the entries within the dictionary assigned to that name are read, otherwise all entries of the file are. Other lines are ignored.
func ParseCodeTable(r io.Reader, dict string) (*CodeTable, error) {
	t := &CodeTable{}

	inDict := dict == ""
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1024*1024)
	for s.Scan() {
		text := s.Text()
		if m := dictStart.FindStringSubmatch(text); m != nil {
			inDict = dict == "" || m[1] == dict
			text = text[len(m[0]):]
		} else if dict != "" && inDict && strings.HasPrefix(strings.TrimSpace(text), "}") {
			inDict = false
			continue
		}
		if !inDict || !strings.Contains(text, ":") {
			continue
		}

		entries, err := parseCodeEntries(text)
		if err != nil {
			continue
		}
		for _, e := range entries {
			t.Set(e.Name, e.Code)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func ParseCodeTableFile(filename, dict string) (*CodeTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseCodeTable(f, dict)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}

// parseCodeEntries parses a line of "NAME": CODE entries separated by commas.
func parseCodeEntries(s string) ([]CodeEntry, error) {
	var entries []CodeEntry
	l := newLineLexer(s)
	for {
		name, err := l.str()
		if err != nil {
			return nil, err
		}
		if err := l.expect(js.ColonToken, ":"); err != nil {
			return nil, err
		}
		code, err := l.integer()
		if err != nil {
			return nil, err
		}
		entries = append(entries, CodeEntry{name, code})

		if rest := strings.TrimLeft(l.rest(), " \t,"); rest == "" || rest[0] == '#' || rest[0] == '}' {
			return entries, nil
		}
		l.next()
		if err := l.expect(js.CommaToken, ","); err != nil {
			return nil, err
		}
	}
}
