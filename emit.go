package keygen

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf16"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

const banner = "/////////////////////////////////\n" +
	"/////////////////////////////////\n" +
	"// THIS FILE IS AUTOGENERATED!\n" +
	"/////////////////////////////////\n" +
	"/////////////////////////////////\n"

// EmitOptions configure Write.
type EmitOptions struct {
	// Minify runs the body after the banner through the JavaScript minifier. Besides removing whitespace it unquotes object keys and rewrites keycodes as their shortest decimal literal, so 0x0004 becomes 4.
	Minify bool
}

// Write writes the JavaScript file that defines CODEMAP, mapping decimal code strings to identifiers, and KEYMAP, mapping identifiers to their key record. Keycodes are written as 0x%04x literals.
func Write(w io.Writer, t *Tables, o EmitOptions) error {
	b, err := Render(t, o)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// WriteFile renders the whole file before creating it, so that nothing is written on error.
func WriteFile(filename string, t *Tables, o EmitOptions) error {
	b, err := Render(t, o)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

// Render returns the contents of the JavaScript file.
func Render(t *Tables, o EmitOptions) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := jsonWriter{buf}
	buf.WriteString("const CODEMAP = ")
	w.codeMap(t.Codes)
	buf.WriteString(";\n\nconst KEYMAP = ")
	w.keyMap(t.Keys)
	buf.WriteString(";\n")

	body := buf.Bytes()
	if o.Minify {
		m := minify.New()
		m.AddFunc("application/javascript", js.Minify)

		var err error
		if body, err = m.Bytes("application/javascript", body); err != nil {
			return nil, fmt.Errorf("minify: %w", err)
		}
		body = append(body, '\n')
	}
	return append([]byte(banner), body...), nil
}

////////////////////////////////////////////////////////////////

// jsonWriter writes JSON laid out like Python's json.dumps with indent=2, except that keycodes are hexadecimal.
type jsonWriter struct {
	*bytes.Buffer
}

func (w jsonWriter) codeMap(codes *CodeMap) {
	keys := codes.Keys()
	w.object(0, len(keys), func(i int) {
		qmkid, _ := codes.Get(keys[i])
		w.string(strconv.FormatInt(keys[i], 10))
		w.WriteString(": ")
		w.string(qmkid)
	})
}

func (w jsonWriter) keyMap(keys *KeyMap) {
	names := keys.Keys()
	w.object(0, len(names), func(i int) {
		k, _ := keys.Get(names[i])
		w.string(names[i])
		w.WriteString(": ")
		w.key(k, 1)
	})
}

func (w jsonWriter) key(k *Key, depth int) {
	fields := k.Fields()
	w.object(depth, len(fields), func(i int) {
		w.string(fields[i].Name)
		w.WriteString(": ")
		w.value(fields[i].Value, depth+1)
	})
}

func (w jsonWriter) object(depth, n int, entry func(int)) {
	if n == 0 {
		w.WriteString("{}")
		return
	}
	w.WriteString("{\n")
	for i := 0; i < n; i++ {
		w.indent(depth + 1)
		entry(i)
		if i+1 < n {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	w.indent(depth)
	w.WriteByte('}')
}

func (w jsonWriter) value(v Value, depth int) {
	switch v.Kind {
	case NullValue:
		w.WriteString("null")
	case BoolValue:
		w.WriteString(strconv.FormatBool(v.Bool))
	case IntValue:
		w.WriteString(strconv.FormatInt(v.Int, 10))
	case CodeValue:
		fmt.Fprintf(w, "0x%04x", v.Int)
	case StringValue:
		w.string(v.Str)
	case ListValue:
		if len(v.List) == 0 {
			w.WriteString("[]")
			return
		}
		w.WriteString("[\n")
		for i, item := range v.List {
			w.indent(depth + 1)
			w.value(item, depth+1)
			if i+1 < len(v.List) {
				w.WriteByte(',')
			}
			w.WriteByte('\n')
		}
		w.indent(depth)
		w.WriteByte(']')
	}
}

func (w jsonWriter) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString("  ")
	}
}

// string writes a quoted string with all non-ASCII characters escaped.
func (w jsonWriter) string(s string) {
	w.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			w.WriteString(`\"`)
		case '\\':
			w.WriteString(`\\`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		default:
			if r < 0x20 || 0x7e < r && r < 0x10000 {
				fmt.Fprintf(w, `\u%04x`, r)
			} else if 0x10000 <= r {
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(w, `\u%04x\u%04x`, r1, r2)
			} else {
				w.WriteRune(r)
			}
		}
	}
	w.WriteByte('"')
}
