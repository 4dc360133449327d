package keygen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"github.com/tdewolff/test"
)

func loadTestdata(t *testing.T) *Tables {
	t.Helper()
	tables, err := ParseHeaderFile("testdata/keycodes.h")
	test.Error(t, err)
	d, err := ParseDescriptorsFile("testdata/keycodes.py")
	test.Error(t, err)
	c, err := ParseCodeTableFile("testdata/keycodes_v6.py", "kc")
	test.Error(t, err)
	o, err := LoadOverridesFile("testdata/custom_keys.yaml")
	test.Error(t, err)
	test.Error(t, Merge(tables, d, c, o, Options{}))
	return tables
}

func TestRenderTestdata(t *testing.T) {
	tables := loadTestdata(t)
	b, err := Render(tables, EmitOptions{})
	test.Error(t, err)

	expected, err := os.ReadFile("testdata/keygen.js")
	test.Error(t, err)
	test.String(t, string(b), string(expected))

	test.T(t, tables.Keys.Len(), 13)
	test.T(t, tables.Codes.Len(), 12)

	buf := &bytes.Buffer{}
	test.Error(t, Write(buf, tables, EmitOptions{}))
	test.String(t, buf.String(), string(expected))
}

func TestRenderIdempotent(t *testing.T) {
	a, err := Render(loadTestdata(t), EmitOptions{})
	test.Error(t, err)
	b, err := Render(loadTestdata(t), EmitOptions{})
	test.Error(t, err)
	test.String(t, string(a), string(b))
}

func TestRenderValidJS(t *testing.T) {
	for _, minify := range []bool{false, true} {
		b, err := Render(loadTestdata(t), EmitOptions{Minify: minify})
		test.Error(t, err)
		test.That(t, strings.HasPrefix(string(b), banner))

		_, err = js.Parse(parse.NewInputBytes(b), js.Options{})
		test.Error(t, err, string(b))
	}
}

func TestRenderMinify(t *testing.T) {
	tables := NewTables()
	tables.Codes.Set(4, "KC_A")
	tables.Keys.Set("KC_A", codeKey("KC_A", 4))

	b, err := Render(tables, EmitOptions{Minify: true})
	test.Error(t, err)
	body := strings.TrimPrefix(string(b), banner)
	test.That(t, !strings.Contains(body, "\n  "), body)
	test.That(t, strings.Contains(body, "CODEMAP"), body)
	test.That(t, strings.Contains(body, "KEYMAP"), body)

	// keycodes keep their value but lose the hexadecimal notation
	test.That(t, strings.Contains(body, "code:4"), body)
	test.That(t, !strings.Contains(body, "0x"), body)
}

func TestRenderCodes(t *testing.T) {
	var tests = []struct {
		code     int64
		expected string
	}{
		{0, "0x0000"},
		{123, "0x007b"},
		{0x7c00, "0x7c00"},
		{0x12345, "0x12345"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			tables := NewTables()
			tables.Keys.Set("K", NewKey("K", "K", Field{"code", Code(tt.code)}))

			b, err := Render(tables, EmitOptions{})
			test.Error(t, err)
			test.That(t, strings.Contains(string(b), `"code": `+tt.expected+"\n"), string(b))
		})
	}
}

func TestRenderIntegers(t *testing.T) {
	// plain integers stay decimal, also when followed by a comma
	tables := NewTables()
	tables.Keys.Set("KC_A", NewKey("KC_A", "A", Field{"width", Int(123)}, Field{"code", Code(4)}))

	b, err := Render(tables, EmitOptions{})
	test.Error(t, err)
	test.That(t, strings.Contains(string(b), `"width": 123,`), string(b))
	test.That(t, strings.Contains(string(b), `"code": 0x0004`), string(b))
}

func TestRenderValues(t *testing.T) {
	k := &Key{}
	k.Set("null", Null())
	k.Set("bool", Bool(false))
	k.Set("empty", List())
	k.Set("list", List(String("a"), Int(-1)))
	k.Set("str", String("é\"\\\t\x01😀\x7f"))

	tables := NewTables()
	tables.Keys.Set("X", k)
	b, err := Render(tables, EmitOptions{})
	test.Error(t, err)

	expected := `const CODEMAP = {};

const KEYMAP = {
  "X": {
    "null": null,
    "bool": false,
    "empty": [],
    "list": [
      "a",
      -1
    ],
    "str": "\u00e9\"\\\t\u0001\ud83d\ude00\u007f"
  }
};
`
	test.String(t, strings.TrimPrefix(string(b), banner), expected)
}

func TestWriteFile(t *testing.T) {
	tables := loadTestdata(t)
	filename := filepath.Join(t.TempDir(), "keygen.js")
	test.Error(t, WriteFile(filename, tables, EmitOptions{}))

	b, err := os.ReadFile(filename)
	test.Error(t, err)
	expected, err := os.ReadFile("testdata/keygen.js")
	test.Error(t, err)
	test.String(t, string(b), string(expected))

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "keygen.js"), tables, EmitOptions{})
	test.That(t, err != nil)
}
