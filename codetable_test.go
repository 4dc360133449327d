package keygen

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestParseCodeTable(t *testing.T) {
	src := `class keycodes_v6:
    kc = {
        "KC_A": 0x0004,
        'KC_B' : 0x0005,  # trailing comment
        "KC_C": 6,
        "KC_A": 0x0014,
        "QK_MACRO": 0x7700}

    other = {
        "KC_OTHER": 0x1234,
    }
    kc["KC_LATE"] = 0x0099
`
	codes, err := ParseCodeTable(strings.NewReader(src), "kc")
	test.Error(t, err)
	test.T(t, codes.Entries, []CodeEntry{
		{"KC_A", 0x0014},
		{"KC_B", 0x0005},
		{"KC_C", 6},
		{"QK_MACRO", 0x7700},
	})

	code, ok := codes.Get("KC_B")
	test.That(t, ok)
	test.T(t, code, int64(5))

	_, ok = codes.Get("KC_OTHER")
	test.That(t, !ok)
}

func TestParseCodeTableAll(t *testing.T) {
	src := `kc = {
    "KC_A": 0x0004,
}
hidden = {"KC_H": 0x0100,
    "KC_I": 0x0101}
`
	codes, err := ParseCodeTable(strings.NewReader(src), "")
	test.Error(t, err)
	test.T(t, len(codes.Entries), 3)
	test.T(t, codes.Entries[2], CodeEntry{"KC_I", 0x0101})
}

func TestParseCodeTableOneLine(t *testing.T) {
	codes, err := ParseCodeTable(strings.NewReader(`kc = {"KC_A": 0x04, "KC_B": 0x05}`), "kc")
	test.Error(t, err)
	test.T(t, codes.Entries, []CodeEntry{{"KC_A", 0x04}, {"KC_B", 0x05}})

	codes, err = ParseCodeTable(strings.NewReader(`kc = {"KC_A": 0x04, "KC_B": KC_A}`), "kc")
	test.Error(t, err)
	test.T(t, len(codes.Entries), 0)
}

func TestParseCodeTableFile(t *testing.T) {
	codes, err := ParseCodeTableFile("testdata/keycodes_v6.py", "kc")
	test.Error(t, err)
	test.T(t, len(codes.Entries), 5)
	test.T(t, codes.Entries[0], CodeEntry{"QK_BASIC", 0x0000})

	_, err = ParseCodeTableFile("testdata/missing.py", "kc")
	test.That(t, err != nil)
}
