package keygen

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestLoadOverrides(t *testing.T) {
	src := `keys:
  KC_Z:
    str: Zed
    code: 0x1d
    masked: true
    alias: [KC_ZED, KC_ZZ]
    hidden: ~
  KC_A:
    title: "Letter A"
    width: 2
codes:
  KC_Z: 0x001d
  KC_Y: 28
aliases:
  KC_ZED: KC_Z
  KC_AA: KC_A
`
	o, err := LoadOverrides(strings.NewReader(src))
	test.Error(t, err)

	test.T(t, o.Keys.Keys(), []string{"KC_Z", "KC_A"})
	k, _ := o.Keys.Get("KC_Z")
	test.String(t, fieldsString(k), `str="Zed" code=0x001d masked=True alias=["KC_ZED" "KC_ZZ"] hidden=None`)
	k, _ = o.Keys.Get("KC_A")
	test.String(t, fieldsString(k), `title="Letter A" width=2`)

	test.T(t, o.Codes.Keys(), []string{"KC_Z", "KC_Y"})
	code, _ := o.Codes.Get("KC_Z")
	test.T(t, code, int64(0x1d))
	code, _ = o.Codes.Get("KC_Y")
	test.T(t, code, int64(28))

	test.T(t, o.Aliases.Keys(), []string{"KC_ZED", "KC_AA"})
	qmkid, _ := o.Aliases.Get("KC_AA")
	test.T(t, qmkid, "KC_A")
}

func TestLoadOverridesEmpty(t *testing.T) {
	for _, src := range []string{"", "# nothing yet\n", "keys:\ncodes:\n"} {
		o, err := LoadOverrides(strings.NewReader(src))
		test.Error(t, err)
		test.T(t, o.Keys.Len(), 0)
		test.T(t, o.Codes.Len(), 0)
		test.T(t, o.Aliases.Len(), 0)
	}
}

func TestLoadOverridesErrors(t *testing.T) {
	var tests = []string{
		"- keys\n",
		"keymap:\n  KC_A: {}\n",
		"codes:\n  KC_A: zero\n",
		"aliases:\n  KC_A: [KC_B]\n",
		"keys:\n  KC_A: {width: 1.5}\n",
		"keys:\n  KC_A: [str]\n",
		"keys: {KC_A: {str: A}\n",
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := LoadOverrides(strings.NewReader(tt))
			test.That(t, err != nil, "expected error")
		})
	}
}

func TestLoadOverridesFile(t *testing.T) {
	o, err := LoadOverridesFile("testdata/custom_keys.yaml")
	test.Error(t, err)
	test.T(t, o.Keys.Keys(), []string{"QK_MACRO", "KC_NO"})

	_, err = LoadOverridesFile("testdata/missing.yaml")
	test.That(t, err != nil)
}
