package keygen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides are the manually curated corrections that are applied after all other sources, see Merge.
type Overrides struct {
	// Keys holds fields that are merged into existing key records.
	Keys *KeyMap

	// Codes maps identifiers to the code that is written into the code table.
	Codes *Map[string, int64]

	// Aliases take precedence over all other aliases.
	Aliases *Aliases
}

func NewOverrides() *Overrides {
	return &Overrides{
		Keys:    NewMap[string, *Key](),
		Codes:   NewMap[string, int64](),
		Aliases: NewMap[string, string](),
	}
}

// LoadOverrides reads a YAML document with the optional mappings keys, codes and aliases:
//
//	keys:
//	  KC_FOO: {str: "Foo", title: "Foo key"}
//	codes:
//	  KC_FOO: 0x7e00
//	aliases:
//	  KC_BAR: KC_FOO
//
// The order of the document is kept. An empty document gives empty overrides.
func LoadOverrides(r io.Reader) (*Overrides, error) {
	o := NewOverrides()

	doc := yaml.Node{}
	if err := yaml.NewDecoder(r).Decode(&doc); errors.Is(err, io.EOF) {
		return o, nil
	} else if err != nil {
		return nil, err
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return o, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 || root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return o, nil
	} else if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: overrides must be a mapping", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		section, n := root.Content[i], root.Content[i+1]
		if n.ShortTag() == "!!null" {
			continue
		}
		var err error
		switch section.Value {
		case "keys":
			err = eachPair(n, func(name, fields *yaml.Node) error {
				k, err := yamlKey(fields)
				if err != nil {
					return err
				}
				o.Keys.Set(name.Value, k)
				return nil
			})
		case "codes":
			err = eachPair(n, func(name, code *yaml.Node) error {
				var c int64
				if code.ShortTag() != "!!int" {
					return fmt.Errorf("line %d: code of %s must be an integer", code.Line, name.Value)
				} else if err := code.Decode(&c); err != nil {
					return err
				}
				o.Codes.Set(name.Value, c)
				return nil
			})
		case "aliases":
			err = eachPair(n, func(alias, qmkid *yaml.Node) error {
				if qmkid.Kind != yaml.ScalarNode || qmkid.ShortTag() != "!!str" {
					return fmt.Errorf("line %d: alias %s must map to an identifier", qmkid.Line, alias.Value)
				}
				o.Aliases.Set(alias.Value, qmkid.Value)
				return nil
			})
		default:
			err = fmt.Errorf("line %d: unknown section %s", section.Line, section.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

func LoadOverridesFile(filename string) (*Overrides, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	o, err := LoadOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return o, nil
}

func eachPair(n *yaml.Node, f func(k, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := f(n.Content[i], n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func yamlKey(n *yaml.Node) (*Key, error) {
	k := &Key{}
	err := eachPair(n, func(name, val *yaml.Node) error {
		v, err := yamlValue(val)
		if err != nil {
			return err
		}
		if name.Value == "code" && v.Kind == IntValue {
			v = Code(v.Int)
		}
		k.Set(name.Value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

func yamlValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		vs := []Value{}
		for _, item := range n.Content {
			v, err := yamlValue(item)
			if err != nil {
				return Value{}, err
			}
			vs = append(vs, v)
		}
		return List(vs...), nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return Value{}, err
			}
			return Bool(b), nil
		case "!!int":
			var i int64
			if err := n.Decode(&i); err != nil {
				return Value{}, err
			}
			return Int(i), nil
		case "!!str":
			return String(n.Value), nil
		}
	}
	return Value{}, fmt.Errorf("line %d: unsupported value %s", n.Line, n.ShortTag())
}
