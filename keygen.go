// Package keygen merges keyboard keycode definitions from a QMK-style C header, a vial-gui descriptor table, a secondary keycode table and a set of manual overrides, and emits the result as a JavaScript data file.
//
// The pipeline is straight-line: ParseHeader builds the code, key and alias tables, ParseDescriptors reads the human-readable descriptors, Merge reconciles all sources and Write renders the CODEMAP and KEYMAP constants.
package keygen

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is a map that remembers insertion order. Setting an existing key overwrites its value but keeps its position.
type Map[K comparable, V any] struct {
	*orderedmap.OrderedMap[K, V]
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{orderedmap.New[K, V]()}
}

func (m *Map[K, V]) Has(k K) bool {
	return m.GetPair(k) != nil
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// CodeMap maps numeric keycodes to their canonical identifier.
type CodeMap = Map[int64, string]

// KeyMap maps canonical identifiers to their record.
type KeyMap = Map[string, *Key]

// Aliases maps any known spelling of an identifier to its canonical identifier. Resolution is a single hop.
type Aliases = Map[string, string]

// Tables holds the state that is built by ParseHeader and mutated by Merge.
type Tables struct {
	Codes   *CodeMap
	Keys    *KeyMap
	Aliases *Aliases

	// Stripped maps aliases with their underscores removed to the alias target. It is filled by Merge.
	Stripped *Aliases
}

func NewTables() *Tables {
	return &Tables{
		Codes:    NewMap[int64, string](),
		Keys:     NewMap[string, *Key](),
		Aliases:  NewMap[string, string](),
		Stripped: NewMap[string, string](),
	}
}

////////////////////////////////////////////////////////////////

// Field is a named value of a key record.
type Field struct {
	Name  string
	Value Value
}

// Key is an identifier record: an ordered list of fields. The standard fields are qmkid, str, code and title, descriptors may add any others. The zero value is an empty record.
type Key struct {
	fields *Map[string, Value]
}

// NewKey returns a record with the qmkid and str fields set, followed by the given fields.
func NewKey(qmkid, label string, fields ...Field) *Key {
	k := &Key{}
	k.Set("qmkid", String(qmkid))
	k.Set("str", String(label))
	for _, f := range fields {
		k.Set(f.Name, f.Value)
	}
	return k
}

// codeKey returns the record for a keycode that is only known by its name, using the name as label and tooltip.
func codeKey(qmkid string, code int64) *Key {
	k := NewKey(qmkid, qmkid, Field{"code", Code(code)})
	k.Set("title", String(qmkid))
	return k
}

func (k *Key) Fields() []Field {
	if k.fields == nil {
		return nil
	}
	fields := make([]Field, 0, k.fields.Len())
	for pair := k.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, Field{pair.Key, pair.Value})
	}
	return fields
}

func (k *Key) Get(name string) (Value, bool) {
	if k.fields == nil {
		return Value{}, false
	}
	return k.fields.Get(name)
}

// Set overwrites the field in place or appends it when new.
func (k *Key) Set(name string, v Value) {
	if k.fields == nil {
		k.fields = NewMap[string, Value]()
	}
	k.fields.Set(name, v)
}

// Update merges all fields of o into k.
func (k *Key) Update(o *Key) {
	for _, f := range o.Fields() {
		k.Set(f.Name, f.Value)
	}
}

func (k *Key) Clone() *Key {
	c := &Key{}
	c.Update(k)
	return c
}

// QMKID returns the qmkid field.
func (k *Key) QMKID() string {
	if v, ok := k.Get("qmkid"); ok && v.Kind == StringValue {
		return v.Str
	}
	return ""
}

// Code returns the keycode of the record if it has one.
func (k *Key) Code() (int64, bool) {
	if v, ok := k.Get("code"); ok && (v.Kind == CodeValue || v.Kind == IntValue) {
		return v.Int, true
	}
	return 0, false
}
