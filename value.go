package keygen

import "fmt"

// ValueKind is the type of a field value.
type ValueKind int

const (
	NullValue ValueKind = iota
	BoolValue
	IntValue
	CodeValue // keycode, rendered as hexadecimal
	StringValue
	ListValue
)

func (kind ValueKind) String() string {
	switch kind {
	case NullValue:
		return "null"
	case BoolValue:
		return "bool"
	case IntValue:
		return "int"
	case CodeValue:
		return "code"
	case StringValue:
		return "string"
	case ListValue:
		return "list"
	}
	return fmt.Sprintf("ValueKind(%d)", int(kind))
}

// Value is a field value of a key record.
type Value struct {
	Kind ValueKind
	Bool bool
	Int  int64
	Str  string
	List []Value
}

func Null() Value {
	return Value{Kind: NullValue}
}

func Bool(b bool) Value {
	return Value{Kind: BoolValue, Bool: b}
}

func Int(i int64) Value {
	return Value{Kind: IntValue, Int: i}
}

// Code is a numeric keycode. Unlike Int it is written as a 0x%04x literal.
func Code(c int64) Value {
	return Value{Kind: CodeValue, Int: c}
}

func String(s string) Value {
	return Value{Kind: StringValue, Str: s}
}

func List(vs ...Value) Value {
	return Value{Kind: ListValue, List: vs}
}

func (v Value) String() string {
	switch v.Kind {
	case NullValue:
		return "None"
	case BoolValue:
		if v.Bool {
			return "True"
		}
		return "False"
	case IntValue:
		return fmt.Sprintf("%d", v.Int)
	case CodeValue:
		return fmt.Sprintf("0x%04x", v.Int)
	case StringValue:
		return fmt.Sprintf("%q", v.Str)
	case ListValue:
		return fmt.Sprintf("%v", v.List)
	}
	return "?"
}
