package keygen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tdewolff/parse/v2/js"
)

// DescriptorError is returned for a descriptor that is a well-formed expression but cannot construct a key, such as a call with a missing label. Unlike a SyntaxError it is fatal.
type DescriptorError struct {
	Line int
	Text string
	Msg  string
}

func (err *DescriptorError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", err.Line, err.Msg, err.Text)
}

// Descriptors are the keys read from a vial-gui keycodes.py, in source order.
type Descriptors struct {
	Keys *KeyMap

	// Skipped holds a *SyntaxError for every K( line that could not be parsed.
	Skipped []error
}

// ParseDescriptors reads the lines of the form K(qmkid, label[, tooltip][, name=value...]) from a Python source. Each line is trimmed of whitespace and surrounding commas. Lines that are not well-formed expressions are skipped, a later descriptor for the same qmkid replaces the earlier one.
func ParseDescriptors(r io.Reader) (*Descriptors, error) {
	d := &Descriptors{
		Keys: NewMap[string, *Key](),
	}

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		text := strings.Trim(strings.TrimSpace(s.Text()), ",")
		if !strings.HasPrefix(text, "K(") {
			continue
		}

		k, err := parseDescriptor(text)
		var syntaxErr *SyntaxError
		var descErr *DescriptorError
		if errors.As(err, &syntaxErr) {
			syntaxErr.Line = line
			d.Skipped = append(d.Skipped, syntaxErr)
			continue
		} else if errors.As(err, &descErr) {
			descErr.Line = line
			return nil, descErr
		} else if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d.Keys.Set(k.QMKID(), k)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func ParseDescriptorsFile(filename string) (*Descriptors, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ParseDescriptors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return d, nil
}

////////////////////////////////////////////////////////////////

type descriptorParser struct {
	*lineLexer
}

// arg is a call argument. A bare name is only valid as the qmkid.
type arg struct {
	val  Value
	name string
}

func parseDescriptor(s string) (*Key, error) {
	p := descriptorParser{newLineLexer(s)}
	if name, _ := p.name(); name != "K" {
		return nil, p.errorf("expected K")
	}
	p.next()
	if err := p.expect(js.OpenParenToken, "("); err != nil {
		return nil, err
	}

	var args []arg
	kwargs := []Field{}
	seen := map[string]bool{}
	for p.tt != js.CloseParenToken {
		if name, ok := p.name(); ok && name != "True" && name != "False" && name != "None" {
			p.next()
			if p.tt == js.EqToken {
				p.next()
				if seen[name] {
					return nil, p.errorf("keyword argument repeated: %s", name)
				}
				seen[name] = true
				v, err := p.value()
				if err != nil {
					return nil, err
				}
				kwargs = append(kwargs, Field{name, v})
			} else if 0 < len(seen) {
				return nil, p.errorf("positional argument follows keyword argument")
			} else {
				args = append(args, arg{name: name})
			}
		} else if 0 < len(seen) {
			return nil, p.errorf("positional argument follows keyword argument")
		} else {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			args = append(args, arg{val: v})
		}

		if p.tt == js.CommaToken {
			p.next()
		} else if p.tt != js.CloseParenToken {
			return nil, p.errorf("expected , or ) instead of %q", p.data)
		}
	}
	if rest := strings.TrimLeft(p.rest(), " \t,"); rest != "" && rest[0] != '#' {
		return nil, p.errorf("unexpected %q after descriptor", rest)
	}
	return newDescriptor(s, args, kwargs)
}

// value parses a literal: string, integer, True, False, None or a list or tuple of literals.
func (p descriptorParser) value() (Value, error) {
	switch p.tt {
	case js.StringToken:
		s, err := p.str()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case js.SubToken:
		p.next()
		i, err := p.integer()
		if err != nil {
			return Value{}, err
		}
		p.next()
		return Int(-i), nil
	case js.OpenBracketToken, js.OpenParenToken:
		closer := js.CloseBracketToken
		if p.tt == js.OpenParenToken {
			closer = js.CloseParenToken
		}
		tuple := p.tt == js.OpenParenToken
		p.next()

		vs := []Value{}
		comma := false
		for p.tt != closer {
			v, err := p.value()
			if err != nil {
				return Value{}, err
			}
			vs = append(vs, v)
			if p.tt == js.CommaToken {
				comma = true
				p.next()
			} else if p.tt != closer {
				return Value{}, p.errorf("expected , instead of %q", p.data)
			}
		}
		p.next()
		if tuple && len(vs) == 1 && !comma {
			return vs[0], nil // parenthesized expression
		}
		return List(vs...), nil
	}

	if name, ok := p.name(); ok {
		p.next()
		switch name {
		case "True":
			return Bool(true), nil
		case "False":
			return Bool(false), nil
		case "None":
			return Null(), nil
		}
		return Value{}, &DescriptorError{Text: p.s, Msg: fmt.Sprintf("name %s is not defined", name)}
	}

	i, err := p.integer()
	if err != nil {
		return Value{}, err
	}
	p.next()
	return Int(i), nil
}

// newDescriptor binds the arguments to K(qmkid, label, tooltip=None, **fields) and builds the key: qmkid, str, the extra fields and finally title when a tooltip is given.
func newDescriptor(s string, args []arg, kwargs []Field) (*Key, error) {
	params := []string{"qmkid", "label", "tooltip"}
	if len(params) < len(args) {
		return nil, &DescriptorError{Text: s, Msg: fmt.Sprintf("takes at most %d positional arguments but %d were given", len(params), len(args))}
	}

	bound := map[string]Value{}
	for i, a := range args {
		if a.name != "" {
			if i != 0 {
				return nil, &DescriptorError{Text: s, Msg: fmt.Sprintf("name %s is not defined", a.name)}
			}
			a.val = String(a.name)
		}
		bound[params[i]] = a.val
	}

	var extra []Field
	for _, f := range kwargs {
		if f.Name == "qmkid" || f.Name == "label" || f.Name == "tooltip" {
			if _, ok := bound[f.Name]; ok {
				return nil, &DescriptorError{Text: s, Msg: fmt.Sprintf("got multiple values for argument %s", f.Name)}
			}
			bound[f.Name] = f.Value
		} else if f.Name == "str" {
			return nil, &DescriptorError{Text: s, Msg: "got multiple values for keyword argument str"}
		} else {
			extra = append(extra, f)
		}
	}

	qmkid, ok := bound["qmkid"]
	if !ok {
		return nil, &DescriptorError{Text: s, Msg: "missing required argument qmkid"}
	} else if qmkid.Kind != StringValue {
		return nil, &DescriptorError{Text: s, Msg: fmt.Sprintf("qmkid must be a string, not %v", qmkid.Kind)}
	}
	label, ok := bound["label"]
	if !ok {
		return nil, &DescriptorError{Text: s, Msg: "missing required argument label"}
	}

	k := &Key{}
	k.Set("qmkid", qmkid)
	k.Set("str", label)
	for _, f := range extra {
		k.Set(f.Name, f.Value)
	}
	if tooltip, ok := bound["tooltip"]; ok && tooltip.Kind != NullValue {
		k.Set("title", tooltip)
	}
	return k, nil
}
