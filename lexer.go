package keygen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// SyntaxError is returned for a line that is not a well-formed literal expression. Such lines are skipped by the parsers.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v", err.Line, err.Err)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

// lineLexer tokenizes a single line of Python source. The literals we accept (strings, integers, names and punctuation) lex the same in JavaScript, so we reuse the JS lexer and skip whitespace.
type lineLexer struct {
	s    string
	z    *parse.Input
	l    *js.Lexer
	tt   js.TokenType
	data []byte
	end  int // offset in s after the current token
}

func newLineLexer(s string) *lineLexer {
	z := parse.NewInputString(s)
	l := &lineLexer{
		s: s,
		z: z,
		l: js.NewLexer(z),
	}
	l.next()
	return l
}

func (l *lineLexer) next() {
	for {
		tt, data := l.l.Next()
		l.end += len(data)
		if tt == js.WhitespaceToken || tt == js.LineTerminatorToken {
			continue
		}
		l.tt, l.data = tt, data
		return
	}
}

// rest returns the unlexed remainder of the line after the current token.
func (l *lineLexer) rest() string {
	if len(l.s) < l.end {
		return ""
	}
	return l.s[l.end:]
}

func (l *lineLexer) errorf(format string, a ...interface{}) error {
	return &SyntaxError{Text: l.s, Err: parse.NewErrorLexer(l.z, format, a...)}
}

func (l *lineLexer) expect(tt js.TokenType, what string) error {
	if l.tt != tt {
		return l.errorf("expected %s instead of %q", what, l.data)
	}
	l.next()
	return nil
}

// name returns the current token if it is a Python identifier.
func (l *lineLexer) name() (string, bool) {
	if l.tt == js.StringToken || len(l.data) == 0 {
		return "", false
	}
	for i, c := range l.data {
		if c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || 0 < i && '0' <= c && c <= '9' {
			continue
		}
		return "", false
	}
	return string(l.data), true
}

// integer parses the current token as a Python integer literal.
func (l *lineLexer) integer() (int64, error) {
	if len(l.data) == 0 || l.data[0] < '0' || '9' < l.data[0] {
		return 0, l.errorf("expected integer instead of %q", l.data)
	}
	s := strings.ReplaceAll(string(l.data), "_", "")
	if 1 < len(s) && s[0] == '0' && '0' <= s[1] && s[1] <= '9' {
		return 0, l.errorf("leading zeros in integer %q", l.data)
	}
	i, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, l.errorf("bad integer %q", l.data)
	}
	return i, nil
}

// str decodes the current string token, joining adjacent string literals like Python does.
func (l *lineLexer) str() (string, error) {
	if l.tt != js.StringToken {
		return "", l.errorf("expected string instead of %q", l.data)
	}
	sb := strings.Builder{}
	for l.tt == js.StringToken {
		s, err := unquote(l.data)
		if err != nil {
			return "", l.errorf("%v", err)
		}
		sb.WriteString(s)
		l.next()
	}
	return sb.String(), nil
}

// unquote decodes a single or double quoted Python string literal.
func unquote(b []byte) (string, error) {
	if len(b) < 2 || b[0] != '"' && b[0] != '\'' || b[len(b)-1] != b[0] {
		return "", fmt.Errorf("bad string literal %s", b)
	}
	b = b[1 : len(b)-1]

	sb := strings.Builder{}
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 == len(b) {
			sb.WriteByte(b[i])
			continue
		}
		i++
		switch c := b[i]; c {
		case '\n':
		case '\\', '\'', '"':
			sb.WriteByte(c)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := 0
			j := i
			for j < len(b) && j < i+3 && '0' <= b[j] && b[j] <= '7' {
				n = n*8 + int(b[j]-'0')
				j++
			}
			sb.WriteRune(rune(n))
			i = j - 1
		case 'x', 'u', 'U':
			size := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
			if len(b) < i+1+size {
				return "", fmt.Errorf("truncated \\%c escape", c)
			}
			r, err := strconv.ParseUint(string(b[i+1:i+1+size]), 16, 32)
			if err != nil || !utf8.ValidRune(rune(r)) && c != 'x' {
				return "", fmt.Errorf("bad \\%c escape", c)
			}
			sb.WriteRune(rune(r))
			i += size
		default:
			// unknown escapes are kept verbatim
			sb.WriteByte('\\')
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
