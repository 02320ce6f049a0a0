package render

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// reprEmitter пишет значение так, как его напечатал бы str() словаря в Python.
type reprEmitter struct {
	buf bytes.Buffer
}

func (e *reprEmitter) objectStart() { e.buf.WriteByte('{') }
func (e *reprEmitter) objectEnd()   { e.buf.WriteByte('}') }
func (e *reprEmitter) arrayStart()  { e.buf.WriteByte('[') }
func (e *reprEmitter) arrayEnd()    { e.buf.WriteByte(']') }
func (e *reprEmitter) more()        { e.buf.WriteString(", ") }

func (e *reprEmitter) key(k string) {
	e.buf.WriteString(quotePy(k))
	e.buf.WriteString(": ")
}

func (e *reprEmitter) str(s string)    { e.buf.WriteString(quotePy(s)) }
func (e *reprEmitter) number(n string) { e.buf.WriteString(formatPyNumber(n)) }

func (e *reprEmitter) boolean(b bool) {
	if b {
		e.buf.WriteString("True")
		return
	}
	e.buf.WriteString("False")
}

func (e *reprEmitter) null() { e.buf.WriteString("None") }

func (e *reprEmitter) child() deduper { return &reprEmitter{} }
func (e *reprEmitter) bytes() []byte  { return e.buf.Bytes() }
func (e *reprEmitter) raw(b []byte)   { e.buf.Write(b) }

// formatPyNumber повторяет int/float repr для числового литерала JSON.
func formatPyNumber(n string) string {
	if !strings.ContainsAny(n, ".eE") {
		if i, ok := new(big.Int).SetString(n, 10); ok {
			return i.String()
		}
		return n
	}

	f, err := strconv.ParseFloat(n, 64)
	if err != nil && !math.IsInf(f, 0) {
		return n
	}
	return formatPyFloat(f)
}

func formatPyFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// quotePy возвращает строку в кавычках по правилам repr(str).
func quotePy(s string) string {
	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < ' ' || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x7f:
			b.WriteRune(r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
