package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind represents the type of a PDF value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindName
	KindString
	KindArray
	KindDictionary
	KindReference
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindName:
		return "name"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindReference:
		return "reference"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Value is the tagged union of every PDF primitive and composite. String
// renders the value back into PDF object syntax.
type Value interface {
	Kind() Kind
	String() string
}

// Null represents the PDF null object
type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }

// Bool represents a PDF boolean
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number represents a PDF numeric object. Integers and reals share float64.
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Int truncates the number to an integer
func (n Number) Int() int {
	return int(n)
}

// IsInteger reports whether the number has no fractional part
func (n Number) IsInteger() bool {
	return float64(n) == float64(int64(n))
}

// Name represents a PDF name, stored without its leading slash
type Name string

func (Name) Kind() Kind       { return KindName }
func (n Name) String() string { return "/" + string(n) }

// String represents a decoded PDF string (literal or hexadecimal)
type String string

func (String) Kind() Kind { return KindString }

// String renders a literal string when every byte is printable ASCII and the
// string is non-empty, and a hex string otherwise. An empty literal string is
// not valid syntax for this parser, so "" always renders as <>.
func (s String) String() string {
	if len(s) == 0 || !isPrintable(string(s)) {
		return fmt.Sprintf("<%X>", []byte(s))
	}
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// Array represents a PDF array
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, 0, len(a))
	for _, elem := range a {
		parts = append(parts, elem.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the number of elements
func (a Array) Len() int {
	return len(a)
}

// Get returns the element at index, or Null when out of range
func (a Array) Get(index int) Value {
	if index >= 0 && index < len(a) {
		return a[index]
	}
	return Null{}
}

// Reference is an indirect object reference: "id gen R"
type Reference struct {
	ID         int
	Generation int
}

func (Reference) Kind() Kind { return KindReference }
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ID, r.Generation)
}

// IndirectObject is a value read from an "id gen obj ... endobj" block.
type IndirectObject struct {
	ID         int
	Generation int
	Value      Value
}

func (o *IndirectObject) String() string {
	return fmt.Sprintf("%d %d obj\n%s\nendobj", o.ID, o.Generation, o.Value.String())
}

// Stream is a dictionary plus its payload. Raw holds the bytes exactly as
// they appear between "stream" and "endstream"; Data holds them after the
// filter pipeline has run (equal to Raw until decoded).
type Stream struct {
	Dict    *Dictionary
	Raw     []byte
	Data    []byte
	Decoded bool
}

func (*Stream) Kind() Kind { return KindStream }
func (s *Stream) String() string {
	return fmt.Sprintf("%s\nstream\n[%d bytes]\nendstream", s.Dict.String(), len(s.Raw))
}

// Filters returns the declared filter names in application order.
func (s *Stream) Filters() []string {
	return FilterNames(s.Dict.Get("Filter"))
}

// FilterNames normalizes a Filter entry (a name or an array of names).
func FilterNames(v Value) []string {
	switch f := v.(type) {
	case Name:
		return []string{string(f)}
	case Array:
		names := make([]string, 0, len(f))
		for _, elem := range f {
			if n, ok := elem.(Name); ok {
				names = append(names, string(n))
			}
		}
		return names
	default:
		return nil
	}
}
