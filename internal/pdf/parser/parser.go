// Package parser implements the PDF object grammar on top of the byte
// scanner: primitive and composite values, streams and indirect objects.
package parser

import (
	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/scanner"
)

// DefaultMaxDepth bounds array/dictionary nesting.
const DefaultMaxDepth = 256

// Resolver maps an object id to the byte offset of its "id gen obj" header.
// ok is false for ids that are missing or marked free.
type Resolver interface {
	Lookup(id int) (offset int, ok bool)
}

// Parser reads PDF values from a scanner. It shares the scanner's cursor,
// so a Parser is not safe for concurrent use.
type Parser struct {
	s        *scanner.Scanner
	maxDepth int
	depth    int
	// ids whose indirect Length is being resolved, for cycle detection
	pending map[int]bool
}

// Option configures a Parser
type Option func(*Parser)

// WithMaxDepth overrides the nesting limit for arrays and dictionaries
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// New creates a parser reading from s
func New(s *scanner.Scanner, opts ...Option) *Parser {
	p := &Parser{
		s:        s,
		maxDepth: DefaultMaxDepth,
		pending:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromBytes is shorthand for New(scanner.New(data))
func NewFromBytes(data []byte, opts ...Option) *Parser {
	return New(scanner.New(data), opts...)
}

// Scanner returns the underlying cursor
func (p *Parser) Scanner() *scanner.Scanner {
	return p.s
}

// ParseValue parses one value using the full object grammar. Alternatives
// are tried in a fixed order; IndirectReference must precede Number since
// both begin with an integer.
func (p *Parser) ParseValue() (object.Value, error) {
	return p.value(false)
}

// ParseOperand parses one content-stream operand. It is ParseValue without
// IndirectReference, applied recursively inside arrays and dictionaries.
func (p *Parser) ParseOperand() (object.Value, error) {
	return p.value(true)
}

func (p *Parser) value(operand bool) (object.Value, error) {
	start := p.s.Pos()
	if v, ok := scanner.Try(p.s, p.boolValue); ok {
		return v, nil
	}
	if v, ok := scanner.Try(p.s, p.nullValue); ok {
		return v, nil
	}
	if v, ok := scanner.Try(p.s, p.nameValue); ok {
		return v, nil
	}
	if v, ok := scanner.Try(p.s, func() (object.Value, error) { return p.array(operand) }); ok {
		return v, nil
	}
	if v, ok := scanner.Try(p.s, p.stringValue); ok {
		return v, nil
	}
	if !operand {
		if v, ok := scanner.Try(p.s, p.referenceValue); ok {
			return v, nil
		}
	}
	if v, ok := scanner.Try(p.s, p.numberValue); ok {
		return v, nil
	}
	v, err := scanner.Attempt(p.s, func() (object.Value, error) { return p.dictionary(operand) })
	if err != nil {
		if pdferrors.IsBacktrackable(err) {
			return nil, pdferrors.Malformed("value", start, p.s.PeekBytes(16))
		}
		return nil, err
	}
	return v, nil
}

// Adapters so the typed parsers can be used as Try alternatives.

func (p *Parser) boolValue() (object.Value, error)      { return p.Boolean() }
func (p *Parser) nullValue() (object.Value, error)      { return p.Null() }
func (p *Parser) nameValue() (object.Value, error)      { return p.Name() }
func (p *Parser) stringValue() (object.Value, error)    { return p.String() }
func (p *Parser) referenceValue() (object.Value, error) { return p.Reference() }
func (p *Parser) numberValue() (object.Value, error)    { return p.Number() }

// Array parses "[ value* ]" with the full grammar
func (p *Parser) Array() (object.Array, error) {
	return p.array(false)
}

// Dictionary parses "<< (/Name value)* >>" with the full grammar
func (p *Parser) Dictionary() (*object.Dictionary, error) {
	return p.dictionary(false)
}

func (p *Parser) array(operand bool) (object.Array, error) {
	if err := p.s.Expect("["); err != nil {
		return nil, err
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	arr := object.Array{}
	for {
		p.s.SkipWhitespace()
		ch, ok := p.s.Peek()
		if !ok {
			return nil, pdferrors.Malformed("]", p.s.Pos(), nil)
		}
		if ch == scanner.RightSquare {
			_ = p.s.Advance(1)
			return arr, nil
		}
		elem, err := p.value(operand)
		if err != nil {
			return nil, err
		}
		arr = append(arr, elem)
	}
}

func (p *Parser) dictionary(operand bool) (*object.Dictionary, error) {
	if err := p.s.Expect("<<"); err != nil {
		return nil, err
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	dict := object.NewDictionary()
	for {
		p.s.SkipWhitespace()
		if p.s.AtEnd() {
			return nil, pdferrors.Malformed(">>", p.s.Pos(), nil)
		}
		if p.s.HasPrefix(">>") {
			_ = p.s.Advance(2)
			return dict, nil
		}
		key, err := p.Name()
		if err != nil {
			return nil, err
		}
		p.s.SkipWhitespace()
		val, err := p.value(operand)
		if err != nil {
			return nil, err
		}
		dict.Set(string(key), val)
	}
}

func (p *Parser) enter() error {
	if p.depth >= p.maxDepth {
		return pdferrors.NewAt(pdferrors.ErrorTypeMalformedToken, p.s.Pos(), "nesting too deep")
	}
	p.depth++
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// Reference parses "id gen R"
func (p *Parser) Reference() (object.Reference, error) {
	id, err := p.Uint()
	if err != nil {
		return object.Reference{}, err
	}
	if err := p.requireWhitespace(); err != nil {
		return object.Reference{}, err
	}
	gen, err := p.Uint()
	if err != nil {
		return object.Reference{}, err
	}
	if err := p.requireWhitespace(); err != nil {
		return object.Reference{}, err
	}
	if err := p.Keyword("R"); err != nil {
		return object.Reference{}, err
	}
	return object.Reference{ID: id, Generation: gen}, nil
}

// requireWhitespace consumes one or more whitespace bytes
func (p *Parser) requireWhitespace() error {
	ch, ok := p.s.Peek()
	if !ok || !scanner.IsWhitespace(ch) {
		return pdferrors.Malformed("whitespace", p.s.Pos(), p.s.PeekBytes(1))
	}
	p.s.SkipWhitespace()
	return nil
}
