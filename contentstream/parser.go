package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind is the type of an operand.
type Kind int

const (
	Number Kind = iota
	Name
	String
	Array
	Dict
	Bool
	Null
)

// Operand is one operand value.
type Operand struct {
	Kind  Kind
	Num   float64
	Str   string // Name or String bytes; "true"/"false" for Bool
	Items []Operand
}

// Operation is an operator with the operands that preceded it.
type Operation struct {
	Operator string
	Operands []Operand
}

// Float returns operand i as a number, and whether it was one.
func (op Operation) Float(i int) (float64, bool) {
	if i < 0 || i >= len(op.Operands) || op.Operands[i].Kind != Number {
		return 0, false
	}
	return op.Operands[i].Num, true
}

// Floats returns the operands as numbers when there are exactly n of them
// and all are numeric.
func (op Operation) Floats(n int) ([]float64, bool) {
	if len(op.Operands) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		v, ok := op.Float(i)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Parse tokenizes data.
func Parse(data []byte) ([]Operation, error) {
	p := &parser{data: data}
	return p.parse()
}

type parser struct {
	data     []byte
	pos      int
	operands []Operand
	ops      []Operation
}

func (p *parser) parse() ([]Operation, error) {
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return p.ops, nil
		}
		if c := p.data[p.pos]; isRegular(c) && !isNumberStart(c) {
			p.operator()
			continue
		}
		start := p.pos
		v, err := p.operand()
		if err != nil {
			return nil, fmt.Errorf("contentstream: offset %d: %w", start, err)
		}
		p.operands = append(p.operands, v)
	}
}

// operator reads a keyword. true, false and null are operands.
func (p *parser) operator() {
	start := p.pos
	for p.pos < len(p.data) && isRegular(p.data[p.pos]) {
		p.pos++
	}
	word := string(p.data[start:p.pos])
	switch word {
	case "true", "false":
		p.operands = append(p.operands, Operand{Kind: Bool, Str: word})
		return
	case "null":
		p.operands = append(p.operands, Operand{Kind: Null})
		return
	case "BI":
		p.skipInlineImage()
	}
	p.ops = append(p.ops, Operation{Operator: word, Operands: p.operands})
	p.operands = nil
}

// skipInlineImage moves past the image dictionary and data up to and
// including the EI keyword.
func (p *parser) skipInlineImage() {
	i := bytes.Index(p.data[p.pos:], []byte("ID"))
	if i < 0 {
		p.pos = len(p.data)
		return
	}
	p.pos += i + 2
	for p.pos < len(p.data) {
		j := bytes.Index(p.data[p.pos:], []byte("EI"))
		if j < 0 {
			p.pos = len(p.data)
			return
		}
		at := p.pos + j
		end := at + 2
		if at > 0 && isSpace(p.data[at-1]) && (end == len(p.data) || !isRegular(p.data[end])) {
			p.pos = end
			return
		}
		p.pos = end
	}
}

func (p *parser) operand() (Operand, error) {
	c := p.data[p.pos]
	switch {
	case isNumberStart(c):
		return p.number()
	case c == '/':
		p.pos++
		return Operand{Kind: Name, Str: p.name()}, nil
	case c == '(':
		return p.literal()
	case c == '<' && p.peek(1) == '<':
		return p.dict()
	case c == '<':
		return p.hex()
	case c == '[':
		p.pos++
		items, err := p.until(']')
		return Operand{Kind: Array, Items: items}, err
	}
	return Operand{}, fmt.Errorf("unexpected %q", c)
}

func (p *parser) peek(n int) byte {
	if p.pos+n < len(p.data) {
		return p.data[p.pos+n]
	}
	return 0
}

func (p *parser) number() (Operand, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.data) && (isDigit(p.data[p.pos]) || p.data[p.pos] == '.') {
		p.pos++
	}
	tok := string(p.data[start:p.pos])
	if tok == "-" || tok == "+" || tok == "." {
		return Operand{Kind: Number}, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Operand{}, fmt.Errorf("number %q: %w", tok, err)
	}
	return Operand{Kind: Number, Num: v}, nil
}

func (p *parser) name() string {
	var b bytes.Buffer
	for p.pos < len(p.data) && isRegular(p.data[p.pos]) {
		c := p.data[p.pos]
		if c == '#' && p.pos+2 < len(p.data) && isHex(p.data[p.pos+1]) && isHex(p.data[p.pos+2]) {
			b.WriteByte(unhex(p.data[p.pos+1])<<4 | unhex(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return b.String()
}

// literal reads a (string), honouring nesting and backslash escapes. The
// escapes are kept as written.
func (p *parser) literal() (Operand, error) {
	start := p.pos + 1
	depth := 0
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case '\\':
			p.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.pos++
				return Operand{Kind: String, Str: string(p.data[start : p.pos-1])}, nil
			}
		}
		p.pos++
	}
	return Operand{}, fmt.Errorf("unterminated string")
}

func (p *parser) hex() (Operand, error) {
	p.pos++
	var b bytes.Buffer
	var hi byte
	half := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch {
		case c == '>':
			if half {
				b.WriteByte(hi << 4)
			}
			return Operand{Kind: String, Str: b.String()}, nil
		case isHex(c):
			if half {
				b.WriteByte(hi<<4 | unhex(c))
			} else {
				hi = unhex(c)
			}
			half = !half
		case isSpace(c):
		default:
			return Operand{}, fmt.Errorf("bad hex digit %q", c)
		}
	}
	return Operand{}, fmt.Errorf("unterminated hex string")
}

func (p *parser) dict() (Operand, error) {
	p.pos += 2
	var items []Operand
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return Operand{}, fmt.Errorf("unterminated dictionary")
		}
		if p.data[p.pos] == '>' && p.peek(1) == '>' {
			p.pos += 2
			return Operand{Kind: Dict, Items: items}, nil
		}
		v, err := p.value()
		if err != nil {
			return Operand{}, err
		}
		items = append(items, v)
	}
}

// until reads operands up to the closing delimiter.
func (p *parser) until(end byte) ([]Operand, error) {
	var items []Operand
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("missing %q", end)
		}
		if p.data[p.pos] == end {
			p.pos++
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

// value reads an operand inside an array or dictionary, where keywords are
// values too.
func (p *parser) value() (Operand, error) {
	if c := p.data[p.pos]; isRegular(c) && !isNumberStart(c) {
		start := p.pos
		for p.pos < len(p.data) && isRegular(p.data[p.pos]) {
			p.pos++
		}
		switch w := string(p.data[start:p.pos]); w {
		case "true", "false":
			return Operand{Kind: Bool, Str: w}, nil
		case "null":
			return Operand{Kind: Null}, nil
		default:
			return Operand{Kind: Name, Str: w}, nil
		}
	}
	return p.operand()
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case isSpace(c):
			p.pos++
		case c == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		default:
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool { return !isSpace(c) && !isDelimiter(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(c byte) bool { return isDigit(c) || c == '-' || c == '+' || c == '.' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
