package parser

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/google/uuid"
)

type parser struct {
	tokens []Token
	pos    int
}

// ParseExpr parses the textual form of a predicate:
//
//	pred    := and { (or | ||) and }
//	and     := unary { (and | &&) unary }
//	unary   := (! | not) unary | "(" pred ")" | TRUEPREDICATE | FALSEPREDICATE | compare
//	compare := sum cond ["[c]"] sum
//	sum     := product { (+ | -) product }
//	product := factor { (* | /) factor }
//	factor  := literal | column [.@size | .@count] | "(" sum ")"
func ParseExpr(text string) (Pred, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != TokenEOF {
		return nil, p.unexpected(t)
	}
	return pred, nil
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t Token) error {
	if t.Type == TokenEOF {
		return fmt.Errorf("%w: unexpected end of query", ErrSyntax)
	}
	return fmt.Errorf("%w: unexpected `%s` at position %d", ErrSyntax, t.Value, t.Position)
}

func keyword(t Token, words ...string) bool {
	if t.Type != TokenIdentifier {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(t.Value, w) {
			return true
		}
	}
	return false
}

func (p *parser) parseOr() (Pred, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	alts := []Pred{first}
	for t := p.peek(); t.Type == TokenOr || keyword(t, "or"); t = p.peek() {
		p.next()
		alt, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}

	if len(alts) == 1 {
		return first, nil
	}
	return OrPred{Alternatives: alts}, nil
}

func (p *parser) parseAnd() (Pred, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	terms := []Pred{first}
	for t := p.peek(); t.Type == TokenAnd || keyword(t, "and"); t = p.peek() {
		p.next()
		term, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}

	if len(terms) == 1 {
		return first, nil
	}
	return AndPred{Terms: terms}, nil
}

func (p *parser) parseUnary() (Pred, error) {
	t := p.peek()

	switch {
	case t.Type == TokenNot || keyword(t, "not"):
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NotPred{Inner: inner}, nil
	case keyword(t, "truepredicate"):
		p.next()
		return TruePred{}, nil
	case keyword(t, "falsepredicate"):
		p.next()
		return FalsePred{}, nil
	case t.Type == TokenLParen:
		// either a grouped predicate or the start of a parenthesized
		// arithmetic operand, try the former first
		save := p.pos
		p.next()
		inner, err := p.parseOr()
		if err == nil && p.peek().Type == TokenRParen {
			p.next()
			return inner, nil
		}
		p.pos = save
	}

	return p.parseCompare()
}

func (p *parser) parseCompare() (Pred, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return ComparePred{Left: left, Cond: cond, Right: right}, nil
}

func (p *parser) parseCond() (ops.Cond, error) {
	t := p.next()

	var cond ops.Cond
	switch {
	case t.Type == TokenCond:
		c, err := ops.ParseCond(t.Value)
		if err != nil {
			return c, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		cond = c
	case keyword(t, "beginswith", "endswith", "contains", "like"):
		c, err := ops.ParseCond(strings.ToUpper(t.Value))
		if err != nil {
			return c, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		cond = c
	default:
		return cond, p.unexpected(t)
	}

	if p.peek().Type == TokenCase {
		p.next()
		ins := cond.CaseInsensitive()
		if ins == cond {
			return cond, fmt.Errorf("%w: [c] does not apply to `%s`", ErrSyntax, cond)
		}
		cond = ins
	}
	return cond, nil
}

func (p *parser) parseSum() (Operand, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for t := p.peek(); t.Type == TokenArith && (t.Value == "+" || t.Value == "-"); t = p.peek() {
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = ArithExpr{Op: t.Value[0], Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (Operand, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for t := p.peek(); t.Type == TokenArith && (t.Value == "*" || t.Value == "/"); t = p.peek() {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = ArithExpr{Op: t.Value[0], Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (Operand, error) {
	t := p.next()

	switch t.Type {
	case TokenLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if r := p.next(); r.Type != TokenRParen {
			return nil, p.unexpected(r)
		}
		return inner, nil
	case TokenArith:
		if t.Value != "-" || p.peek().Type != TokenNumber {
			return nil, p.unexpected(t)
		}
		return parseNumber("-" + p.next().Value)
	case TokenNumber:
		return parseNumber(t.Value)
	case TokenIdentifier:
		switch {
		case keyword(t, "null", "nil"):
			return Literal{Value: schema.Null()}, nil
		case keyword(t, "true"):
			return Literal{Value: schema.BoolValue(true)}, nil
		case keyword(t, "false"):
			return Literal{Value: schema.BoolValue(false)}, nil
		}
		ref := ColumnRef{Name: t.Value}
		if p.peek().Type == TokenSize {
			p.next()
			ref.Size = true
		}
		return ref, nil
	case TokenEOF, TokenRParen, TokenCond, TokenCase, TokenSize, TokenAnd, TokenOr, TokenNot:
		return nil, p.unexpected(t)
	}

	v, err := parseLiteral(t)
	if err != nil {
		return nil, fmt.Errorf("%w: bad literal `%s` at position %d: %w", ErrSyntax, t.Value, t.Position, err)
	}
	return Literal{Value: v}, nil
}

func parseNumber(raw string) (Literal, error) {
	if !strings.ContainsAny(raw, ".eE") {
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("%w: bad integer `%s`: %w", ErrSyntax, raw, err)
		}
		return Literal{Value: schema.Int(i), Raw: raw}, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Literal{}, fmt.Errorf("%w: bad number `%s`: %w", ErrSyntax, raw, err)
	}
	return Literal{Value: schema.Double(f), Raw: raw}, nil
}

func parseLiteral(t Token) (schema.Value, error) {
	switch t.Type {
	case TokenString:
		if t.Value[0] == '\'' {
			return schema.String(t.Value[1 : len(t.Value)-1]), nil
		}
		s, err := strconv.Unquote(t.Value)
		if err != nil {
			return schema.Null(), err
		}
		return schema.String(s), nil
	case TokenBase64:
		b, err := base64.StdEncoding.DecodeString(t.Value[4 : len(t.Value)-1])
		if err != nil {
			return schema.Null(), err
		}
		return schema.Binary(b), nil
	case TokenTimestamp:
		sec, nsec, _ := strings.Cut(t.Value[1:], ":")
		s, err := strconv.ParseInt(sec, 10, 64)
		if err != nil {
			return schema.Null(), err
		}
		ns, err := strconv.ParseInt(nsec, 10, 64)
		if err != nil {
			return schema.Null(), err
		}
		return schema.Timestamp(time.Unix(s, ns).UTC()), nil
	case TokenLink:
		key, err := strconv.ParseInt(t.Value[1:], 10, 64)
		if err != nil {
			return schema.Null(), err
		}
		return schema.Link(key), nil
	case TokenUUID:
		u, err := uuid.Parse(t.Value[len("uuid(") : len(t.Value)-1])
		if err != nil {
			return schema.Null(), err
		}
		return schema.UUID(u), nil
	case TokenObjectID:
		id, err := schema.ParseObjectID(t.Value[len("oid(") : len(t.Value)-1])
		if err != nil {
			return schema.Null(), err
		}
		return schema.OID(id), nil
	default:
		return schema.Null(), fmt.Errorf("unexpected %s token", t.Type)
	}
}
