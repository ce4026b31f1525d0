package parser

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(`name BEGINSWITH[c] "a b" && tags.@count>=2 || !(at < T-5:10)`)
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokenIdentifier, TokenIdentifier, TokenCase, TokenString,
		TokenAnd, TokenIdentifier, TokenSize, TokenCond, TokenNumber,
		TokenOr, TokenNot, TokenLParen, TokenIdentifier, TokenCond, TokenTimestamp, TokenRParen,
		TokenEOF,
	}, types)
	assert.Equal(t, 19, tokens[3].Position)
}

func TestTokenizeLiteralForms(t *testing.T) {
	for _, tc := range []struct {
		text string
		typ  TokenType
	}{
		{`B64"AAE="`, TokenBase64},
		{`O12`, TokenLink},
		{`O12x`, TokenIdentifier},
		{`Tuesday`, TokenIdentifier},
		{`uuid(6ba7b810-9dad-11d1-80b4-00c04fd430c8)`, TokenUUID},
		{`oid(0123456789abcdef01234567)`, TokenObjectID},
		{`'single'`, TokenString},
		{`"esc\"aped"`, TokenString},
		{`1.5e-3`, TokenNumber},
		{`.5`, TokenNumber},
	} {
		t.Run(tc.text, func(t *testing.T) {
			tokens, err := Tokenize(tc.text)
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, tc.typ, tokens[0].Type)
			assert.Equal(t, tc.text, tokens[0].Value)
		})
	}
}

func TestParseExprShape(t *testing.T) {
	pred, err := ParseExpr(`a == 1 and b != 'x' or not (c > 2)`)
	require.NoError(t, err)

	assert.Equal(t, OrPred{Alternatives: []Pred{
		AndPred{Terms: []Pred{
			ComparePred{Left: ColumnRef{Name: "a"}, Cond: ops.Equal, Right: Literal{Value: schema.Int(1), Raw: "1"}},
			ComparePred{Left: ColumnRef{Name: "b"}, Cond: ops.NotEqual, Right: Literal{Value: schema.String("x")}},
		}},
		NotPred{Inner: ComparePred{Left: ColumnRef{Name: "c"}, Cond: ops.Greater, Right: Literal{Value: schema.Int(2), Raw: "2"}}},
	}}, pred)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	pred, err := ParseExpr(`(a + 2) * b >= a - -1 / 2`)
	require.NoError(t, err)

	two := Literal{Value: schema.Int(2), Raw: "2"}
	assert.Equal(t, ComparePred{
		Left: ArithExpr{
			Op:    '*',
			Left:  ArithExpr{Op: '+', Left: ColumnRef{Name: "a"}, Right: two},
			Right: ColumnRef{Name: "b"},
		},
		Cond:  ops.GreaterEqual,
		Right: ArithExpr{
			Op:    '-',
			Left:  ColumnRef{Name: "a"},
			Right: ArithExpr{Op: '/', Left: Literal{Value: schema.Int(-1), Raw: "-1"}, Right: two},
		},
	}, pred)
}

func TestParseGroupedPredicates(t *testing.T) {
	pred, err := ParseExpr(`((a == 1 || a == 2)) && TRUEPREDICATE`)
	require.NoError(t, err)

	one := Literal{Value: schema.Int(1), Raw: "1"}
	two := Literal{Value: schema.Int(2), Raw: "2"}
	assert.Equal(t, AndPred{Terms: []Pred{
		OrPred{Alternatives: []Pred{
			ComparePred{Left: ColumnRef{Name: "a"}, Cond: ops.Equal, Right: one},
			ComparePred{Left: ColumnRef{Name: "a"}, Cond: ops.Equal, Right: two},
		}},
		TruePred{},
	}}, pred)
}

func TestParseConditions(t *testing.T) {
	for text, want := range map[string]ops.Cond{
		`a = 1`:             ops.Equal,
		`a <> 1`:            ops.NotEqual,
		`a <= 1`:            ops.LessEqual,
		`a ==[c] 'x'`:       ops.EqualIns,
		`a !=[c] 'x'`:       ops.NotEqualIns,
		`a beginswith 'x'`:  ops.BeginsWith,
		`a ENDSWITH[c] 'x'`: ops.EndsWithIns,
		`a Contains[c] 'x'`: ops.ContainsIns,
		`a LIKE '*x?'`:      ops.Like,
	} {
		t.Run(text, func(t *testing.T) {
			pred, err := ParseExpr(text)
			require.NoError(t, err)
			require.IsType(t, ComparePred{}, pred)
			assert.Equal(t, want, pred.(ComparePred).Cond)
		})
	}
}

func TestParseLiterals(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	oid, err := schema.ParseObjectID("0123456789abcdef01234567")
	require.NoError(t, err)

	for _, tc := range []struct {
		text string
		want schema.Value
	}{
		{`NULL`, schema.Null()},
		{`nil`, schema.Null()},
		{`true`, schema.BoolValue(true)},
		{`FALSE`, schema.BoolValue(false)},
		{`42`, schema.Int(42)},
		{`-7`, schema.Int(-7)},
		{`2.5`, schema.Double(2.5)},
		{`1e3`, schema.Double(1000)},
		{`"tab\tquote\""`, schema.String("tab\tquote\"")},
		{`'raw\n'`, schema.String(`raw\n`)},
		{`B64"AAE="`, schema.Binary([]byte{0, 1})},
		{`T1700000000:250`, schema.Timestamp(time.Unix(1700000000, 250))},
		{`T-1:0`, schema.Timestamp(time.Unix(-1, 0))},
		{`O17`, schema.Link(17)},
		{`uuid(6ba7b810-9dad-11d1-80b4-00c04fd430c8)`, schema.UUID(id)},
		{`oid(0123456789abcdef01234567)`, schema.OID(oid)},
	} {
		t.Run(tc.text, func(t *testing.T) {
			pred, err := ParseExpr("x == " + tc.text)
			require.NoError(t, err)

			lit, ok := pred.(ComparePred).Right.(Literal)
			require.True(t, ok, "right side is %T", pred.(ComparePred).Right)
			assert.Equal(t, tc.want.Kind, lit.Value.Kind)
			assert.True(t, schema.Equal(tc.want, lit.Value), "got %v", lit.Value)
		})
	}
}

func TestParseSize(t *testing.T) {
	pred, err := ParseExpr(`2 < tags.@count`)
	require.NoError(t, err)

	assert.Equal(t, ComparePred{
		Left:  Literal{Value: schema.Int(2), Raw: "2"},
		Cond:  ops.Less,
		Right: ColumnRef{Name: "tags", Size: true},
	}, pred)
}

func TestSyntaxErrors(t *testing.T) {
	for _, text := range []string{
		``,
		`a ==`,
		`a == 1 and`,
		`(a == 1`,
		`a == 1)`,
		`a ~ 1`,
		`a <[c] 1`,
		`a == 99999999999999999999`,
		`a == - b`,
		`a == B64"@@"`,
		`a == B64"AAE"`,
		`a == "bad\q"`,
		`a b`,
		`!`,
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseExpr(text)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}
