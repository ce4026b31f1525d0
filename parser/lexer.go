package parser

import (
	"fmt"
	"regexp"
)

type TokenType string

const (
	TokenLParen     TokenType = "LPAREN"
	TokenRParen     TokenType = "RPAREN"
	TokenAnd        TokenType = "AND"
	TokenOr         TokenType = "OR"
	TokenNot        TokenType = "NOT"
	TokenCond       TokenType = "COND"
	TokenCase       TokenType = "CASE"
	TokenSize       TokenType = "SIZE"
	TokenArith      TokenType = "ARITH"
	TokenNumber     TokenType = "NUMBER"
	TokenString     TokenType = "STRING"
	TokenBase64     TokenType = "BASE64"
	TokenTimestamp  TokenType = "TIMESTAMP"
	TokenLink       TokenType = "LINK"
	TokenUUID       TokenType = "UUID"
	TokenObjectID   TokenType = "OID"
	TokenIdentifier TokenType = "IDENTIFIER"
	TokenWhitespace TokenType = "WHITESPACE"
	TokenEOF        TokenType = "EOF"
)

type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Value)
}

type tokenPattern struct {
	Type    TokenType
	Pattern *regexp.Regexp
}

// literal forms come before identifiers, two character operators before
// their one character prefixes
var patterns = []tokenPattern{
	{TokenWhitespace, regexp.MustCompile(`^\s+`)},
	{TokenBase64, regexp.MustCompile(`^B64"[A-Za-z0-9+/=]*"`)},
	{TokenTimestamp, regexp.MustCompile(`^T-?\d+:-?\d+`)},
	{TokenLink, regexp.MustCompile(`^O\d+\b`)},
	{TokenUUID, regexp.MustCompile(`^uuid\([0-9a-fA-F-]{36}\)`)},
	{TokenObjectID, regexp.MustCompile(`^oid\([0-9a-fA-F]{24}\)`)},
	{TokenString, regexp.MustCompile(`^"(?:[^"\\]|\\.)*"|^'[^']*'`)},
	{TokenNumber, regexp.MustCompile(`^(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)},
	{TokenSize, regexp.MustCompile(`^\.@(?:size|count)\b`)},
	{TokenCase, regexp.MustCompile(`^\[c\]`)},
	{TokenAnd, regexp.MustCompile(`^&&`)},
	{TokenOr, regexp.MustCompile(`^\|\|`)},
	{TokenCond, regexp.MustCompile(`^(?:==|!=|<>|<=|>=|=|<|>)`)},
	{TokenNot, regexp.MustCompile(`^!`)},
	{TokenArith, regexp.MustCompile(`^[-+*/]`)},
	{TokenLParen, regexp.MustCompile(`^\(`)},
	{TokenRParen, regexp.MustCompile(`^\)`)},
	{TokenIdentifier, regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*`)},
}

// Tokenize splits text into tokens, dropping whitespace. The result always
// ends with a TokenEOF.
func Tokenize(text string) ([]Token, error) {
	var tokens []Token

	for pos := 0; pos < len(text); {
		remaining := text[pos:]
		matched := false

		for _, p := range patterns {
			loc := p.Pattern.FindStringIndex(remaining)
			if loc == nil {
				continue
			}
			if p.Type != TokenWhitespace {
				tokens = append(tokens, Token{Type: p.Type, Value: remaining[:loc[1]], Position: pos})
			}
			pos += loc[1]
			matched = true
			break
		}

		if !matched {
			return nil, fmt.Errorf("%w: unexpected character at position %d: %q", ErrSyntax, pos, text[pos])
		}
	}

	return append(tokens, Token{Type: TokenEOF, Position: len(text)}), nil
}
