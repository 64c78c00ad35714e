package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota

	DEF
	EXTERN

	IDENT
	NUMBER

	PUNCT
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:    "EOF",
		DEF:    "DEF",
		EXTERN: "EXTERN",
		IDENT:  "IDENT",
		NUMBER: "NUMBER",
		PUNCT:  "PUNCT",
	}
	return data[t]
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// Token is one lexeme. Lit is filled for IDENT, Num for NUMBER and Ch for
// PUNCT; the other fields are zero.
type Token struct {
	Kind     TokenKind
	Lit      string
	Num      float64
	Ch       rune
	Location Span
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT:
		return fmt.Sprintf("IDENT(%s)", t.Lit)
	case NUMBER:
		return fmt.Sprintf("NUMBER(%g)", t.Num)
	case PUNCT:
		return fmt.Sprintf("PUNCT(%c)", t.Ch)
	}
	return t.Kind.String()
}
