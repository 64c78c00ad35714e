package parser

import (
	"io"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/kaleigo/ast"
	"github.com/pontaoski/kaleigo/errors"
	"github.com/pontaoski/kaleigo/lexer"
	"github.com/pontaoski/kaleigo/types"
)

// precedences maps a binary operator to its binding power; higher binds
// tighter. Anything absent is not an infix operator.
var precedences = map[rune]int{
	'<': 10,
	'+': 20,
	'-': 30,
	'*': 40,
}

// Precedence returns the binding power of op, or -1 if op is not a binary
// operator.
func Precedence(op rune) int {
	if prec, ok := precedences[op]; ok {
		return prec
	}
	return -1
}

type Parser struct {
	l *lexer.Lexer
}

func NewParser(l *lexer.Lexer) *Parser {
	return &Parser{l}
}

// TopLevel parses the next top-level construct: a definition, an extern
// prototype, or a bare expression wrapped into an anonymous nullary
// Function. Stray semicolons are skipped. Returns io.EOF once the input is
// exhausted. A parse failure leaves the offending token as lookahead; call
// Advance before retrying.
func (p *Parser) TopLevel() (top ast.TopLevel, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if ok {
				top = nil
				err = tracerr.Wrap(rerr)
			} else {
				panic(r)
			}
		}
	}()

	for {
		switch {
		case p.l.PeekIs(types.EOF):
			return nil, io.EOF
		case p.l.PeekIsPunct(';'):
			p.l.Lex()
		case p.l.PeekIs(types.DEF):
			return p.parseDefinition(), nil
		case p.l.PeekIs(types.EXTERN):
			return p.parseExtern(), nil
		default:
			return p.parseTopLevelExpr(), nil
		}
	}
}

// Advance discards one token so that retrying after a failed TopLevel always
// makes forward progress.
func (p *Parser) Advance() {
	if !p.l.PeekIs(types.EOF) {
		p.l.Lex()
	}
}

// expectPunct consumes ch. On mismatch it fails with the offending token
// still in lookahead, so that one Advance is enough to move past it.
func (p *Parser) expectPunct(ch rune) {
	tok := p.l.Peek()
	if tok.Kind != types.PUNCT || tok.Ch != ch {
		panic(errors.ExpectedPunct{
			Ch:       ch,
			Got:      tok,
			Location: tok.Location,
		})
	}
	p.l.Lex()
}

// definition := "def" prototype expression
func (p *Parser) parseDefinition() ast.TopLevel {
	p.l.LexExpecting(types.DEF)
	proto := p.parsePrototype()

	return ast.Function{
		Proto: proto,
		Body:  p.parseExpression(),
	}
}

// extern := "extern" prototype
func (p *Parser) parseExtern() ast.TopLevel {
	p.l.LexExpecting(types.EXTERN)
	return p.parsePrototype()
}

func (p *Parser) parseTopLevelExpr() ast.TopLevel {
	return ast.Function{
		Proto: ast.Prototype{},
		Body:  p.parseExpression(),
	}
}

// prototype := ident "(" ident* ")"
func (p *Parser) parsePrototype() ast.Prototype {
	if !p.l.PeekIs(types.IDENT) {
		tok := p.l.Peek()
		panic(errors.ExpectedKindGotKind{
			Expected: []types.TokenKind{types.IDENT},
			Got:      tok,
			Location: tok.Location,
		})
	}
	name := p.l.Lex()

	p.expectPunct('(')
	var params []string
	for p.l.PeekIs(types.IDENT) {
		params = append(params, p.l.Lex().Lit)
	}
	p.expectPunct(')')

	return ast.Prototype{
		Name:   name.Lit,
		Params: params,
	}
}

func (p *Parser) parseExpression() ast.Expr {
	lhs := p.parsePrimary()
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS climbs the precedence table: operators below minPrec belong
// to an enclosing call, equal precedence associates left, and a strictly
// tighter following operator is absorbed into the right-hand side first.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) ast.Expr {
	for {
		tokPrec := p.peekPrecedence()
		if tokPrec < minPrec {
			return lhs
		}

		op := p.l.Lex().Ch
		rhs := p.parsePrimary()

		if tokPrec < p.peekPrecedence() {
			rhs = p.parseBinOpRHS(tokPrec+1, rhs)
		}

		lhs = ast.Binary{
			Op:  op,
			LHS: lhs,
			RHS: rhs,
		}
	}
}

func (p *Parser) peekPrecedence() int {
	tok := p.l.Peek()
	if tok.Kind != types.PUNCT {
		return -1
	}
	return Precedence(tok.Ch)
}

// primary := identexpr | number | "(" expression ")"
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.IDENT:
		return p.parseIdentExpr()
	case types.NUMBER:
		return ast.Number(p.l.Lex().Num)
	case types.PUNCT:
		if tok.Ch == '(' {
			p.l.Lex()
			expr := p.parseExpression()
			p.expectPunct(')')
			return expr
		}
	}

	panic(errors.ExpectedExpression{
		Got:      tok,
		Location: tok.Location,
	})
}

// identexpr := ident | ident "(" expression ("," expression)* ")"
func (p *Parser) parseIdentExpr() ast.Expr {
	name := p.l.LexExpecting(types.IDENT)

	if !p.l.PeekIsPunct('(') {
		return ast.Variable{Name: name.Lit}
	}

	p.l.Lex()
	var args []ast.Expr
	if !p.l.PeekIsPunct(')') {
		for {
			args = append(args, p.parseExpression())

			if p.l.PeekIsPunct(')') {
				break
			}
			p.expectPunct(',')
		}
	}
	p.l.Lex()

	return ast.Call{
		Callee: name.Lit,
		Args:   args,
	}
}
