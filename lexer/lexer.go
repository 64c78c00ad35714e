package lexer

import (
	"bufio"
	"io"
	"strconv"
	"unicode"

	"github.com/pontaoski/kaleigo/errors"
	"github.com/pontaoski/kaleigo/types"
)

type Lexer struct {
	pos    types.Position
	reader *bufio.Reader
	peeked *types.Token
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Column: 0, Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

func (l *Lexer) newline() {
	l.pos.Line++
	l.pos.Column = 0
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos.Column--
}

func (l *Lexer) kinded(t types.TokenKind) types.Token {
	return types.Token{
		Location: types.SingleCharSpan(l.pos),
		Kind:     t,
	}
}

func numberChar(r rune) bool {
	return r == '.' || unicode.IsDigit(r)
}

func (l *Lexer) lexIdent() (types.Span, string) {
	var lit string
	var span types.Span

	r, _, err := l.reader.ReadRune()
	l.pos.Column++
	span.From = l.pos

	for {
		if err != nil {
			if err == io.EOF {
				return span, lit
			}
			panic(err)
		}

		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			lit += string(r)
		} else {
			l.backup()
			span.To = l.pos
			return span, lit
		}

		r, _, err = l.reader.ReadRune()
		l.pos.Column++
		span.To = l.pos
	}
}

// lexNumber accepts any run of digits and periods. Text like "1.2.3" is
// handed to ParseFloat as-is and the value is whatever the conversion makes
// of it; malformed literals are not lexer errors.
func (l *Lexer) lexNumber() (types.Span, float64) {
	var lit string
	var span types.Span

	r, _, err := l.reader.ReadRune()
	l.pos.Column++
	span.From = l.pos

	for {
		if err != nil {
			if err == io.EOF {
				break
			}
			panic(err)
		}

		if numberChar(r) {
			lit += string(r)
		} else {
			l.backup()
			span.To = l.pos
			break
		}

		r, _, err = l.reader.ReadRune()
		l.pos.Column++
		span.To = l.pos
	}

	val, _ := strconv.ParseFloat(lit, 64)
	return span, val
}

func (l *Lexer) Peek() types.Token {
	if l.peeked != nil {
		return *l.peeked
	}

	tok := l.Lex()
	l.peeked = &tok

	return tok
}

func (l *Lexer) PeekIs(k ...types.TokenKind) bool {
	token := l.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

// PeekIsPunct reports whether the next token is the given punctuation
// character.
func (l *Lexer) PeekIsPunct(ch rune) bool {
	token := l.Peek()
	return token.Kind == types.PUNCT && token.Ch == ch
}

func (l *Lexer) LexExpecting(k ...types.TokenKind) types.Token {
	token := l.Lex()
	for _, kind := range k {
		if token.Kind == kind {
			return token
		}
	}

	panic(errors.ExpectedKindGotKind{
		Expected: k,
		Got:      token,
		Location: token.Location,
	})
}

func (l *Lexer) Lex() types.Token {
	if l.peeked != nil {
		defer func() { l.peeked = nil }()
		return *l.peeked
	}

	for {
		r, _, err := l.reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				return l.kinded(types.EOF)
			}
			panic(err)
		}

		l.pos.Column++

		switch {
		case r == '\n':
			l.newline()
			continue
		case unicode.IsSpace(r):
			continue
		case r == '#':
			// comment until end of line
			for {
				r, _, err = l.reader.ReadRune()
				if err != nil {
					if err == io.EOF {
						return l.kinded(types.EOF)
					}
					panic(err)
				}
				if r == '\n' {
					l.newline()
					break
				}
			}
			continue
		case unicode.IsLetter(r):
			l.backup()
			span, lit := l.lexIdent()

			keywords := map[string]types.TokenKind{
				"def":    types.DEF,
				"extern": types.EXTERN,
			}

			if kind, ok := keywords[lit]; ok {
				return types.Token{Kind: kind, Lit: lit, Location: span}
			}

			return types.Token{Kind: types.IDENT, Lit: lit, Location: span}
		case numberChar(r):
			l.backup()
			span, val := l.lexNumber()

			return types.Token{Kind: types.NUMBER, Num: val, Location: span}
		}

		return types.Token{
			Kind:     types.PUNCT,
			Ch:       r,
			Location: types.SingleCharSpan(l.pos),
		}
	}
}
