package errors

import (
	"fmt"

	"github.com/pontaoski/kaleigo/types"
)

// Parse failures. These are recoverable: the driver discards the construct
// being parsed and resumes at the next token.

type ExpectedKindGotKind struct {
	Expected []types.TokenKind
	Got      types.Token
	Location types.Span
}

func (e ExpectedKindGotKind) Error() string {
	return fmt.Sprintf("got %s, expected one of %v. %s", e.Got, e.Expected, e.Location)
}

type ExpectedPunct struct {
	Ch       rune
	Got      types.Token
	Location types.Span
}

func (e ExpectedPunct) Error() string {
	return fmt.Sprintf("got %s, expected %q. %s", e.Got, e.Ch, e.Location)
}

type ExpectedExpression struct {
	Got      types.Token
	Location types.Span
}

func (e ExpectedExpression) Error() string {
	return fmt.Sprintf("got %s, expected an expression. %s", e.Got, e.Location)
}

// Lowering failures. Also recoverable: the definition or expression that
// failed to lower is dropped without touching earlier units.

type UnknownVariable struct {
	Name string
}

func (e UnknownVariable) Error() string {
	return fmt.Sprintf("unknown variable name %q", e.Name)
}

type UnknownFunction struct {
	Name string
}

func (e UnknownFunction) Error() string {
	return fmt.Sprintf("unknown function referenced: %q", e.Name)
}

type ArityMismatch struct {
	Name string
	Want int
	Got  int
}

func (e ArityMismatch) Error() string {
	return fmt.Sprintf("incorrect number of arguments to %q: want %d, got %d", e.Name, e.Want, e.Got)
}

type InvalidOperator struct {
	Op rune
}

func (e InvalidOperator) Error() string {
	return fmt.Sprintf("invalid binary operator %q", e.Op)
}

type Redefinition struct {
	Name string
}

func (e Redefinition) Error() string {
	return fmt.Sprintf("redefinition of function %q", e.Name)
}

type RedeclarationArity struct {
	Name string
	Want int
	Got  int
}

func (e RedeclarationArity) Error() string {
	return fmt.Sprintf("redeclaration of %q with different arity: had %d, got %d", e.Name, e.Want, e.Got)
}

// UnresolvableSymbol is fatal. A function lowered successfully but no
// finalized unit and no external resolver can produce its address, so any
// code calling it can never run.
type UnresolvableSymbol struct {
	Name string
}

func (e UnresolvableSymbol) Error() string {
	return fmt.Sprintf("no address can be produced for symbol %q", e.Name)
}
