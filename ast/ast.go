package ast

// Expr is the closed set of expression nodes. Nodes form a tree; each node
// is owned by its parent and the whole tree is dropped once it has been
// lowered.
type Expr interface {
	isExpr()
}

type Number float64

func (v Number) isExpr() {}

type Variable struct {
	Name string
}

func (v Variable) isExpr() {}

type Binary struct {
	Op  rune
	LHS Expr
	RHS Expr
}

func (v Binary) isExpr() {}

type Call struct {
	Callee string
	Args   []Expr
}

func (v Call) isExpr() {}

// TopLevel is what one parser step yields: a function definition, an extern
// prototype, or a bare expression wrapped into an anonymous Function.
type TopLevel interface {
	isTopLevel()
}

type Prototype struct {
	Name   string
	Params []string
}

func (v Prototype) isTopLevel() {}

// IsAnon reports whether the prototype belongs to a synthesized top-level
// expression rather than a named definition.
func (v Prototype) IsAnon() bool {
	return v.Name == ""
}

type Function struct {
	Proto Prototype
	Body  Expr
}

func (v Function) isTopLevel() {}
