package codegen

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/pontaoski/kaleigo/ast"
	"github.com/pontaoski/kaleigo/engine"
	"github.com/pontaoski/kaleigo/errors"
)

// Generator lowers AST nodes into the engine's open unit. vars is the
// variable environment of the function body currently being lowered; the
// language has no nesting, so it is a flat map cleared per definition.
type Generator struct {
	engine *engine.Engine
	vars   map[string]value.Value
}

func NewGenerator(e *engine.Engine) *Generator {
	return &Generator{
		engine: e,
		vars:   make(map[string]value.Value),
	}
}

// Mangle rewrites a user-chosen name into a symbol-safe one: a leading digit
// gains a letter prefix and anything outside [A-Za-z0-9_] becomes its
// decimal code point.
func Mangle(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_',
			'a' <= r && r <= 'z',
			'A' <= r && r <= 'Z',
			'0' <= r && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteString(strconv.Itoa(int(r)))
		}
	}

	out := b.String()
	if out != "" && '0' <= out[0] && out[0] <= '9' {
		out = "k" + out
	}

	return out
}

func (g *Generator) symbolName(p ast.Prototype) string {
	if p.IsAnon() {
		return g.engine.AnonName()
	}
	return Mangle(p.Name)
}

// Prototype declares p in the open unit under its generated name.
func (g *Generator) Prototype(p ast.Prototype) (*ir.Func, error) {
	fn, _, err := g.engine.Declare(g.symbolName(p), p.Params)
	return fn, err
}

// Function lowers a definition: declare, open an entry block, bind the
// parameters, lower the body, ret. A body that fails to lower takes its
// declaration down with it unless the declaration predated this definition.
func (g *Generator) Function(f ast.Function) (*ir.Func, error) {
	for k := range g.vars {
		delete(g.vars, k)
	}

	name := g.symbolName(f.Proto)
	fn, created, err := g.engine.Declare(name, f.Proto.Params)
	if err != nil {
		return nil, err
	}

	block := fn.NewBlock("entry")
	for i, param := range f.Proto.Params {
		g.vars[param] = fn.Params[i]
	}

	ret, err := g.Expression(f.Body, block)
	if err != nil {
		g.engine.Retract(name, fn, created)
		return nil, err
	}
	block.NewRet(ret)

	g.engine.MarkDefined(name)
	return fn, nil
}

// Expression lowers one expression node into b.
func (g *Generator) Expression(e ast.Expr, b *ir.Block) (value.Value, error) {
	switch expr := e.(type) {
	case ast.Number:
		return constant.NewFloat(irtypes.Double, float64(expr)), nil
	case ast.Variable:
		v, ok := g.vars[expr.Name]
		if !ok {
			return nil, errors.UnknownVariable{Name: expr.Name}
		}
		return v, nil
	case ast.Binary:
		lhs, err := g.Expression(expr.LHS, b)
		if err != nil {
			return nil, err
		}
		rhs, err := g.Expression(expr.RHS, b)
		if err != nil {
			return nil, err
		}

		switch expr.Op {
		case '+':
			return b.NewFAdd(lhs, rhs), nil
		case '-':
			return b.NewFSub(lhs, rhs), nil
		case '*':
			return b.NewFMul(lhs, rhs), nil
		case '<':
			// comparisons are ordinary numbers: false is 0.0, true is 1.0
			cmp := b.NewFCmp(enum.FPredULT, lhs, rhs)
			return b.NewUIToFP(cmp, irtypes.Double), nil
		}

		return nil, errors.InvalidOperator{Op: expr.Op}
	case ast.Call:
		callee := Mangle(expr.Callee)

		fn, arity, ok := g.engine.Lookup(callee)
		if !ok {
			return nil, errors.UnknownFunction{Name: expr.Callee}
		}
		if arity != len(expr.Args) {
			return nil, errors.ArityMismatch{
				Name: expr.Callee,
				Want: arity,
				Got:  len(expr.Args),
			}
		}

		args := make([]value.Value, len(expr.Args))
		for i, arg := range expr.Args {
			v, err := g.Expression(arg, b)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}

		return b.NewCall(fn, args...), nil
	}

	panic("unhandled")
}
