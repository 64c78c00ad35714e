package codegen

import (
	"io/ioutil"
	"testing"

	"github.com/llir/llvm/ir"
	. "gopkg.in/check.v1"

	"github.com/pontaoski/kaleigo/ast"
	"github.com/pontaoski/kaleigo/engine"
	"github.com/pontaoski/kaleigo/errors"
)

func Test(t *testing.T) { TestingT(t) }

type GenSuite struct{}

var _ = Suite(&GenSuite{})

func newGen() (*Generator, *engine.Engine) {
	eng := engine.New(engine.NewEvaluator(), engine.NewRuntime(ioutil.Discard))
	return NewGenerator(eng), eng
}

func def(name string, params []string, body ast.Expr) ast.Function {
	return ast.Function{
		Proto: ast.Prototype{Name: name, Params: params},
		Body:  body,
	}
}

func (s *GenSuite) TestMangle(c *C) {
	c.Check(Mangle("foo"), Equals, "foo")
	c.Check(Mangle("foo_bar9"), Equals, "foo_bar9")
	c.Check(Mangle("9lives"), Equals, "k9lives")
	c.Check(Mangle("a-b"), Equals, "a45b")
	c.Check(Mangle("röd"), Equals, "r246d")
}

func (s *GenSuite) TestNumberBody(c *C) {
	g, _ := newGen()

	fn, err := g.Function(def("one", nil, ast.Number(1)))
	c.Assert(err, IsNil)
	c.Check(fn.Name(), Equals, "one")
	c.Assert(fn.Blocks, HasLen, 1)
}

func (s *GenSuite) TestAnonGetsUniqueName(c *C) {
	g, _ := newGen()

	a, err := g.Function(ast.Function{Proto: ast.Prototype{}, Body: ast.Number(1)})
	c.Assert(err, IsNil)
	b, err := g.Function(ast.Function{Proto: ast.Prototype{}, Body: ast.Number(2)})
	c.Assert(err, IsNil)

	c.Check(a.Name(), Not(Equals), b.Name())
	c.Check(a.Name(), Not(Equals), "")
}

func (s *GenSuite) TestUnknownVariable(c *C) {
	g, eng := newGen()

	_, err := g.Function(def("foo", []string{"x"}, ast.Variable{Name: "y"}))
	c.Assert(err, DeepEquals, errors.UnknownVariable{Name: "y"})

	// the failed definition must leave nothing behind
	_, _, found := eng.Lookup("foo")
	c.Check(found, Equals, false)
}

func (s *GenSuite) TestUnknownFunction(c *C) {
	g, _ := newGen()

	_, err := g.Function(def("caller", nil, ast.Call{Callee: "missing"}))
	c.Check(err, DeepEquals, errors.UnknownFunction{Name: "missing"})
}

func (s *GenSuite) TestArityMismatch(c *C) {
	g, eng := newGen()

	_, err := g.Function(def("twice", []string{"x"}, ast.Variable{Name: "x"}))
	c.Assert(err, IsNil)

	_, err = g.Function(def("caller", nil, ast.Call{
		Callee: "twice",
		Args:   []ast.Expr{ast.Number(1), ast.Number(2)},
	}))
	c.Check(err, DeepEquals, errors.ArityMismatch{Name: "twice", Want: 1, Got: 2})

	// the callee's entry is untouched
	_, arity, found := eng.Lookup("twice")
	c.Check(found, Equals, true)
	c.Check(arity, Equals, 1)
}

func (s *GenSuite) TestRedeclareIsIdempotent(c *C) {
	g, _ := newGen()

	proto := ast.Prototype{Name: "sin", Params: []string{"x"}}
	a, err := g.Prototype(proto)
	c.Assert(err, IsNil)
	b, err := g.Prototype(proto)
	c.Assert(err, IsNil)

	c.Check(a, Equals, b)
}

func (s *GenSuite) TestRedeclareArityConflict(c *C) {
	g, _ := newGen()

	_, err := g.Prototype(ast.Prototype{Name: "sin", Params: []string{"x"}})
	c.Assert(err, IsNil)

	_, err = g.Prototype(ast.Prototype{Name: "sin", Params: []string{"x", "y"}})
	c.Check(err, DeepEquals, errors.RedeclarationArity{Name: "sin", Want: 1, Got: 2})
}

func (s *GenSuite) TestRedefinition(c *C) {
	g, _ := newGen()

	_, err := g.Function(def("foo", nil, ast.Number(1)))
	c.Assert(err, IsNil)

	_, err = g.Function(def("foo", nil, ast.Number(2)))
	c.Check(err, DeepEquals, errors.Redefinition{Name: "foo"})
}

func (s *GenSuite) TestDefineAfterExtern(c *C) {
	g, _ := newGen()

	_, err := g.Prototype(ast.Prototype{Name: "foo", Params: []string{"x"}})
	c.Assert(err, IsNil)

	fn, err := g.Function(def("foo", []string{"x"}, ast.Variable{Name: "x"}))
	c.Assert(err, IsNil)
	c.Check(fn.Blocks, HasLen, 1)
}

func (s *GenSuite) TestFailedBodyKeepsExistingDeclaration(c *C) {
	g, eng := newGen()

	_, err := g.Prototype(ast.Prototype{Name: "foo", Params: []string{"x"}})
	c.Assert(err, IsNil)

	fn, err := g.Function(def("foo", []string{"x"}, ast.Variable{Name: "y"}))
	c.Assert(err, DeepEquals, errors.UnknownVariable{Name: "y"})
	c.Assert(fn, IsNil)

	// the forward declaration survives, body-less
	decl, arity, found := eng.Lookup("foo")
	c.Assert(found, Equals, true)
	c.Check(arity, Equals, 1)
	c.Check(decl.Blocks, HasLen, 0)
}

func (s *GenSuite) TestInvalidOperator(c *C) {
	g, _ := newGen()

	_, err := g.Function(def("foo", nil, ast.Binary{
		Op:  '/',
		LHS: ast.Number(1),
		RHS: ast.Number(2),
	}))
	c.Check(err, DeepEquals, errors.InvalidOperator{Op: '/'})
}

func (s *GenSuite) TestComparisonLowersToFCmp(c *C) {
	g, _ := newGen()

	fn, err := g.Function(def("lt", []string{"x", "y"}, ast.Binary{
		Op:  '<',
		LHS: ast.Variable{Name: "x"},
		RHS: ast.Variable{Name: "y"},
	}))
	c.Assert(err, IsNil)
	c.Assert(fn.Blocks, HasLen, 1)

	var kinds []string
	for _, inst := range fn.Blocks[0].Insts {
		switch inst.(type) {
		case *ir.InstFCmp:
			kinds = append(kinds, "fcmp")
		case *ir.InstUIToFP:
			kinds = append(kinds, "uitofp")
		}
	}
	c.Check(kinds, DeepEquals, []string{"fcmp", "uitofp"})
}
