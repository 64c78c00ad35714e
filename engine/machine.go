package engine

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Address is a callable entry point into a finalized unit or the external
// runtime.
type Address func(args ...float64) (float64, error)

// ResolveFunc resolves a symbol across everything finalized so far plus the
// external resolver. Images use it for calls whose body lives elsewhere.
type ResolveFunc func(name string) (Address, error)

// Machine turns closed units into executable form. It is the seam where a
// native code generator would plug in.
type Machine interface {
	Optimize(m *ir.Module)
	Finalize(m *ir.Module, resolve ResolveFunc) (Image, error)
}

// Image is the executable form of one finalized unit.
type Image interface {
	AddressOf(name string) (Address, bool)
}

// Evaluator is the default Machine: it executes finalized units by walking
// their IR directly. Function bodies here are a single entry block ending in
// a ret, so evaluation is one linear pass with a value table.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Optimize folds arithmetic over constant operands. Callers treat this as an
// opaque transformation step.
func (e *Evaluator) Optimize(m *ir.Module) {
	for _, f := range m.Funcs {
		for _, b := range f.Blocks {
			folded := make(map[value.Value]value.Value)
			insts := b.Insts[:0]

			for _, inst := range b.Insts {
				switch in := inst.(type) {
				case *ir.InstFAdd:
					in.X, in.Y = subst(folded, in.X), subst(folded, in.Y)
					if x, y, ok := constOperands(in.X, in.Y); ok {
						folded[in] = constant.NewFloat(irtypes.Double, x+y)
						continue
					}
				case *ir.InstFSub:
					in.X, in.Y = subst(folded, in.X), subst(folded, in.Y)
					if x, y, ok := constOperands(in.X, in.Y); ok {
						folded[in] = constant.NewFloat(irtypes.Double, x-y)
						continue
					}
				case *ir.InstFMul:
					in.X, in.Y = subst(folded, in.X), subst(folded, in.Y)
					if x, y, ok := constOperands(in.X, in.Y); ok {
						folded[in] = constant.NewFloat(irtypes.Double, x*y)
						continue
					}
				case *ir.InstFCmp:
					in.X, in.Y = subst(folded, in.X), subst(folded, in.Y)
				case *ir.InstUIToFP:
					in.From = subst(folded, in.From)
				case *ir.InstCall:
					for i := range in.Args {
						in.Args[i] = subst(folded, in.Args[i])
					}
				}

				insts = append(insts, inst)
			}
			b.Insts = insts

			if ret, ok := b.Term.(*ir.TermRet); ok && ret.X != nil {
				ret.X = subst(folded, ret.X)
			}
		}
	}
}

func subst(folded map[value.Value]value.Value, v value.Value) value.Value {
	if r, ok := folded[v]; ok {
		return r
	}
	return v
}

func constOperands(x, y value.Value) (float64, float64, bool) {
	cx, ok := x.(*constant.Float)
	if !ok {
		return 0, 0, false
	}
	cy, ok := y.(*constant.Float)
	if !ok {
		return 0, 0, false
	}

	fx, _ := cx.X.Float64()
	fy, _ := cy.X.Float64()
	return fx, fy, true
}

func (e *Evaluator) Finalize(m *ir.Module, resolve ResolveFunc) (Image, error) {
	img := &image{
		funcs:   make(map[string]*ir.Func),
		resolve: resolve,
	}

	for _, f := range m.Funcs {
		if len(f.Blocks) > 0 {
			img.funcs[f.Name()] = f
		}
	}

	return img, nil
}

// image holds the functions of one finalized unit that actually carry a
// body. Declarations bridged in from other units resolve through the engine
// at call time.
type image struct {
	funcs   map[string]*ir.Func
	resolve ResolveFunc
}

func (i *image) AddressOf(name string) (Address, bool) {
	fn, ok := i.funcs[name]
	if !ok {
		return nil, false
	}

	return func(args ...float64) (float64, error) {
		return i.call(fn, args)
	}, true
}

func (i *image) call(fn *ir.Func, args []float64) (float64, error) {
	vals := make(map[value.Value]float64, len(fn.Params)+len(fn.Blocks[0].Insts))
	for idx, p := range fn.Params {
		if idx < len(args) {
			vals[p] = args[idx]
		}
	}

	b := fn.Blocks[0]
	for _, inst := range b.Insts {
		switch in := inst.(type) {
		case *ir.InstFAdd:
			x, y, err := i.operands(vals, in.X, in.Y)
			if err != nil {
				return 0, err
			}
			vals[in] = x + y
		case *ir.InstFSub:
			x, y, err := i.operands(vals, in.X, in.Y)
			if err != nil {
				return 0, err
			}
			vals[in] = x - y
		case *ir.InstFMul:
			x, y, err := i.operands(vals, in.X, in.Y)
			if err != nil {
				return 0, err
			}
			vals[in] = x * y
		case *ir.InstFCmp:
			if in.Pred != enum.FPredULT {
				return 0, fmt.Errorf("unsupported comparison predicate %v", in.Pred)
			}
			x, y, err := i.operands(vals, in.X, in.Y)
			if err != nil {
				return 0, err
			}
			if x < y {
				vals[in] = 1
			} else {
				vals[in] = 0
			}
		case *ir.InstUIToFP:
			v, err := i.operand(vals, in.From)
			if err != nil {
				return 0, err
			}
			vals[in] = v
		case *ir.InstCall:
			callee, ok := in.Callee.(*ir.Func)
			if !ok {
				return 0, fmt.Errorf("unsupported indirect call through %v", in.Callee)
			}

			cargs := make([]float64, len(in.Args))
			for idx, arg := range in.Args {
				v, err := i.operand(vals, arg)
				if err != nil {
					return 0, err
				}
				cargs[idx] = v
			}

			v, err := i.dispatch(callee, cargs)
			if err != nil {
				return 0, err
			}
			vals[in] = v
		default:
			return 0, fmt.Errorf("unsupported instruction %T", inst)
		}
	}

	ret, ok := b.Term.(*ir.TermRet)
	if !ok {
		return 0, fmt.Errorf("unsupported terminator %T", b.Term)
	}

	return i.operand(vals, ret.X)
}

// dispatch prefers a body in this image; a bare declaration resolves through
// the engine (older images first, external runtime last).
func (i *image) dispatch(callee *ir.Func, args []float64) (float64, error) {
	name := callee.Name()

	if target, ok := i.funcs[name]; ok {
		return i.call(target, args)
	}

	addr, err := i.resolve(name)
	if err != nil {
		return 0, err
	}
	return addr(args...)
}

func (i *image) operand(vals map[value.Value]float64, v value.Value) (float64, error) {
	if c, ok := v.(*constant.Float); ok {
		f, _ := c.X.Float64()
		return f, nil
	}

	if val, ok := vals[v]; ok {
		return val, nil
	}

	return 0, fmt.Errorf("unsupported operand %v", v)
}

func (i *image) operands(vals map[value.Value]float64, x, y value.Value) (float64, float64, error) {
	fx, err := i.operand(vals, x)
	if err != nil {
		return 0, 0, err
	}
	fy, err := i.operand(vals, y)
	if err != nil {
		return 0, 0, err
	}
	return fx, fy, nil
}
