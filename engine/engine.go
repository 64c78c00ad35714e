package engine

import (
	"fmt"

	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/pontaoski/kaleigo/errors"
)

// Unit is one compilation unit: an append-only collection of function
// declarations and definitions that finalize together. While open it accepts
// new functions; once finalized it is immutable.
type Unit struct {
	Module *ir.Module
	funcs  map[string]*ir.Func
	open   bool
	image  Image
}

func (u *Unit) declare(name string, params []string) *ir.Func {
	ps := make([]*ir.Param, len(params))
	for i, p := range params {
		ps[i] = ir.NewParam(p, irtypes.Double)
	}

	fn := u.Module.NewFunc(name, irtypes.Double, ps...)
	u.funcs[name] = fn
	return fn
}

// funcInfo tracks one logical function. The same function may appear in
// several units (a body in one, forward declarations in later ones); units
// only ever hold their own handles, so owner is the single source of truth
// for where the body lives.
type funcInfo struct {
	owner   int
	params  []string
	hasBody bool
}

type Engine struct {
	units    []*Unit
	open     int // index into units, -1 when no unit is open
	registry map[string]*funcInfo
	machine  Machine
	resolver Resolver
	anon     int

	// FinalizeHook, when set, observes every unit right before it is
	// finalized.
	FinalizeHook func(*ir.Module)
}

func New(machine Machine, resolver Resolver) *Engine {
	return &Engine{
		open:     -1,
		registry: make(map[string]*funcInfo),
		machine:  machine,
		resolver: resolver,
	}
}

// OpenUnit returns the unit currently accepting definitions, creating a
// fresh one if none is open. At most one unit is open at any time.
func (e *Engine) OpenUnit() *Unit {
	if e.open >= 0 {
		return e.units[e.open]
	}

	u := &Unit{
		Module: ir.NewModule(),
		funcs:  make(map[string]*ir.Func),
		open:   true,
	}
	e.units = append(e.units, u)
	e.open = len(e.units) - 1

	return u
}

// AnonName hands out a unique symbol name for a synthesized top-level
// expression.
func (e *Engine) AnonName() string {
	e.anon++
	return fmt.Sprintf("__anon_expr%d", e.anon)
}

// Declare registers name with the given parameters and returns a function
// handle usable from the open unit. Redeclaring an identical signature is
// idempotent; declaring over an existing body or with a different arity
// fails. The second result reports whether this call created the logical
// function.
func (e *Engine) Declare(name string, params []string) (*ir.Func, bool, error) {
	info, ok := e.registry[name]
	if ok {
		if info.hasBody {
			return nil, false, errors.Redefinition{Name: name}
		}
		if len(info.params) != len(params) {
			return nil, false, errors.RedeclarationArity{
				Name: name,
				Want: len(info.params),
				Got:  len(params),
			}
		}

		return e.bridge(name, info), false, nil
	}

	u := e.OpenUnit()
	fn := u.declare(name, params)
	e.registry[name] = &funcInfo{
		owner:  e.open,
		params: params,
	}

	return fn, true, nil
}

// Lookup resolves name for a call site in the open unit. A function whose
// body lives in a closed unit is bridged in as a body-less declaration so
// the open unit can reference it without re-lowering anything.
func (e *Engine) Lookup(name string) (*ir.Func, int, bool) {
	info, ok := e.registry[name]
	if !ok {
		return nil, 0, false
	}

	return e.bridge(name, info), len(info.params), true
}

func (e *Engine) bridge(name string, info *funcInfo) *ir.Func {
	u := e.OpenUnit()
	if fn, ok := u.funcs[name]; ok {
		return fn
	}

	return u.declare(name, info.params)
}

// MarkDefined records that name's body has been emitted into the open unit.
func (e *Engine) MarkDefined(name string) {
	info := e.registry[name]
	info.owner = e.open
	info.hasBody = true
}

// Retract undoes a Declare whose body failed to lower: a declaration created
// by that Declare is removed outright, while a pre-existing forward
// declaration merely has its half-built body stripped. Either way the open
// unit is left without a bodyless stump that later units could trip over.
func (e *Engine) Retract(name string, fn *ir.Func, created bool) {
	fn.Blocks = nil

	if !created {
		return
	}

	delete(e.registry, name)

	u := e.OpenUnit()
	delete(u.funcs, name)
	for i, f := range u.Module.Funcs {
		if f == fn {
			u.Module.Funcs = append(u.Module.Funcs[:i], u.Module.Funcs[i+1:]...)
			break
		}
	}
}

// Run obtains a callable address for name and invokes it with no arguments.
// If the owning unit is still open it is closed and finalized first; closing
// is irreversible and each unit finalizes at most once. A function that
// lowered successfully but whose address cannot be produced anywhere is a
// fatal condition, reported as errors.UnresolvableSymbol.
func (e *Engine) Run(name string) (float64, error) {
	info, ok := e.registry[name]
	if !ok {
		return 0, errors.UnresolvableSymbol{Name: name}
	}

	u := e.units[info.owner]
	if u.image == nil {
		if err := e.finalize(info.owner); err != nil {
			return 0, err
		}
	}

	addr, err := e.addressOf(name)
	if err != nil {
		return 0, err
	}

	return addr()
}

func (e *Engine) finalize(idx int) error {
	u := e.units[idx]
	u.open = false
	if e.open == idx {
		e.open = -1
	}

	e.machine.Optimize(u.Module)
	if e.FinalizeHook != nil {
		e.FinalizeHook(u.Module)
	}

	img, err := e.machine.Finalize(u.Module, e.addressOf)
	if err != nil {
		return err
	}
	u.image = img

	return nil
}

// addressOf scans finalized units oldest to newest, then falls back to the
// external resolver.
func (e *Engine) addressOf(name string) (Address, error) {
	for _, u := range e.units {
		if u.image == nil {
			continue
		}
		if addr, ok := u.image.AddressOf(name); ok {
			return addr, nil
		}
	}

	if addr, ok := e.resolver.Resolve(name); ok {
		return addr, nil
	}

	return nil, errors.UnresolvableSymbol{Name: name}
}
