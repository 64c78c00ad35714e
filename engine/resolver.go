package engine

import (
	"fmt"
	"io"
)

// Resolver is the fallback for symbols no finalized unit provides: functions
// the runtime supplies to the language.
type Resolver interface {
	Resolve(name string) (Address, bool)
}

// Runtime carries the standard runtime functions. putchard prints a single
// character, printd prints a value followed by a newline; both return 0.
type Runtime struct {
	out   io.Writer
	table map[string]Address
}

func NewRuntime(out io.Writer) *Runtime {
	r := &Runtime{
		out:   out,
		table: make(map[string]Address),
	}

	r.Register("putchard", func(args ...float64) (float64, error) {
		var ch rune
		if len(args) > 0 {
			ch = rune(args[0])
		}
		fmt.Fprintf(r.out, "%c", ch)
		return 0, nil
	})
	r.Register("printd", func(args ...float64) (float64, error) {
		var v float64
		if len(args) > 0 {
			v = args[0]
		}
		fmt.Fprintf(r.out, "%f\n", v)
		return 0, nil
	})

	return r
}

// Register makes fn resolvable under name. Later registrations win.
func (r *Runtime) Register(name string, fn Address) {
	r.table[name] = fn
}

func (r *Runtime) Resolve(name string) (Address, bool) {
	fn, ok := r.table[name]
	return fn, ok
}
