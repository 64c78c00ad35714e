package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/repr"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/kaleigo/ast"
	"github.com/pontaoski/kaleigo/codegen"
	"github.com/pontaoski/kaleigo/engine"
	"github.com/pontaoski/kaleigo/lexer"
	"github.com/pontaoski/kaleigo/parser"
)

// Session drives one compilation session: one top-level construct at a time,
// lex → parse → lower → run when it was a bare expression.
type Session struct {
	gen     *codegen.Generator
	eng     *engine.Engine
	out     io.Writer
	dumpAST bool
}

func NewSession(eng *engine.Engine, out io.Writer, dumpAST bool) *Session {
	return &Session{
		gen:     codegen.NewGenerator(eng),
		eng:     eng,
		out:     out,
		dumpAST: dumpAST,
	}
}

// Feed consumes source until end of input. prompt, when non-empty, is
// printed before each construct. Parse and lowering failures are reported
// and the construct discarded; only an unresolvable symbol ends the session
// early, since code calling through a missing address must never run.
func (s *Session) Feed(in io.Reader, filename, prompt string) error {
	p := parser.NewParser(lexer.NewLexer(in, filename))

	for {
		if prompt != "" {
			fmt.Fprint(s.out, prompt)
		}

		top, err := p.TopLevel()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			s.report(err)
			p.Advance()
			continue
		}

		if s.dumpAST {
			repr.Println(top)
		}

		if err := s.handle(top); err != nil {
			return err
		}
	}
}

func (s *Session) handle(top ast.TopLevel) error {
	switch t := top.(type) {
	case ast.Prototype:
		fn, err := s.gen.Prototype(t)
		if err != nil {
			s.report(err)
			return nil
		}
		fmt.Fprintf(s.out, "Declared %s\n", fn.Name())
	case ast.Function:
		fn, err := s.gen.Function(t)
		if err != nil {
			s.report(err)
			return nil
		}

		if !t.Proto.IsAnon() {
			fmt.Fprintf(s.out, "Defined %s\n", fn.Name())
			return nil
		}

		val, err := s.eng.Run(fn.Name())
		if err != nil {
			return tracerr.Wrap(err)
		}
		fmt.Fprintf(s.out, "Evaluated to %f\n", val)
	}

	return nil
}

func (s *Session) report(err error) {
	fmt.Fprintf(s.out, "error: %v\n", err)
}
