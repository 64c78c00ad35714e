package main

import (
	"bytes"
	"strings"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pontaoski/kaleigo/engine"
)

func Test(t *testing.T) { TestingT(t) }

type SessionSuite struct{}

var _ = Suite(&SessionSuite{})

// feed runs src through a fresh session and returns everything it printed,
// runtime output included.
func feed(c *C, src string) string {
	var out bytes.Buffer
	eng := engine.New(engine.NewEvaluator(), engine.NewRuntime(&out))
	s := NewSession(eng, &out, false)

	err := s.Feed(strings.NewReader(src), "test", "")
	c.Assert(err, IsNil)

	return out.String()
}

func (s *SessionSuite) TestDefineAndEvaluate(c *C) {
	out := feed(c, "def testfunc(x) x*x\ntestfunc(4)")

	c.Check(strings.Contains(out, "Defined testfunc"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "Evaluated to 16.000000"), Equals, true, Commentf("output: %q", out))
}

func (s *SessionSuite) TestCallFromLaterUnit(c *C) {
	// the second call lives in a new unit; the first run closed the one
	// holding the body
	out := feed(c, "def testfunc(x) x*x\ntestfunc(4)\ntestfunc(5)")

	c.Check(strings.Contains(out, "Evaluated to 16.000000"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "Evaluated to 25.000000"), Equals, true, Commentf("output: %q", out))
}

func (s *SessionSuite) TestExternPutchard(c *C) {
	out := feed(c, "extern putchard(ch)\nputchard(72)\nputchard(105)")

	c.Check(strings.Contains(out, "Declared putchard"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "H"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "i"), Equals, true, Commentf("output: %q", out))
}

func (s *SessionSuite) TestComparisonEvaluates(c *C) {
	out := feed(c, "1 < 2\n2 < 1")

	c.Check(strings.Contains(out, "Evaluated to 1.000000"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "Evaluated to 0.000000"), Equals, true, Commentf("output: %q", out))
}

func (s *SessionSuite) TestParseErrorRecovery(c *C) {
	out := feed(c, "def )\n1+2")

	c.Check(strings.Contains(out, "error:"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "Evaluated to 3.000000"), Equals, true, Commentf("output: %q", out))
}

func (s *SessionSuite) TestLoweringErrorRecovery(c *C) {
	out := feed(c, "def foo(x) y\n42")

	c.Check(strings.Contains(out, "unknown variable"), Equals, true, Commentf("output: %q", out))
	c.Check(strings.Contains(out, "Evaluated to 42.000000"), Equals, true, Commentf("output: %q", out))
}

func (s *SessionSuite) TestUnresolvableSymbolStopsSession(c *C) {
	var out bytes.Buffer
	eng := engine.New(engine.NewEvaluator(), engine.NewRuntime(&out))
	sess := NewSession(eng, &out, false)

	err := sess.Feed(strings.NewReader("extern nosuch()\nnosuch()"), "test", "")
	c.Check(err, Not(IsNil))
}

func (s *SessionSuite) TestConfigDefaults(c *C) {
	cfg := parseSessionConfig(nil)
	c.Check(cfg.Prompt, Equals, "ready> ")
	c.Check(cfg.DumpIR, Equals, false)
	c.Check(cfg.Preload, HasLen, 0)
}

func (s *SessionSuite) TestConfigParse(c *C) {
	cfg := parseSessionConfig([]byte("Prompt: \"k> \"\nDumpIR: true\nPreload:\n  - lib.k\n"))
	c.Check(cfg.Prompt, Equals, "k> ")
	c.Check(cfg.DumpIR, Equals, true)
	c.Check(cfg.Preload, DeepEquals, []string{"lib.k"})
}
