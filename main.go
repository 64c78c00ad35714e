package main

import (
	"fmt"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/kaleigo/engine"
)

func newEngine(dumpIR bool) *engine.Engine {
	eng := engine.New(engine.NewEvaluator(), engine.NewRuntime(os.Stdout))
	if dumpIR {
		eng.FinalizeHook = func(m *ir.Module) {
			fmt.Print(m.String())
		}
	}
	return eng
}

func feedFiles(s *Session, names []string) error {
	for _, name := range names {
		fi, err := os.Open(name)
		if err != nil {
			return err
		}

		err = s.Feed(fi, name, "")
		fi.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "kaleigo",
		Usage: "incremental compiler for a small expression language",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ast",
				Usage: "dump each parsed construct",
			},
			&cli.BoolFlag{
				Name:  "dump-ir",
				Usage: "print each unit's IR when it finalizes",
			},
		},
		ExitErrHandler: func(context *cli.Context, err error) {
			if err == nil {
				return
			}
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		},
		Action: func(c *cli.Context) error {
			cfg := loadSessionConfig()
			s := NewSession(newEngine(c.Bool("dump-ir") || cfg.DumpIR), os.Stdout, c.Bool("ast"))

			if err := feedFiles(s, cfg.Preload); err != nil {
				return err
			}

			return s.Feed(os.Stdin, "stdin", cfg.Prompt)
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "compile and run files",
				Action: func(c *cli.Context) error {
					if c.Args().Len() == 0 {
						return cli.Exit("no files given", 1)
					}

					cfg := loadSessionConfig()
					s := NewSession(newEngine(c.Bool("dump-ir") || cfg.DumpIR), os.Stdout, c.Bool("ast"))

					return feedFiles(s, c.Args().Slice())
				},
			},
		},
	}
	app.Run(os.Args)
}
