package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ha1tch/sxc/pkg/compiler"
	"github.com/ha1tch/sxc/pkg/lexer"
	"github.com/ha1tch/sxc/pkg/version"
)

func main() {
	app := cli.NewApp()
	app.Name = "sxc"
	app.Usage = "compiles a typed s-expression source file to TI-84 Plus BASIC"
	app.Version = version.Version
	app.UsageText = "sxc compile IN [OUT] [-d|-D]\n   sxc tokens IN\n   sxc ast IN"

	app.Commands = []cli.Command{
		{
			Name:      "compile",
			Aliases:   []string{"c"},
			Usage:     "compile a source file to TI-84 Plus BASIC",
			ArgsUsage: "IN [OUT]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "d", Usage: "dump the IR (go-spew) before writing the output"},
				cli.BoolFlag{Name: "D", Usage: "dump the IR (go-spew) and stop, without writing the output"},
			},
			Action: runCompile,
		},
		{
			Name:      "tokens",
			Aliases:   []string{"t"},
			Usage:     "show lexer tokens for a source file",
			ArgsUsage: "IN",
			Action:    runTokens,
		},
		{
			Name:      "ast",
			Aliases:   []string{"a"},
			Usage:     "show the parsed and checked IR for a source file",
			ArgsUsage: "IN",
			Action:    runAST,
		},
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "show version",
			Action: func(c *cli.Context) error {
				fmt.Printf("sxc version %s\n", version.Version)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runCompile(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("error: no input file specified", 1)
	}
	in := c.Args().Get(0)
	out := c.Args().Get(1)
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".8xp.txt"
	}

	source, err := readFile(in)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading %s: %v", in, err), 1)
	}

	log := newLogger()
	defer log.Sync()

	program, m, err := compiler.Compile(source, compiler.Options{Log: log})
	if dump := c.Bool("d") || c.Bool("D"); dump {
		dumpManager(m)
	}
	if err != nil {
		if diag, ok := err.(*compiler.Diag); ok {
			fmt.Fprintln(os.Stderr, diag.Readout(source))
			return cli.NewExitError("", 1)
		}
		return cli.NewExitError(fmt.Sprintf("compiling %s: %v", in, err), 1)
	}
	if c.Bool("D") {
		return nil
	}

	if err := os.WriteFile(out, []byte(program), 0644); err != nil {
		return cli.NewExitError(fmt.Sprintf("writing %s: %v", out, err), 1)
	}
	fmt.Fprintf(os.Stderr, "compiled %s -> %s\n", in, out)
	return nil
}

func runTokens(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("error: no input file specified", 1)
	}
	in := c.Args().Get(0)
	source, err := readFile(in)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading %s: %v", in, err), 1)
	}

	for _, tok := range lexer.Tokenize(source) {
		fmt.Printf("%4d:%-4d %q\n", tok.Begin, tok.Len, tok.Text(source))
	}
	return nil
}

func runAST(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("error: no input file specified", 1)
	}
	in := c.Args().Get(0)
	source, err := readFile(in)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading %s: %v", in, err), 1)
	}

	_, m, err := compiler.Compile(source, compiler.Options{})
	dumpManager(m)
	if err != nil {
		if diag, ok := err.(*compiler.Diag); ok {
			fmt.Fprintln(os.Stderr, diag.Readout(source))
			return cli.NewExitError("", 1)
		}
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}
