package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"

	"github.com/hdc-lang/hdc/pkg/cli"
	"github.com/hdc-lang/hdc/pkg/codegen"
	"github.com/hdc-lang/hdc/pkg/config"
	"github.com/hdc-lang/hdc/pkg/lexer"
	"github.com/hdc-lang/hdc/pkg/parser"
	"github.com/hdc-lang/hdc/pkg/token"
	"github.com/hdc-lang/hdc/pkg/util"
)

func main() {
	var (
		outputPath  string
		target      string
		dumpIR      bool
		verbose     bool
		fingerprint bool
	)

	app := cli.NewApp("hdc")
	app.Synopsis = "[options] <input.hd>"
	app.Description = "Compiles a single .hd source file to native assembly through the embedded QBE backend."
	app.FlagSet.String(&outputPath, "output", "o", "", "Write the assembly to this path.", "file")
	app.FlagSet.String(&target, "target", "t", "", "QBE target to compile for. Defaults to the host target.", "target")
	app.FlagSet.Bool(&dumpIR, "dump-ir", "d", false, "Print the generated SSA to stdout.")
	app.FlagSet.Bool(&verbose, "verbose", "v", false, "Log each compilation stage.")
	app.FlagSet.Bool(&fingerprint, "fingerprint", "", false, "Print the xxhash of the produced assembly.")

	app.Action = func(args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one input file, got %d", len(args))
		}
		return compile(args[0], outputPath, target, dumpIR, verbose, fingerprint)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func compile(inputPath, outputPath, target string, dumpIR, verbose, fingerprint bool) error {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
	log := commonlog.GetLogger("hdc")

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hdc: %v\n", err)
		return err
	}
	util.SetSourceFile(inputPath, string(src))

	cfg := config.NewConfig()
	cfg.SetTarget(runtime.GOOS, runtime.GOARCH, target)
	cfg.DumpIR = dumpIR
	cfg.Verbose = verbose
	log.Infof("target %s (word size %d)", cfg.QbeTarget, cfg.WordSize)

	log.Info("tokenizing")
	toks, err := lexer.New(string(src)).Scan()
	if err != nil {
		reportError(err)
		return err
	}

	log.Infof("parsing %d tokens", len(toks))
	program, err := parser.New().ParseTokens(toks)
	if err != nil {
		reportError(err)
		return err
	}

	log.Info("lowering")
	mod, err := codegen.New(cfg).Generate(program)
	if err != nil {
		reportError(err)
		return err
	}

	if cfg.DumpIR {
		fmt.Print(codegen.EmitText(mod))
		return nil
	}

	log.Infof("emitting native assembly for %d functions", len(mod.Funcs))
	asm, err := codegen.EmitNative(cfg, mod)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hdc: %v\n", err)
		return err
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".hdco"
	}
	if err := os.WriteFile(outputPath, asm, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "hdc: %v\n", err)
		return err
	}

	fmt.Printf("%s: wrote %d bytes\n", outputPath, len(asm))
	if fingerprint {
		fmt.Printf("fingerprint: %016x\n", xxhash.Sum64(asm))
	}
	return nil
}

// reportError renders a stage error with its source position when one is
// available.
func reportError(err error) {
	var tokErr *lexer.TokenizationError
	if errors.As(err, &tokErr) {
		util.Report(token.Token{Line: tokErr.Line, Column: tokErr.Column, Len: 1}, "%v", tokErr)
		return
	}

	var parseErr *parser.ParsingError
	if errors.As(err, &parseErr) {
		util.Report(parseErr.Tok, "%v", parseErr)
		if bt := parseErr.BacktraceString(); bt != "" {
			fmt.Fprintln(os.Stderr, bt)
		}
		return
	}

	var compErr *codegen.CompilationError
	if errors.As(err, &compErr) {
		util.Report(compErr.Tok, "%v", compErr)
		return
	}

	fmt.Fprintf(os.Stderr, "hdc: %v\n", err)
}
