package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sanity-io/litter"

	"github.com/nrzimmer/aoc-lang/internal/ast"
	"github.com/nrzimmer/aoc-lang/internal/codegen"
	"github.com/nrzimmer/aoc-lang/internal/compiler"
	"github.com/nrzimmer/aoc-lang/internal/lexer"
	"github.com/nrzimmer/aoc-lang/internal/parsetree"
)

const VERSION = "0.1.0"

var debugMode = false

func main() {
	start := time.Now()
	exitCode := run(os.Args[1:])
	if exitCode == 0 {
		fmt.Printf("Compile time: %s\n", time.Since(start))
	}
	os.Exit(exitCode)
}

// config is the result of scanning the command line.
type config struct {
	file string
	opts *codegen.Options
}

func run(args []string) int {
	// Check for --debug flag early.
	for _, arg := range args {
		if arg == "--debug" {
			debugMode = true
			break
		}
	}

	fmt.Println("aoc compiler v" + VERSION)
	printDebug("Using debug mode.")

	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		fmt.Println("Usage: aoc [--debug] [--asm-only] [--skip-link] [--no-runtime] [--target=os/arch] [--out=dir] [--cc=path] <file>")
		return 1
	}
	printDebug("Building using: " + cfg.file)

	content, err := os.ReadFile(cfg.file)
	if err != nil {
		fmt.Println("Error: Could not read file.")
		fmt.Println("Error details: " + err.Error())
		return 1
	}

	printDebug("Running front end...")
	res, err := compiler.Front(string(content))
	printTokens(res.Tokens)
	if res.Tree != nil {
		printDebug("--- Parse tree ---")
		printDebug(parsetree.DebugString(res.Tree))
	}
	if err != nil {
		fmt.Println(compiler.Describe(err))
		return 1
	}
	for _, name := range res.Removed {
		printDebug("Removed empty function: " + name)
	}
	printDebug("--- Program ---")
	printDebug(ast.DebugString(res.Program))
	if debugMode {
		litter.Dump(res.Program.Scopes)
	}

	printDebug("Starting code generation...")
	result, err := codegen.Build(res.Program, cfg.opts)
	if err != nil {
		fmt.Println(compiler.Describe(err))
		return 1
	}

	fmt.Println("Build artifacts:")
	if result.AsmFile != "" {
		fmt.Printf("  Assembly: %s\n", result.AsmFile)
	}
	if result.ObjFile != "" {
		fmt.Printf("  Object:   %s\n", result.ObjFile)
	}
	if result.ExeFile != "" {
		fmt.Printf("  Binary:   %s\n", result.ExeFile)
	}

	printDebug("Compilation pipeline finished successfully.")
	return 0
}

// parseArgs scans flags and the source path (first non-flag argument).
func parseArgs(args []string) (*config, error) {
	cfg := &config{opts: codegen.DefaultOptions()}
	cfg.opts.Verbose = debugMode

	for _, arg := range args {
		switch {
		case arg == "--debug":
		case arg == "--asm-only":
			cfg.opts.AsmOnly = true
		case arg == "--skip-link":
			cfg.opts.SkipLink = true
		case arg == "--no-runtime":
			cfg.opts.NoRuntime = true
		case strings.HasPrefix(arg, "--target="):
			parts := strings.SplitN(strings.TrimPrefix(arg, "--target="), "/", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid target format %q (expected os/arch, e.g. linux/amd64)", arg[len("--target="):])
			}
			target, err := codegen.ResolveTarget(parts[0], parts[1])
			if err != nil {
				return nil, err
			}
			cfg.opts.Target = target
		case strings.HasPrefix(arg, "--out="):
			cfg.opts.BuildDir = strings.TrimPrefix(arg, "--out=")
		case strings.HasPrefix(arg, "--cc="):
			cfg.opts.CC = strings.TrimPrefix(arg, "--cc=")
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag %s", arg)
		case cfg.file == "":
			cfg.file = arg
		}
	}

	if cfg.file == "" {
		return nil, fmt.Errorf("no source file given")
	}
	cfg.opts.OutputName = strings.TrimSuffix(filepath.Base(cfg.file), filepath.Ext(cfg.file))
	return cfg, nil
}

// printDebug prints a message when --debug is set.
func printDebug(message string) {
	if !debugMode {
		return
	}
	fmt.Println("[DEBUG] " + message)
}

func printTokens(tokens []lexer.Token) {
	if !debugMode {
		return
	}
	for _, token := range tokens {
		fmt.Printf("[DEBUG] Token: %s, Value: %s, Line: %d, Column: %d\n", token.Type, token.Value, token.Line, token.Column)
	}
}
