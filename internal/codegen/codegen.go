package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nrzimmer/aoc-lang/internal/ast"
)

// ---------------------------------------------------------------------------
// Options controls the behaviour of the code-generation pipeline.
// ---------------------------------------------------------------------------

// Options configures the codegen pipeline.
type Options struct {
	// Target platform. If nil, the host platform is auto-detected.
	Target *Target

	// BuildDir is the directory where all build artifacts are written.
	// Defaults to "./build" relative to the working directory.
	BuildDir string

	// OutputName is the base name for the output files (without extension).
	// Defaults to "output".
	OutputName string

	// CC is the C compiler driver used to assemble and link.
	CC string

	// Verbose enables extra diagnostic output.
	Verbose bool

	// AsmOnly stops after emitting the assembly file (skip assemble + link).
	AsmOnly bool

	// SkipLink stops after assembling (produce .o but don't link).
	SkipLink bool

	// NoRuntime links without the embedded C runtime.
	NoRuntime bool
}

// DefaultOptions returns sensible defaults (host target, build/ directory).
func DefaultOptions() *Options {
	return &Options{
		BuildDir: "build",
		CC:       "cc",
	}
}

// ---------------------------------------------------------------------------
// Result is returned by Build with paths to all produced artifacts.
// ---------------------------------------------------------------------------

type Result struct {
	Assembly string // emitted assembly text
	AsmFile  string // path to the assembly file
	ObjFile  string // path to the object file (empty if AsmOnly)
	ExeFile  string // path to the executable (empty if AsmOnly or SkipLink)
}

// ---------------------------------------------------------------------------
// Build: the public entry point for the full codegen pipeline
//
// Pipeline: Program → Assembly text (emit) → Object (assemble) → Executable (link)
// ---------------------------------------------------------------------------

// Build emits the program and drives the external toolchain. Emission
// errors are returned unwrapped so callers can classify them with diag.
func Build(program *ast.Program, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// --- Resolve target ---
	target := opts.Target
	if target == nil {
		var err error
		target, err = HostTarget()
		if err != nil {
			return nil, fmt.Errorf("cannot detect host target: %w", err)
		}
	}

	// --- Emit assembly ---
	if opts.Verbose {
		fmt.Printf("[codegen] Emitting %s assembly for %s (%s)...\n", target.Arch, target, target.ObjFmt)
	}
	asmText, err := EmitX86_64(program, target)
	if err != nil {
		return nil, err
	}
	result := &Result{Assembly: asmText}

	// --- Determine output name ---
	outputName := opts.OutputName
	if outputName == "" {
		outputName = "output"
	}
	// Sanitize: replace dots/spaces with underscores.
	outputName = strings.Map(func(r rune) rune {
		if r == '.' || r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, outputName)

	// --- Create build directory ---
	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = "build"
	}
	platformDir := filepath.Join(buildDir, fmt.Sprintf("%s_%s", target.OS, target.ArchName()))
	if err := os.MkdirAll(platformDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create build directory %s: %w", platformDir, err)
	}

	// --- Write assembly file ---
	tc := NewToolchain(target, platformDir, outputName)
	tc.Verbose = opts.Verbose
	if opts.CC != "" {
		tc.CC = opts.CC
	}

	if err := tc.WriteAssembly(asmText); err != nil {
		return nil, fmt.Errorf("cannot write assembly file: %w", err)
	}
	result.AsmFile = tc.AsmFile

	if opts.Verbose {
		fmt.Printf("[codegen] Assembly written to %s\n", result.AsmFile)
	}

	if opts.AsmOnly {
		return result, nil
	}

	// --- Assemble ---
	if missing := DetectToolchain(tc.CC); len(missing) > 0 {
		fmt.Printf("[codegen] Warning: missing toolchain components: %s\n", strings.Join(missing, ", "))
		fmt.Printf("[codegen] Assembly file was written to %s; you can assemble and link manually.\n", result.AsmFile)
		return result, nil
	}

	if opts.Verbose {
		fmt.Println("[codegen] Assembling...")
	}
	if err := tc.Assemble(); err != nil {
		return result, fmt.Errorf("assembly failed: %w", err)
	}
	result.ObjFile = tc.ObjFile

	if opts.SkipLink {
		return result, nil
	}

	// --- Link ---
	if !opts.NoRuntime {
		if err := tc.WriteRuntime(); err != nil {
			return result, fmt.Errorf("cannot write runtime: %w", err)
		}
	}
	if opts.Verbose {
		fmt.Println("[codegen] Linking...")
	}
	if err := tc.Link(); err != nil {
		return result, fmt.Errorf("linking failed: %w", err)
	}
	result.ExeFile = tc.ExeFile

	if opts.Verbose {
		fmt.Printf("[codegen] Executable written to %s\n", result.ExeFile)
	}

	return result, nil
}
