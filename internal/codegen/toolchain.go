package codegen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Toolchain: assembler + linker invocation through the C compiler driver
// ---------------------------------------------------------------------------

// Toolchain represents the external programs used to assemble and link.
type Toolchain struct {
	Target      *Target
	BuildDir    string
	AsmFile     string // path to the assembly file
	ObjFile     string // path to the object file
	ExeFile     string // path to the final executable
	RuntimeFile string // path to the C runtime source (empty if not linked)
	CC          string // C compiler driver; defaults to "cc"
	Verbose     bool
}

// NewToolchain creates a Toolchain for the given target and build directory.
func NewToolchain(target *Target, buildDir, baseName string) *Toolchain {
	return &Toolchain{
		Target:   target,
		BuildDir: buildDir,
		AsmFile:  filepath.Join(buildDir, baseName+target.FileExtAsm()),
		ObjFile:  filepath.Join(buildDir, baseName+target.FileExtObj()),
		ExeFile:  filepath.Join(buildDir, baseName+target.FileExtExe()),
		CC:       "cc",
	}
}

// WriteAssembly writes the assembly string to the .s file.
func (tc *Toolchain) WriteAssembly(asm string) error {
	return os.WriteFile(tc.AsmFile, []byte(asm), 0644)
}

// WriteRuntime places the embedded C runtime in the build directory so the
// link step compiles it alongside the program.
func (tc *Toolchain) WriteRuntime() error {
	path, err := writeRuntime(tc.BuildDir)
	if err != nil {
		return err
	}
	tc.RuntimeFile = path
	return nil
}

// Assemble invokes the assembler to produce an object file from the assembly.
func (tc *Toolchain) Assemble() error {
	args := append(tc.archFlags(), "-c", "-o", tc.ObjFile, tc.AsmFile)
	return tc.runCmd(exec.Command(tc.CC, args...), "assemble")
}

// Link invokes the linker to produce the final executable. The C runtime is
// compiled in when WriteRuntime has been called.
func (tc *Toolchain) Link() error {
	args := append(tc.archFlags(), "-o", tc.ExeFile, tc.ObjFile)
	if tc.RuntimeFile != "" {
		args = append(args, tc.RuntimeFile)
	}
	return tc.runCmd(exec.Command(tc.CC, args...), "link")
}

// archFlags selects the architecture for drivers that build more than one.
func (tc *Toolchain) archFlags() []string {
	switch tc.Target.ObjFmt {
	case ObjMachO:
		return []string{"-arch", tc.Target.Arch.String()}
	default:
		return nil
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (tc *Toolchain) runCmd(cmd *exec.Cmd, stage string) error {
	if tc.Verbose {
		fmt.Printf("[toolchain] %s: %s\n", stage, strings.Join(cmd.Args, " "))
	}

	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = os.Stdout

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s failed: %v\n%s", stage, err, stderr.String())
	}
	return nil
}

// DetectToolchain checks whether the required external tools are available
// and returns a list of missing tools.
func DetectToolchain(cc string) []string {
	if cc == "" {
		cc = "cc"
	}
	var missing []string
	if _, err := exec.LookPath(cc); err != nil {
		missing = append(missing, cc+" (assembler and linker driver)")
	}
	return missing
}
