package codegen

import (
	"fmt"
	"runtime"
)

// ---------------------------------------------------------------------------
// OS / Architecture / Target enums
// ---------------------------------------------------------------------------

// OS represents a target operating system.
type OS int

const (
	OS_Linux  OS = iota
	OS_Darwin    // macOS
)

func (o OS) String() string {
	switch o {
	case OS_Linux:
		return "linux"
	case OS_Darwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// Arch represents a target CPU architecture. Only x86-64 is emitted.
type Arch int

const (
	Arch_x86_64 Arch = iota
)

func (a Arch) String() string {
	switch a {
	case Arch_x86_64:
		return "x86_64"
	default:
		return "unknown"
	}
}

// ObjFormat is the object file format produced by the assembler.
type ObjFormat int

const (
	ObjELF   ObjFormat = iota // Linux
	ObjMachO                  // macOS
)

func (f ObjFormat) String() string {
	switch f {
	case ObjELF:
		return "elf64"
	case ObjMachO:
		return "macho64"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Target: a fully-resolved compilation target
// ---------------------------------------------------------------------------

// Target holds everything the emitter needs to know about the platform:
// object format, register names and the System V calling convention.
type Target struct {
	OS     OS
	Arch   Arch
	ObjFmt ObjFormat

	// PtrSize is the size of a pointer and of each stack argument slot.
	PtrSize int

	// StackAlign is the required %rsp alignment at a call instruction.
	StackAlign int

	// Registers by role, without the AT&T "%" sigil.
	ReturnReg32  string   // low half of the return register, zeroed before variadic calls and on exit
	StackPointer string   // stack pointer register
	BasePointer  string   // frame pointer register
	ScratchReg   string   // caller-saved temporary used for stack arguments
	ArgRegs      []string // integer argument registers, in order

	// SymbolPrefix: macOS Mach-O prepends "_" to global symbols.
	SymbolPrefix string

	// ExternSuffix is appended to extern call targets ("@PLT" on ELF).
	ExternSuffix string

	// RodataSection is the directive opening the read-only data section.
	RodataSection string

	// NoExecStack marks the stack non-executable (ELF only).
	NoExecStack string
}

// HostTarget returns a Target matching the current Go runtime (GOOS/GOARCH).
func HostTarget() (*Target, error) {
	return ResolveTarget(runtime.GOOS, runtime.GOARCH)
}

// ResolveTarget builds a Target from OS/Arch name strings (same names Go uses).
func ResolveTarget(osName, archName string) (*Target, error) {
	t := &Target{}

	switch osName {
	case "linux":
		t.OS = OS_Linux
	case "darwin":
		t.OS = OS_Darwin
	default:
		return nil, fmt.Errorf("unsupported OS: %s", osName)
	}

	switch archName {
	case "amd64", "x86_64":
		t.Arch = Arch_x86_64
	default:
		return nil, fmt.Errorf("unsupported architecture: %s", archName)
	}

	t.fillX86_64()

	// OS-specific overrides.
	switch t.OS {
	case OS_Darwin:
		t.ObjFmt = ObjMachO
		t.SymbolPrefix = "_"
		t.RodataSection = ".section __TEXT,__const"
	case OS_Linux:
		t.ObjFmt = ObjELF
		t.ExternSuffix = "@PLT"
		t.RodataSection = ".section .rodata"
		t.NoExecStack = `.section .note.GNU-stack,"",@progbits`
	}

	return t, nil
}

// ---------------------------------------------------------------------------
// Architecture-specific initialization
// ---------------------------------------------------------------------------

func (t *Target) fillX86_64() {
	t.PtrSize = 8
	t.StackAlign = 16
	t.ReturnReg32 = "eax"
	t.StackPointer = "rsp"
	t.BasePointer = "rbp"
	t.ScratchReg = "r10"

	// System V AMD64 ABI (Linux, macOS)
	t.ArgRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
}

// ---------------------------------------------------------------------------
// Helper queries
// ---------------------------------------------------------------------------

// FileExtObj returns the object file extension.
func (t *Target) FileExtObj() string { return ".o" }

// FileExtExe returns the executable extension.
func (t *Target) FileExtExe() string { return "" }

// FileExtAsm returns the assembly file extension.
func (t *Target) FileExtAsm() string { return ".s" }

// Sym returns a symbol name with the target prefix applied.
func (t *Target) Sym(name string) string {
	return t.SymbolPrefix + name
}

// ExternSym returns the call target for a function resolved by the linker.
func (t *Target) ExternSym(name string) string {
	return t.SymbolPrefix + name + t.ExternSuffix
}

// ArchName returns the architecture using Go-style names.
func (t *Target) ArchName() string {
	switch t.Arch {
	case Arch_x86_64:
		return "amd64"
	default:
		return "unknown"
	}
}

// String renders the target as "os/arch".
func (t *Target) String() string {
	return t.OS.String() + "/" + t.ArchName()
}
