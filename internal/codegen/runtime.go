package codegen

import (
	_ "embed"
	"os"
	"path/filepath"
)

// RuntimeFileName is the name the C runtime is written under in the build
// directory.
const RuntimeFileName = "aoc_runtime.c"

//go:embed cruntime/utils.c
var runtimeSource []byte

// RuntimeSource returns the C support code linked into every executable.
// It provides read_until_eof(int fd) for programs that declare it extern.
func RuntimeSource() []byte {
	return runtimeSource
}

// writeRuntime writes the C runtime next to the other build artifacts and
// returns its path.
func writeRuntime(dir string) (string, error) {
	path := filepath.Join(dir, RuntimeFileName)
	if err := os.WriteFile(path, runtimeSource, 0644); err != nil {
		return "", err
	}
	return path, nil
}
