package html

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// wasmExecPaths are the locations of wasm_exec.js inside GOROOT, newest first.
var wasmExecPaths = []string{
	filepath.Join("lib", "wasm", "wasm_exec.js"),
	filepath.Join("misc", "wasm", "wasm_exec.js"),
}

// WasmExecJS reads wasm_exec.js from a Go installation. An empty goroot means
// $GOROOT, or the GOROOT this binary was built with.
func WasmExecJS(goroot string) ([]byte, error) {
	if goroot == "" {
		goroot = os.Getenv("GOROOT")
	}
	if goroot == "" {
		goroot = runtime.GOROOT()
	}
	if goroot == "" {
		return nil, fmt.Errorf("cannot locate wasm_exec.js: GOROOT is not set")
	}

	for _, p := range wasmExecPaths {
		data, err := os.ReadFile(filepath.Join(goroot, p))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading wasm_exec.js: %w", err)
		}
	}
	return nil, fmt.Errorf("wasm_exec.js not found in %s", goroot)
}
