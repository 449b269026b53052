//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"
)

// emscriptenRuntime is the Emscripten Module object. The program must be
// linked with -sINVOKE_RUN=0 and export FS, ENV and callMain.
type emscriptenRuntime struct {
	module js.Value
}

func (r *emscriptenRuntime) SetEnv(key, value string) {
	r.module.Get("ENV").Set(key, value)
}

func (r *emscriptenRuntime) Chdir(dir string) error {
	err := jsCall(func() {
		r.module.Get("FS").Call("chdir", dir)
	})
	if err != nil {
		return fmt.Errorf("chdir %s: %w", dir, err)
	}
	return nil
}

// CallMain runs the program's main. Emscripten rethrows anything that is not
// an exit status, such as an abort or a trap before the first yield.
func (r *emscriptenRuntime) CallMain(args []string) error {
	return jsCall(func() {
		r.module.Call("callMain", stringsToJS(args))
	})
}
