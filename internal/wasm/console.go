//go:build js && wasm

package main

import (
	"strings"
	"syscall/js"
)

// consoleWriter sends log lines to the browser console, errors and warnings
// to console.error and console.warn.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	method := "log"
	switch {
	case strings.HasPrefix(line, "ERROR"):
		method = "error"
	case strings.HasPrefix(line, "WARN"):
		method = "warn"
	case strings.HasPrefix(line, "DEBUG"), strings.HasPrefix(line, "TRACE"):
		method = "debug"
	}
	js.Global().Get("console").Call(method, line)
	return len(p), nil
}
