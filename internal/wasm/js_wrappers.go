//go:build js && wasm

package main

import (
	"errors"
	"fmt"
	"syscall/js"
)

// jsCall runs fn and turns a thrown JavaScript exception into an error.
func jsCall(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = errors.New(jsErrorMessage(jsErr.Value))
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

// jsErrorMessage extracts a message from an Error, an Emscripten ErrnoError
// or any other thrown value.
func jsErrorMessage(v js.Value) string {
	switch v.Type() {
	case js.TypeUndefined, js.TypeNull:
		return ""
	case js.TypeString:
		return v.String()
	case js.TypeObject:
		if msg := v.Get("message"); msg.Truthy() {
			return msg.String()
		}
		if errno := v.Get("errno"); errno.Type() == js.TypeNumber {
			return fmt.Sprintf("errno %d", errno.Int())
		}
	}
	return js.Global().Call("String", v).String()
}

// bytesFromJS copies a Uint8Array into Go memory.
func bytesFromJS(v js.Value) []byte {
	data := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(data, v)
	return data
}

// bytesToJS copies data into a new Uint8Array.
func bytesToJS(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

// stringsToJS converts a string slice to a JS array.
func stringsToJS(values []string) js.Value {
	arr := make([]any, len(values))
	for i, v := range values {
		arr[i] = v
	}
	return js.ValueOf(arr)
}

// stringArg returns args[i] as a string, or "" when absent or not a string.
func stringArg(args []js.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	return stringValue(args[i])
}

// stringValue returns v as a string, or "" for null and other non-strings.
func stringValue(v js.Value) string {
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

// once registers a JS callback that releases itself after its first call.
func once(fn func(args []js.Value)) js.Func {
	var f js.Func
	f = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer f.Release()
		fn(args)
		return nil
	})
	return f
}

// setTimeout schedules fn on the page's timer queue.
var setTimeout = func(fn js.Func, ms int) {
	js.Global().Call("setTimeout", fn, ms)
}

func getElement(id string) js.Value {
	return js.Global().Get("document").Call("getElementById", id)
}
