//go:build js && wasm

// Command wasm is the host bridge compiled for the browser. It prepares the
// Emscripten Module object, wires the page to the bridge and then loads the
// program script.
package main

import (
	"errors"
	"syscall/js"

	"github.com/lite-xl/webshell/internal/bridge"
	"github.com/lite-xl/webshell/internal/logger"
	"github.com/lite-xl/webshell/internal/shellconfig"
)

func main() {
	logger.SetOutput(consoleWriter{})
	logger.SetFlags(0)

	cfg, err := readConfig()
	if err != nil {
		logger.Errorf("reading shell config: %v", err)
		cfg = shellconfig.Default()
	}

	global := js.Global()
	module := global.Get("Object").New()
	global.Set("Module", module)

	page := newDOMPage()
	b := bridge.New(bridge.FromConfig(cfg),
		&emscriptenRuntime{module: module},
		page,
		&fsStorage{module: module})

	module.Set("thisProgram", cfg.Program)
	module.Set("arguments", stringsToJS(cfg.Arguments))
	module.Set("noInitialRun", true)
	module.Set("preRun", js.ValueOf([]any{js.FuncOf(func(js.Value, []js.Value) any {
		b.PreRun()
		return nil
	})}))
	module.Set("onRuntimeInitialized", js.FuncOf(func(js.Value, []js.Value) any {
		b.OnRuntimeInitialized()
		return nil
	}))
	module.Set("onExit", js.FuncOf(func(_ js.Value, args []js.Value) any {
		status := 0
		if len(args) > 0 && args[0].Type() == js.TypeNumber {
			status = args[0].Int()
		}
		b.OnExit(status)
		return nil
	}))

	// hooks called by the program
	module.Set("uploadFiles", js.FuncOf(func(_ js.Value, args []js.Value) any {
		b.Upload(stringArg(args, 0))
		return nil
	}))
	module.Set("downloadFiles", js.FuncOf(func(_ js.Value, args []js.Value) any {
		b.Download(stringArg(args, 0))
		return nil
	}))

	onError := js.FuncOf(func(_ js.Value, args []js.Value) any {
		b.OnError(eventError(args))
		return nil
	})
	global.Call("addEventListener", "error", onError)
	global.Call("addEventListener", "unhandledrejection", onError)

	whenLoaded(func() {
		module.Set("canvas", page.canvas)
		module.Set("setStatus", js.FuncOf(func(_ js.Value, args []js.Value) any {
			b.Status(stringArg(args, 0))
			return nil
		}))
		bindTextInput(b)
		b.Load()
		loadScript(cfg.Script)
	})

	select {}
}

// readConfig decodes window.webshellConfig.
func readConfig() (*shellconfig.Config, error) {
	v := js.Global().Get("webshellConfig")
	if v.IsUndefined() || v.IsNull() {
		return shellconfig.Default(), nil
	}
	data := js.Global().Get("JSON").Call("stringify", v).String()
	return shellconfig.ParseJSON([]byte(data))
}

// whenLoaded runs fn once the page has finished loading.
func whenLoaded(fn func()) {
	if js.Global().Get("document").Get("readyState").String() == "complete" {
		fn()
		return
	}
	js.Global().Call("addEventListener", "load", once(func([]js.Value) { fn() }))
}

// bindTextInput forwards committed text from the hidden text entry element.
func bindTextInput(b *bridge.Bridge) {
	input := getElement("textinput")
	if input.IsNull() {
		logger.Warnf("no #textinput element, text input disabled")
		return
	}

	// Composition text is ignored; only the committed result is forwarded.
	input.Call("addEventListener", "compositionend", js.FuncOf(func(_ js.Value, args []js.Value) any {
		e := args[0]
		b.OnCompositionEnd(stringValue(e.Get("data")), e.Get("isComposing").Truthy())
		return nil
	}))
	input.Call("addEventListener", "input", js.FuncOf(func(_ js.Value, args []js.Value) any {
		e := args[0]
		b.OnInput(bridge.InputEvent{
			InputType:   stringValue(e.Get("inputType")),
			Data:        stringValue(e.Get("data")),
			IsComposing: e.Get("isComposing").Truthy(),
		})
		return nil
	}))
}

// eventError converts an ErrorEvent or PromiseRejectionEvent to an error.
func eventError(args []js.Value) error {
	if len(args) == 0 {
		return nil
	}
	e := args[0]
	msg := jsErrorMessage(e.Get("message"))
	if msg == "" {
		msg = jsErrorMessage(e.Get("reason"))
	}
	if cause := e.Get("error"); cause.Truthy() {
		logger.Debugf("%s", jsErrorMessage(cause))
	}
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

// loadScript appends the program's Emscripten loader to the document.
func loadScript(src string) {
	doc := js.Global().Get("document")
	script := doc.Call("createElement", "script")
	script.Set("src", src)
	script.Set("async", true)
	doc.Get("body").Call("appendChild", script)
}
