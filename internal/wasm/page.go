//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/lite-xl/webshell/internal/bridge"
)

// domPage drives the overlay container, the canvas and the status lines.
type domPage struct {
	window      js.Value
	document    js.Value
	overlay     js.Value
	canvas      js.Value
	contextMenu js.Func
}

func newDOMPage() *domPage {
	return &domPage{
		window:   js.Global(),
		document: js.Global().Get("document"),
		overlay:  getElement("overlay"),
		canvas:   getElement("canvas"),
	}
}

func (p *domPage) ShowOverlay(o bridge.Overlay) {
	divs := p.document.Call("querySelectorAll", "#overlay div")
	for i := 0; i < divs.Length(); i++ {
		el := divs.Index(i)
		display := "none"
		if el.Get("id").String() == string(o) {
			display = "block"
		}
		el.Get("style").Set("display", display)
	}
	p.overlay.Get("style").Set("display", "flex")
	p.canvas.Get("style").Set("display", "none")
}

func (p *domPage) ShowCanvas() {
	p.overlay.Get("style").Set("display", "none")
	p.canvas.Get("style").Set("display", "block")
}

func (p *domPage) SetStatus(text string) {
	getElement("status").Set("textContent", text)
}

func (p *domPage) SetExitStatus(text string) {
	getElement("exit_status").Set("textContent", text)
}

func (p *domPage) DisableContextMenu() {
	if p.contextMenu.IsUndefined() {
		p.contextMenu = js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) > 0 {
				args[0].Call("preventDefault")
			}
			return nil
		})
	}
	p.canvas.Set("oncontextmenu", p.contextMenu)
}

func (p *domPage) DispatchKey(ev bridge.KeyEvent) {
	init := map[string]any{
		"isComposing": ev.IsComposing,
	}
	if ev.Key != "" {
		init["key"] = ev.Key
	}
	if ev.Code != "" {
		init["code"] = ev.Code
	}
	if ev.CharCode != 0 {
		init["charCode"] = ev.CharCode
	}
	event := p.window.Get("KeyboardEvent").New(string(ev.Type), init)
	p.window.Call("dispatchEvent", event)
}

func (p *domPage) DevicePixelRatio() float64 {
	ratio := p.window.Get("devicePixelRatio")
	if ratio.Type() != js.TypeNumber {
		return 1
	}
	return ratio.Float()
}
