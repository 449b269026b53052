package headless

import (
	"github.com/lite-xl/webshell/internal/bridge"
	"github.com/lite-xl/webshell/internal/logger"
)

// terminalPage reports what a browser page would show through the logger.
type terminalPage struct {
	scale      float64
	overlay    bridge.Overlay
	status     string
	exitStatus string
	keys       int
}

func (p *terminalPage) ShowOverlay(o bridge.Overlay) {
	p.overlay = o
	switch o {
	case bridge.OverlayExitError:
		logger.Warnf("%s", p.exitStatus)
	case bridge.OverlayExit:
		logger.Infof("program exited")
	default:
		logger.Debugf("overlay: %s", o)
	}
}

func (p *terminalPage) ShowCanvas() {
	p.overlay = bridge.OverlayNone
	logger.Debugf("overlay: %s", bridge.OverlayNone)
}

func (p *terminalPage) SetStatus(text string) {
	if text == p.status {
		return
	}
	p.status = text
	logger.Infof("%s", text)
}

func (p *terminalPage) SetExitStatus(text string) {
	p.exitStatus = text
}

func (p *terminalPage) DisableContextMenu() {}

func (p *terminalPage) DispatchKey(ev bridge.KeyEvent) {
	p.keys++
	logger.Tracef("%s key=%q code=%q charCode=%d", ev.Type, ev.Key, ev.Code, ev.CharCode)
}

func (p *terminalPage) DevicePixelRatio() float64 {
	if p.scale <= 0 {
		return 1
	}
	return p.scale
}
