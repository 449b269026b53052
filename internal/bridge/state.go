package bridge

// Overlay names the panel covering the rendering surface.
type Overlay string

const (
	// OverlayNone means no overlay is shown and the canvas is visible.
	OverlayNone      Overlay = ""
	OverlayLoading   Overlay = "loading"
	OverlayExit      Overlay = "exit"
	OverlayExitError Overlay = "exit_error"
)

// Overlays lists every overlay panel the page must provide, in page order.
var Overlays = []Overlay{OverlayLoading, OverlayExit, OverlayExitError}

func (o Overlay) String() string {
	if o == OverlayNone {
		return "canvas"
	}
	return string(o)
}

// State is the readiness record of a bridge.
//
// Started goes from false to true once and only when both readiness flags
// are set; nothing resets it.
type State struct {
	StorageMounted     bool
	RuntimeInitialized bool
	Started            bool
	Overlay            Overlay
}

// CanStart reports whether the entry point may be invoked now.
func (s State) CanStart() bool {
	return s.StorageMounted && s.RuntimeInitialized && !s.Started
}
