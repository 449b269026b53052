// Package bridge sequences the startup of a WebAssembly program inside a page.
//
// A Bridge waits for two independent signals, persistent storage being
// mounted and the program runtime being initialized, then invokes the
// program's entry point exactly once. It mirrors the program lifecycle into
// the page overlays and turns text input into discrete key events.
//
// The bridge is host independent. A host implements Runtime, Page and Storage
// and calls the bridge's reaction methods. All reactions must run on a single
// goroutine (the page's task queue); the bridge holds no locks.
package bridge

import (
	"errors"
	"strconv"

	"github.com/lite-xl/webshell/internal/logger"
	"github.com/lite-xl/webshell/internal/shellconfig"
	"github.com/lite-xl/webshell/internal/translations"
)

// Runtime is the program runtime the bridge starts.
type Runtime interface {
	// SetEnv sets an environment variable seen by the program.
	SetEnv(key, value string)
	// Chdir changes the program's working directory.
	Chdir(dir string) error
	// CallMain invokes the program entry point. An error means the program
	// failed before it could report an exit status.
	CallMain(args []string) error
}

// Page is the visible surface of the host.
type Page interface {
	// ShowOverlay shows exactly one overlay and hides the canvas.
	ShowOverlay(o Overlay)
	// ShowCanvas hides every overlay and shows the canvas.
	ShowCanvas()
	SetStatus(text string)
	SetExitStatus(text string)
	DisableContextMenu()
	DispatchKey(ev KeyEvent)
	DevicePixelRatio() float64
}

// MountOptions configures a persistent mount.
type MountOptions struct {
	// AutoPersist writes changes back to persistent storage without an explicit sync.
	AutoPersist bool
}

// Storage is the filesystem collaborator.
type Storage interface {
	MkdirAll(path string) error
	Mount(path string, opts MountOptions) error
	// Sync copies state between persistent storage and the in-memory
	// filesystem; populate loads from persistent storage. done is called
	// later on the host's task queue.
	Sync(populate bool, done func(error))
	Upload(dir string)
	Download(path string)
}

// Options holds what the bridge needs from the shell configuration.
type Options struct {
	Title     string
	Arguments []string
	Home      string
	ScaleEnv  string
	Env       map[string]string
	Language  string
}

// FromConfig builds Options from a shell configuration.
func FromConfig(c *shellconfig.Config) Options {
	env := make(map[string]string, len(c.Env))
	for k, v := range c.Env {
		env[k] = v
	}
	return Options{
		Title:     c.Title,
		Arguments: append([]string(nil), c.Arguments...),
		Home:      c.Home,
		ScaleEnv:  c.ScaleEnv,
		Env:       env,
		Language:  c.Language,
	}
}

// Bridge owns the readiness record and the overlay selector.
type Bridge struct {
	opts    Options
	runtime Runtime
	page    Page
	storage Storage

	state State
}

// New creates a bridge. Nothing happens until the host calls Load.
func New(opts Options, rt Runtime, page Page, st Storage) *Bridge {
	return &Bridge{
		opts:    opts,
		runtime: rt,
		page:    page,
		storage: st,
	}
}

// State returns a snapshot of the readiness record.
func (b *Bridge) State() State {
	return b.state
}

// Load runs when the page has loaded.
func (b *Bridge) Load() {
	b.showOverlay(OverlayLoading)
	b.Status("")
}

// Status is the status sink handed to the runtime. An empty status means
// the runtime is still initializing.
func (b *Bridge) Status(text string) {
	if text == "" {
		text = translations.T(b.opts.Language, "status_initializing")
	}
	b.page.SetStatus(text)
}

// PreRun prepares the environment and mounts persistent storage at home.
// It runs inside the runtime's pre-run phase.
func (b *Bridge) PreRun() {
	ratio := b.page.DevicePixelRatio()
	b.runtime.SetEnv(b.opts.ScaleEnv, strconv.FormatFloat(ratio, 'f', -1, 64))
	for k, v := range b.opts.Env {
		b.runtime.SetEnv(k, v)
	}

	if err := b.storage.MkdirAll(b.opts.Home); err != nil {
		b.OnStorageMounted(err)
		return
	}
	if err := b.storage.Mount(b.opts.Home, MountOptions{AutoPersist: true}); err != nil {
		b.OnStorageMounted(err)
		return
	}
	b.storage.Sync(true, b.OnStorageMounted)
}

// OnStorageMounted receives the result of populating the mounted storage.
// A failure is fatal: the program is never started.
func (b *Bridge) OnStorageMounted(err error) {
	if err != nil {
		logger.Errorf("syncing storage at %s failed: %v", b.opts.Home, err)
		return
	}
	b.state.StorageMounted = true
	b.start()
}

// OnRuntimeInitialized runs when the program runtime is ready.
func (b *Bridge) OnRuntimeInitialized() {
	b.state.RuntimeInitialized = true
	b.start()
}

// start is the only caller of Runtime.CallMain.
func (b *Bridge) start() {
	if !b.state.CanStart() {
		return
	}
	b.state.Started = true
	logger.Infof("starting %s", b.opts.Title)

	if err := b.runtime.Chdir(b.opts.Home); err != nil {
		b.OnError(err)
		return
	}
	b.page.DisableContextMenu()
	b.showCanvas()
	if err := b.runtime.CallMain(b.opts.Arguments); err != nil {
		b.OnError(err)
	}
}

// OnExit receives the program's exit status.
func (b *Bridge) OnExit(status int) {
	if status == 0 {
		b.showOverlay(OverlayExit)
		return
	}
	b.page.SetExitStatus(translations.T(b.opts.Language, "exit_status", status))
	b.showOverlay(OverlayExitError)
}

// ErrUnknown stands in for an error event without an error value.
var ErrUnknown = errors.New("unknown error")

// OnError handles an uncaught error or unhandled rejection. Before the
// program starts the message goes to the status line and the loading overlay
// stays up; afterwards it is a crash.
func (b *Bridge) OnError(err error) {
	if err == nil {
		err = ErrUnknown
	}
	if b.state.Started {
		b.page.SetExitStatus(err.Error())
		b.showOverlay(OverlayExitError)
	} else {
		b.Status(err.Error())
		b.showOverlay(OverlayLoading)
	}
	logger.Errorf("%v", err)
}

// OnCompositionEnd forwards text committed by an input method.
func (b *Bridge) OnCompositionEnd(data string, composing bool) {
	b.dispatch(TextKeyEvents(data, composing))
}

// OnInput forwards an input event from the text entry element.
func (b *Bridge) OnInput(ev InputEvent) {
	b.dispatch(InputKeyEvents(ev))
}

// Upload asks the storage collaborator to import files into dir.
func (b *Bridge) Upload(dir string) {
	b.storage.Upload(dir)
}

// Download asks the storage collaborator to export path.
func (b *Bridge) Download(path string) {
	b.storage.Download(path)
}

func (b *Bridge) dispatch(events []KeyEvent) {
	for _, ev := range events {
		b.page.DispatchKey(ev)
	}
}

func (b *Bridge) showOverlay(o Overlay) {
	b.state.Overlay = o
	b.page.ShowOverlay(o)
}

func (b *Bridge) showCanvas() {
	b.state.Overlay = OverlayNone
	b.page.ShowCanvas()
}
