// Package headless runs a WASI build of the program natively with wazero,
// driving it through the same host bridge the browser page uses.
package headless

import (
	"context"
	"errors"
	"io"

	"github.com/lite-xl/webshell/internal/bridge"
	"github.com/lite-xl/webshell/internal/logger"
	"github.com/lite-xl/webshell/internal/shellconfig"
)

// ErrNotStarted is returned by Run when the program never started because
// storage or the runtime failed to come up.
var ErrNotStarted = errors.New("program did not start")

// Options configures a headless host.
type Options struct {
	Config *shellconfig.Config
	// Module is the compiled WASI program.
	Module []byte
	// StateDir is the host directory mounted as the home directory.
	StateDir string
	// Scale is reported as the device pixel ratio.
	Scale float64

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Uploads are host files imported when the program calls upload_files.
	Uploads []string
	// ExportDir receives what the program passes to download_files.
	ExportDir string
}

// Host owns the event loop and the bridge collaborators.
type Host struct {
	opts    Options
	loop    *loop
	runtime *wasiRuntime
	storage *Storage
	page    *terminalPage
	bridge  *bridge.Bridge

	exitCode int
	exited   bool
}

// New wires a bridge to a wazero runtime, a disk volume and a terminal page.
func New(opts Options) *Host {
	l := newLoop()
	h := &Host{
		opts:    opts,
		loop:    l,
		runtime: newWASIRuntime(l, opts.Config.Program),
		page:    &terminalPage{scale: opts.Scale},
	}
	h.storage = &Storage{
		loop:      l,
		stateDir:  opts.StateDir,
		onMount:   h.runtime.mount,
		imports:   opts.Uploads,
		exportDir: opts.ExportDir,
	}
	if opts.Stdin != nil {
		h.runtime.stdin = opts.Stdin
	}
	if opts.Stdout != nil {
		h.runtime.stdout = opts.Stdout
	}
	if opts.Stderr != nil {
		h.runtime.stderr = opts.Stderr
	}

	h.bridge = bridge.New(bridge.FromConfig(opts.Config), h.runtime, h.page, h.storage)
	h.runtime.onInitialized = h.bridge.OnRuntimeInitialized
	h.runtime.onExit = func(status int) {
		h.exitCode, h.exited = status, true
		h.bridge.OnExit(status)
	}
	h.runtime.onError = func(err error) {
		h.exitCode, h.exited = 1, true
		h.bridge.OnError(err)
	}
	home := opts.Config.Home
	h.runtime.onUpload = func(dir string) {
		if dir == "" {
			dir = home
		}
		h.bridge.Upload(dir)
	}
	h.runtime.onDownload = func(p string) {
		if p == "" {
			p = home
		}
		h.bridge.Download(p)
	}
	return h
}

// Bridge returns the host bridge.
func (h *Host) Bridge() *bridge.Bridge {
	return h.bridge
}

// Run loads the page, mounts storage, compiles the module and runs the
// program to completion. Cancelling ctx stops the program.
func (h *Host) Run(ctx context.Context) error {
	defer func() {
		if err := h.runtime.close(context.Background()); err != nil {
			logger.Debugf("closing runtime: %v", err)
		}
	}()

	h.bridge.Load()
	h.runtime.compile(ctx, h.opts.Module)
	h.bridge.PreRun()

	if err := h.loop.run(ctx); err != nil {
		return err
	}
	if !h.bridge.State().Started {
		return ErrNotStarted
	}
	return nil
}

// ExitCode returns the program's exit status, or 1 if it crashed or never ran.
func (h *Host) ExitCode() int {
	if !h.exited {
		return 1
	}
	return h.exitCode
}

// Overlay returns what a browser page would currently show.
func (h *Host) Overlay() bridge.Overlay {
	return h.page.overlay
}

// Status returns the last status line.
func (h *Host) Status() string {
	return h.page.status
}
