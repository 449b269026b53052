package headless

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/lite-xl/webshell/internal/logger"
)

// wasiRuntime runs a WASI build of the program with wazero.
//
// The module is compiled up front; CallMain instantiates it, which runs
// _start with the collected arguments, environment and mounts.
type wasiRuntime struct {
	ctx     context.Context
	loop    *loop
	program string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	runtime  wazero.Runtime
	compiled wazero.CompiledModule

	env    map[string]string
	dir    string
	mounts map[string]string // guest path -> host dir

	onInitialized func()
	onExit        func(status int)
	onError       func(err error)
	onUpload      func(dir string)
	onDownload    func(path string)
}

func newWASIRuntime(l *loop, program string) *wasiRuntime {
	return &wasiRuntime{
		loop:    l,
		program: program,
		stdout:  io.Discard,
		stderr:  io.Discard,
		env:     map[string]string{},
		mounts:  map[string]string{},
	}
}

// compile prepares the module in the background and reports readiness on the loop.
// The program stops when ctx is done.
func (r *wasiRuntime) compile(ctx context.Context, bin []byte) {
	r.ctx = ctx
	r.runtime = wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	r.loop.spawn(func() func() {
		if _, err := wasi_snapshot_preview1.Instantiate(r.ctx, r.runtime); err != nil {
			return func() { r.onError(fmt.Errorf("instantiating WASI: %w", err)) }
		}
		if err := r.instantiateHostModule(r.ctx); err != nil {
			return func() { r.onError(fmt.Errorf("instantiating %s: %w", hostModuleName, err)) }
		}
		compiled, err := r.runtime.CompileModule(r.ctx, bin)
		if err != nil {
			return func() { r.onError(fmt.Errorf("compiling module: %w", err)) }
		}
		return func() {
			r.compiled = compiled
			logger.Debugf("module compiled, %d imports", len(compiled.ImportedFunctions()))
			r.onInitialized()
		}
	})
}

func (r *wasiRuntime) SetEnv(key, value string) {
	r.env[key] = value
}

// Chdir records the working directory. WASI has no process working
// directory; wasi-libc programs pick it up from PWD.
func (r *wasiRuntime) Chdir(dir string) error {
	if !path.IsAbs(dir) {
		return fmt.Errorf("chdir: %q is not absolute", dir)
	}
	r.dir = path.Clean(dir)
	return nil
}

func (r *wasiRuntime) mount(hostDir, guestPath string) {
	r.mounts[guestPath] = hostDir
}

func (r *wasiRuntime) CallMain(args []string) error {
	if r.compiled == nil {
		return errors.New("module is not compiled")
	}
	cfg := r.moduleConfig(args)
	r.loop.spawn(func() func() {
		_, err := r.runtime.InstantiateModule(r.ctx, r.compiled, cfg)
		var exitErr *sys.ExitError
		switch {
		case err == nil:
			return func() { r.onExit(0) }
		case errors.As(err, &exitErr):
			status := int(exitErr.ExitCode())
			return func() { r.onExit(status) }
		default:
			return func() { r.onError(err) }
		}
	})
	return nil
}

func (r *wasiRuntime) moduleConfig(args []string) wazero.ModuleConfig {
	cfg := wazero.NewModuleConfig().
		WithArgs(append([]string{r.program}, args...)...).
		WithStdout(r.stdout).
		WithStderr(r.stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)
	if r.stdin != nil {
		cfg = cfg.WithStdin(r.stdin)
	}

	if r.dir != "" {
		r.env["PWD"] = r.dir
	}
	keys := make([]string, 0, len(r.env))
	for k := range r.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cfg = cfg.WithEnv(k, r.env[k])
	}

	fsCfg := wazero.NewFSConfig()
	for guest, host := range r.mounts {
		fsCfg = fsCfg.WithDirMount(host, guest)
	}
	return cfg.WithFSConfig(fsCfg)
}

func (r *wasiRuntime) close(ctx context.Context) error {
	if r.runtime == nil {
		return nil
	}
	return r.runtime.Close(ctx)
}
