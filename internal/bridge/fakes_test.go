package bridge

import (
	"errors"
)

type fakeRuntime struct {
	env      map[string]string
	dir      string
	chdirErr error
	mainErr  error
	calls    [][]string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{env: map[string]string{}}
}

func (r *fakeRuntime) SetEnv(key, value string) { r.env[key] = value }

func (r *fakeRuntime) Chdir(dir string) error {
	if r.chdirErr != nil {
		return r.chdirErr
	}
	r.dir = dir
	return nil
}

func (r *fakeRuntime) CallMain(args []string) error {
	r.calls = append(r.calls, args)
	return r.mainErr
}

type fakePage struct {
	overlay       Overlay
	canvasVisible bool
	status        []string
	exitStatus    string
	menuDisabled  bool
	keys          []KeyEvent
	ratio         float64
}

func newFakePage() *fakePage {
	return &fakePage{ratio: 1}
}

func (p *fakePage) ShowOverlay(o Overlay) {
	p.overlay = o
	p.canvasVisible = false
}

func (p *fakePage) ShowCanvas() {
	p.overlay = OverlayNone
	p.canvasVisible = true
}

func (p *fakePage) SetStatus(text string)     { p.status = append(p.status, text) }
func (p *fakePage) SetExitStatus(text string) { p.exitStatus = text }
func (p *fakePage) DisableContextMenu()       { p.menuDisabled = true }
func (p *fakePage) DispatchKey(ev KeyEvent)   { p.keys = append(p.keys, ev) }
func (p *fakePage) DevicePixelRatio() float64 { return p.ratio }

func (p *fakePage) lastStatus() string {
	if len(p.status) == 0 {
		return ""
	}
	return p.status[len(p.status)-1]
}

// fakeStorage holds the sync completion so tests choose when it fires.
type fakeStorage struct {
	dirs      []string
	mounts    map[string]MountOptions
	mkdirErr  error
	mountErr  error
	pending   func(error)
	uploads   []string
	downloads []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{mounts: map[string]MountOptions{}}
}

func (s *fakeStorage) MkdirAll(path string) error {
	if s.mkdirErr != nil {
		return s.mkdirErr
	}
	s.dirs = append(s.dirs, path)
	return nil
}

func (s *fakeStorage) Mount(path string, opts MountOptions) error {
	if s.mountErr != nil {
		return s.mountErr
	}
	s.mounts[path] = opts
	return nil
}

func (s *fakeStorage) Sync(populate bool, done func(error)) {
	if !populate {
		done(errors.New("unexpected flush"))
		return
	}
	s.pending = done
}

func (s *fakeStorage) Upload(dir string)    { s.uploads = append(s.uploads, dir) }
func (s *fakeStorage) Download(path string) { s.downloads = append(s.downloads, path) }

func (s *fakeStorage) complete(err error) {
	done := s.pending
	s.pending = nil
	done(err)
}
