package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lite-xl/webshell/internal/shellconfig"
)

type harness struct {
	rt      *fakeRuntime
	page    *fakePage
	storage *fakeStorage
	b       *Bridge
}

func newHarness() *harness {
	h := &harness{
		rt:      newFakeRuntime(),
		page:    newFakePage(),
		storage: newFakeStorage(),
	}
	opts := FromConfig(shellconfig.Default())
	opts.Arguments = []string{"notes.md"}
	h.b = New(opts, h.rt, h.page, h.storage)
	h.b.Load()
	h.b.PreRun()
	return h
}

func TestLoadShowsLoadingOverlay(t *testing.T) {
	h := newHarness()
	require.Equal(t, OverlayLoading, h.page.overlay)
	require.Equal(t, OverlayLoading, h.b.State().Overlay)
	require.False(t, h.page.canvasVisible)
	require.Equal(t, "Initializing...", h.page.lastStatus())
}

func TestPreRunMountsHome(t *testing.T) {
	h := newHarness()

	require.Equal(t, []string{shellconfig.DefaultHome}, h.storage.dirs)
	require.Equal(t, MountOptions{AutoPersist: true}, h.storage.mounts[shellconfig.DefaultHome])
	require.NotNil(t, h.storage.pending)
	require.Equal(t, "1", h.rt.env[shellconfig.DefaultScaleEnv])
}

func TestPreRunScaleFormatting(t *testing.T) {
	for _, tt := range []struct {
		ratio float64
		want  string
	}{
		{1, "1"},
		{1.5, "1.5"},
		{2.625, "2.625"},
	} {
		rt, page, st := newFakeRuntime(), newFakePage(), newFakeStorage()
		page.ratio = tt.ratio
		opts := FromConfig(shellconfig.Default())
		opts.Env = map[string]string{"LITE_USERDIR": "/home/web_user/.lite"}
		New(opts, rt, page, st).PreRun()
		require.Equal(t, tt.want, rt.env[shellconfig.DefaultScaleEnv])
		require.Equal(t, "/home/web_user/.lite", rt.env["LITE_USERDIR"])
	}
}

func TestStartsOnceInEitherOrder(t *testing.T) {
	orders := map[string]func(h *harness){
		"storage first": func(h *harness) {
			h.storage.complete(nil)
			require.Empty(t, h.rt.calls)
			h.b.OnRuntimeInitialized()
		},
		"runtime first": func(h *harness) {
			h.b.OnRuntimeInitialized()
			require.Empty(t, h.rt.calls)
			h.storage.complete(nil)
		},
	}

	for name, deliver := range orders {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			deliver(h)

			require.Len(t, h.rt.calls, 1)
			require.Equal(t, []string{"notes.md"}, h.rt.calls[0])
			require.Equal(t, shellconfig.DefaultHome, h.rt.dir)
			require.True(t, h.page.menuDisabled)
			require.True(t, h.page.canvasVisible)
			require.Equal(t, OverlayNone, h.page.overlay)

			s := h.b.State()
			require.True(t, s.Started)
			require.False(t, s.CanStart())
		})
	}
}

func TestRedeliveredReadinessDoesNotRestart(t *testing.T) {
	h := newHarness()
	h.storage.complete(nil)
	h.b.OnRuntimeInitialized()

	h.b.OnRuntimeInitialized()
	h.b.OnStorageMounted(nil)
	h.b.OnRuntimeInitialized()

	require.Len(t, h.rt.calls, 1)
	require.True(t, h.b.State().Started)
}

func TestStorageFailureNeverStarts(t *testing.T) {
	h := newHarness()
	h.storage.complete(errors.New("indexeddb unavailable"))
	h.b.OnRuntimeInitialized()

	require.Empty(t, h.rt.calls)
	s := h.b.State()
	require.False(t, s.StorageMounted)
	require.False(t, s.Started)
	require.Equal(t, OverlayLoading, h.page.overlay)
}

func TestMkdirFailureIsStorageFailure(t *testing.T) {
	rt, page, st := newFakeRuntime(), newFakePage(), newFakeStorage()
	st.mkdirErr = errors.New("read-only filesystem")
	b := New(FromConfig(shellconfig.Default()), rt, page, st)
	b.Load()
	b.PreRun()
	b.OnRuntimeInitialized()

	require.Nil(t, st.pending)
	require.Empty(t, rt.calls)
	require.False(t, b.State().StorageMounted)
}

func TestMountFailureIsStorageFailure(t *testing.T) {
	rt, page, st := newFakeRuntime(), newFakePage(), newFakeStorage()
	st.mountErr = errors.New("no IDBFS")
	b := New(FromConfig(shellconfig.Default()), rt, page, st)
	b.Load()
	b.PreRun()
	b.OnRuntimeInitialized()

	require.Empty(t, rt.calls)
}

func TestChdirFailureIsCrash(t *testing.T) {
	h := newHarness()
	h.rt.chdirErr = errors.New("ENOENT")
	h.storage.complete(nil)
	h.b.OnRuntimeInitialized()

	require.Empty(t, h.rt.calls)
	require.True(t, h.b.State().Started)
	require.Equal(t, OverlayExitError, h.page.overlay)
	require.Equal(t, "ENOENT", h.page.exitStatus)
}

func TestEntryPointThrowIsCrash(t *testing.T) {
	h := newHarness()
	h.rt.mainErr = errors.New("RuntimeError: unreachable executed")
	h.storage.complete(nil)
	h.b.OnRuntimeInitialized()

	require.Len(t, h.rt.calls, 1)
	require.Equal(t, OverlayExitError, h.page.overlay)
	require.Equal(t, OverlayExitError, h.b.State().Overlay)
	require.Equal(t, "RuntimeError: unreachable executed", h.page.exitStatus)

	h.b.OnRuntimeInitialized()
	require.Len(t, h.rt.calls, 1)
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		status      int
		wantOverlay Overlay
		wantText    string
	}{
		{0, OverlayExit, ""},
		{1, OverlayExitError, "Program exited with status 1"},
		{137, OverlayExitError, "Program exited with status 137"},
		{-2, OverlayExitError, "Program exited with status -2"},
	}

	for _, tt := range tests {
		h := newHarness()
		h.storage.complete(nil)
		h.b.OnRuntimeInitialized()

		h.b.OnExit(tt.status)
		require.Equal(t, tt.wantOverlay, h.page.overlay, "status %d", tt.status)
		require.Equal(t, tt.wantOverlay, h.b.State().Overlay)
		require.False(t, h.page.canvasVisible)
		require.Equal(t, tt.wantText, h.page.exitStatus)
	}
}

func TestExitStatusTranslated(t *testing.T) {
	rt, page, st := newFakeRuntime(), newFakePage(), newFakeStorage()
	opts := FromConfig(shellconfig.Default())
	opts.Language = "de"
	b := New(opts, rt, page, st)
	b.OnExit(3)
	require.Equal(t, "Programm wurde mit Status 3 beendet", page.exitStatus)
}

func TestErrorBeforeStart(t *testing.T) {
	h := newHarness()
	h.b.OnError(errors.New("failed to fetch lite-xl.wasm"))

	require.Equal(t, OverlayLoading, h.page.overlay)
	require.Equal(t, "failed to fetch lite-xl.wasm", h.page.lastStatus())
	require.Empty(t, h.page.exitStatus)
	require.False(t, h.b.State().Started)
}

func TestErrorAfterStart(t *testing.T) {
	h := newHarness()
	h.storage.complete(nil)
	h.b.OnRuntimeInitialized()

	h.b.OnError(errors.New("RuntimeError: unreachable"))

	require.Equal(t, OverlayExitError, h.page.overlay)
	require.Equal(t, "RuntimeError: unreachable", h.page.exitStatus)
}

func TestNilError(t *testing.T) {
	h := newHarness()
	h.b.OnError(nil)
	require.Equal(t, ErrUnknown.Error(), h.page.lastStatus())
}

func TestStatusSink(t *testing.T) {
	h := newHarness()
	h.b.Status("Downloading data... (10/20)")
	require.Equal(t, "Downloading data... (10/20)", h.page.lastStatus())
	h.b.Status("")
	require.Equal(t, "Initializing...", h.page.lastStatus())
}

func TestCompositionEndDispatchesCharacters(t *testing.T) {
	h := newHarness()
	h.b.OnCompositionEnd("café", false)

	require.Len(t, h.page.keys, 4)
	for i, want := range []string{"c", "a", "f", "é"} {
		require.Equal(t, KeyPress, h.page.keys[i].Type)
		require.Equal(t, want, h.page.keys[i].Key)
		require.False(t, h.page.keys[i].IsComposing)
	}
}

func TestInputBackspace(t *testing.T) {
	h := newHarness()
	h.b.OnInput(InputEvent{InputType: InputTypeDeleteBackward})

	require.Len(t, h.page.keys, 2)
	require.Equal(t, KeyDown, h.page.keys[0].Type)
	require.Equal(t, KeyUp, h.page.keys[1].Type)
	for _, ev := range h.page.keys {
		require.Equal(t, BackspaceCode, ev.Code)
	}
}

func TestUploadDownloadPassThrough(t *testing.T) {
	h := newHarness()
	h.b.Upload("/home/web_user")
	h.b.Download("/home/web_user/notes.md")

	require.Equal(t, []string{"/home/web_user"}, h.storage.uploads)
	require.Equal(t, []string{"/home/web_user/notes.md"}, h.storage.downloads)
}

func TestFromConfigCopies(t *testing.T) {
	c := shellconfig.Default()
	c.Env["A"] = "1"
	c.Arguments = []string{"x"}
	opts := FromConfig(c)

	c.Env["A"] = "2"
	c.Arguments[0] = "y"
	require.Equal(t, "1", opts.Env["A"])
	require.Equal(t, []string{"x"}, opts.Arguments)
}
