package headless

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lite-xl/webshell/internal/bridge"
)

const home = "/home/web_user"

func TestOpenStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := OpenStorage(dir, home)
	require.NoError(t, err)
	require.Equal(t, home, s.Volume().MountPoint())

	require.NoError(t, s.MkdirAll(home+"/.config/lite-xl"))
	info, err := os.Stat(filepath.Join(dir, ".config", "lite-xl"))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	require.ErrorContains(t, s.MkdirAll("/tmp"), "outside")
}

func TestMkdirAllBeforeMount(t *testing.T) {
	s := &Storage{stateDir: t.TempDir()}
	require.NoError(t, s.MkdirAll(home))
	require.Nil(t, s.Volume())
}

func TestImportFilesAndArchives(t *testing.T) {
	hostDir := t.TempDir()
	notes := filepath.Join(hostDir, "notes.md")
	require.NoError(t, os.WriteFile(notes, []byte("# notes"), 0644))

	archive := filepath.Join(hostDir, "plugins.tar.gz")
	require.NoError(t, os.WriteFile(archive, tarGz(t, map[string]string{
		"plugins/minimap.lua": "return {}",
	}), 0644))

	s, err := OpenStorage(filepath.Join(t.TempDir(), "state"), home)
	require.NoError(t, err)

	written, err := s.Import(home+"/uploads", []string{notes, archive})
	require.NoError(t, err)
	require.Equal(t, []string{
		home + "/uploads/notes.md",
		home + "/uploads/plugins/minimap.lua",
	}, written)

	data, err := s.Volume().ReadFile(home + "/uploads/plugins/minimap.lua")
	require.NoError(t, err)
	require.Equal(t, "return {}", string(data))
}

func TestImportMissingFile(t *testing.T) {
	s, err := OpenStorage(filepath.Join(t.TempDir(), "state"), home)
	require.NoError(t, err)

	_, err = s.Import(home, []string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	s, err := OpenStorage(filepath.Join(t.TempDir(), "state"), home)
	require.NoError(t, err)
	require.NoError(t, s.Volume().WriteFile(home+"/notes.md", []byte("# notes")))
	require.NoError(t, s.Volume().WriteFile(home+"/.config/lite-xl/init.lua", []byte("-- init")))

	out := t.TempDir()

	file, err := s.Export(home+"/notes.md", out)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "notes.md"), file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "# notes", string(data))

	archive, err := s.Export(home, out)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "web_user.tar.gz"), archive)

	f, err := os.Open(archive)
	require.NoError(t, err)
	defer f.Close()
	gzr, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gzr)
	var names []string
	for {
		h, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, h.Name)
	}
	require.Contains(t, names, "web_user/notes.md")
	require.Contains(t, names, "web_user/.config/lite-xl/init.lua")

	_, err = s.Export(home+"/missing", out)
	require.Error(t, err)
}

func TestUploadDownloadHooks(t *testing.T) {
	hostDir := t.TempDir()
	upload := filepath.Join(hostDir, "todo.txt")
	require.NoError(t, os.WriteFile(upload, []byte("ship it"), 0644))
	exportDir := filepath.Join(t.TempDir(), "exports")

	l := newLoop()
	s := &Storage{
		loop:      l,
		stateDir:  filepath.Join(t.TempDir(), "state"),
		imports:   []string{upload},
		exportDir: exportDir,
	}
	require.NoError(t, s.Mount(home, bridge.MountOptions{AutoPersist: true}))

	b := bridge.New(bridge.Options{Home: home}, nil, nil, s)
	b.Upload(home)
	require.NoError(t, l.run(context.Background()))

	data, err := s.Volume().ReadFile(home + "/todo.txt")
	require.NoError(t, err)
	require.Equal(t, "ship it", string(data))

	b.Download(home + "/todo.txt")
	require.NoError(t, l.run(context.Background()))

	data, err = os.ReadFile(filepath.Join(exportDir, "todo.txt"))
	require.NoError(t, err)
	require.Equal(t, "ship it", string(data))
}

func TestOpenStorageHooksWithoutLoop(t *testing.T) {
	s, err := OpenStorage(filepath.Join(t.TempDir(), "state"), home)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		s.Upload(home)
		s.Download(home)
	})
	files, err := s.Volume().Files(home)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestSyncWithoutMount(t *testing.T) {
	s := &Storage{loop: newLoop()}
	var got error
	s.Sync(true, func(err error) { got = err })
	require.Error(t, got)
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}
