// Package vfs implements the filesystem helper of the shell: directory
// creation, file import (upload) and archive export (download) on top of
// hackpadfs filesystems.
//
// A Volume maps absolute guest paths below its mount point (for example
// /home/web_user/notes.md) onto a hackpadfs filesystem.
package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// ErrOutsideMount is returned for guest paths not below the mount point.
var ErrOutsideMount = errors.New("path is outside the mounted volume")

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Volume is a hackpadfs filesystem mounted at a guest path.
type Volume struct {
	fsys       hackpadfs.FS
	mountPoint string
}

// NewMemory creates an in-memory volume.
func NewMemory(mountPoint string) (*Volume, error) {
	fsys, err := mem.NewFS()
	if err != nil {
		return nil, fmt.Errorf("creating memory filesystem: %w", err)
	}
	return newVolume(fsys, mountPoint)
}

// NewDisk creates a volume persisted in hostDir, creating it if needed.
func NewDisk(hostDir, mountPoint string) (*Volume, error) {
	abs, err := filepath.Abs(hostDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	root := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	fsys, err := hackpadfs.Sub(osfs.NewFS(), root)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", abs, err)
	}
	return newVolume(fsys, mountPoint)
}

func newVolume(fsys hackpadfs.FS, mountPoint string) (*Volume, error) {
	if !path.IsAbs(mountPoint) {
		return nil, fmt.Errorf("mount point must be absolute, got %q", mountPoint)
	}
	return &Volume{fsys: fsys, mountPoint: path.Clean(mountPoint)}, nil
}

// MountPoint returns the guest path of the volume root.
func (v *Volume) MountPoint() string {
	return v.mountPoint
}

// FS returns the underlying filesystem.
func (v *Volume) FS() hackpadfs.FS {
	return v.fsys
}

// resolve converts a guest path to a path inside the filesystem.
func (v *Volume) resolve(guest string) (string, error) {
	if !path.IsAbs(guest) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrOutsideMount, guest)
	}
	guest = path.Clean(guest)
	if guest == v.mountPoint {
		return ".", nil
	}
	prefix := v.mountPoint + "/"
	if v.mountPoint == "/" {
		prefix = "/"
	}
	if !strings.HasPrefix(guest, prefix) {
		return "", fmt.Errorf("%w: %s", ErrOutsideMount, guest)
	}
	return strings.TrimPrefix(guest, prefix), nil
}

// MkdirAll creates a directory and its parents if they are absent.
func (v *Volume) MkdirAll(guest string) error {
	p, err := v.resolve(guest)
	if err != nil {
		return err
	}
	if p == "." {
		return nil
	}
	if err := hackpadfs.MkdirAll(v.fsys, p, dirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", guest, err)
	}
	return nil
}

// WriteFile writes data to a file, creating parent directories.
func (v *Volume) WriteFile(guest string, data []byte) error {
	p, err := v.resolve(guest)
	if err != nil {
		return err
	}
	if p == "." {
		return fmt.Errorf("cannot write to volume root %s", guest)
	}
	if dir := path.Dir(p); dir != "." {
		if err := hackpadfs.MkdirAll(v.fsys, dir, dirPerm); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}
	}
	if err := hackpadfs.WriteFullFile(v.fsys, p, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", guest, err)
	}
	return nil
}

// ReadFile reads a whole file.
func (v *Volume) ReadFile(guest string) ([]byte, error) {
	p, err := v.resolve(guest)
	if err != nil {
		return nil, err
	}
	data, err := hackpadfs.ReadFile(v.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", guest, err)
	}
	return data, nil
}

// Stat returns file information for a guest path.
func (v *Volume) Stat(guest string) (fs.FileInfo, error) {
	p, err := v.resolve(guest)
	if err != nil {
		return nil, err
	}
	return hackpadfs.Stat(v.fsys, p)
}

// Import stores an uploaded file in dir under its base name and returns the
// guest path it was written to.
func (v *Volume) Import(dir, name string, data []byte) (string, error) {
	base := path.Base(filepath.ToSlash(name))
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	target := path.Join(dir, base)
	if err := v.WriteFile(target, data); err != nil {
		return "", err
	}
	return target, nil
}

// Files lists the guest paths of all regular files below dir, sorted.
func (v *Volume) Files(dir string) ([]string, error) {
	var files []string
	err := v.walk(dir, func(guest string, info fs.FileInfo) error {
		if info.Mode().IsRegular() {
			files = append(files, guest)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// CountFiles counts the number of regular files below dir.
func (v *Volume) CountFiles(dir string) (int, error) {
	files, err := v.Files(dir)
	return len(files), err
}

// walk visits dir and everything below it, parents before children.
func (v *Volume) walk(dir string, fn func(guest string, info fs.FileInfo) error) error {
	p, err := v.resolve(dir)
	if err != nil {
		return err
	}
	info, err := hackpadfs.Stat(v.fsys, p)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", dir, err)
	}
	return v.walkEntry(path.Clean(dir), p, info, fn)
}

func (v *Volume) walkEntry(guest, p string, info fs.FileInfo, fn func(string, fs.FileInfo) error) error {
	if err := fn(guest, info); err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := hackpadfs.ReadDir(v.fsys, p)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", guest, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		childInfo, err := e.Info()
		if err != nil {
			return fmt.Errorf("accessing %s: %w", path.Join(guest, e.Name()), err)
		}
		childPath := e.Name()
		if p != "." {
			childPath = p + "/" + e.Name()
		}
		if err := v.walkEntry(path.Join(guest, e.Name()), childPath, childInfo, fn); err != nil {
			return err
		}
	}
	return nil
}
