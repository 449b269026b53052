package headless

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lite-xl/webshell/internal/bridge"
	"github.com/lite-xl/webshell/internal/logger"
	"github.com/lite-xl/webshell/internal/vfs"
)

// Storage persists the home directory in a host directory.
//
// Until Mount is called there is no volume; directories requested before that
// are provided by the runtime's mount table.
type Storage struct {
	loop      *loop
	stateDir  string
	volume    *vfs.Volume
	onMount   func(hostDir, guestPath string)
	imports   []string
	exportDir string
}

// OpenStorage mounts stateDir at home without an event loop, for one-shot
// import and export.
func OpenStorage(stateDir, home string) (*Storage, error) {
	s := &Storage{stateDir: stateDir}
	if err := s.Mount(home, bridge.MountOptions{AutoPersist: true}); err != nil {
		return nil, err
	}
	return s, nil
}

// Volume returns the mounted volume, or nil before Mount.
func (s *Storage) Volume() *vfs.Volume {
	return s.volume
}

func (s *Storage) MkdirAll(p string) error {
	if s.volume == nil {
		logger.Debugf("mkdir %s: no volume mounted yet", p)
		return nil
	}
	return s.volume.MkdirAll(p)
}

func (s *Storage) Mount(p string, opts bridge.MountOptions) error {
	if !opts.AutoPersist {
		logger.Warnf("mount %s: disk volumes always persist", p)
	}
	v, err := vfs.NewDisk(s.stateDir, p)
	if err != nil {
		return fmt.Errorf("mounting %s: %w", p, err)
	}
	s.volume = v
	if s.onMount != nil {
		s.onMount(s.stateDir, v.MountPoint())
	}
	logger.Debugf("mounted %s at %s", s.stateDir, v.MountPoint())
	return nil
}

// Sync checks the volume is readable. Disk volumes need no copy in either
// direction.
func (s *Storage) Sync(populate bool, done func(error)) {
	if s.volume == nil {
		done(fmt.Errorf("sync: no volume mounted"))
		return
	}
	v := s.volume
	s.loop.spawn(func() func() {
		n, err := v.CountFiles(v.MountPoint())
		return func() {
			if err == nil && populate {
				logger.Infof("loaded %d files from %s", n, s.stateDir)
			}
			done(err)
		}
	})
}

// ErrNoLoop is reported by Upload and Download on a Storage opened with
// OpenStorage, which has no event loop; call Import and Export directly.
var ErrNoLoop = errors.New("storage has no event loop")

// Upload imports the configured host files into dir in the background.
func (s *Storage) Upload(dir string) {
	if s.loop == nil {
		logger.Errorf("upload %s: %v", dir, ErrNoLoop)
		return
	}
	files := s.imports
	s.loop.spawn(func() func() {
		written, err := s.Import(dir, files)
		return func() {
			if err != nil {
				logger.Errorf("upload: %v", err)
				return
			}
			logger.Infof("uploaded %d files to %s", len(written), dir)
		}
	})
}

// Download exports p into the export directory in the background.
func (s *Storage) Download(p string) {
	if s.loop == nil {
		logger.Errorf("download %s: %v", p, ErrNoLoop)
		return
	}
	s.loop.spawn(func() func() {
		out, err := s.Export(p, s.exportDir)
		return func() {
			if err != nil {
				logger.Errorf("download: %v", err)
				return
			}
			logger.Infof("downloaded %s to %s", p, out)
		}
	})
}

// Import copies host files into dir. Archives ending in .tar.gz or .tgz are
// unpacked instead of copied.
func (s *Storage) Import(dir string, hostFiles []string) ([]string, error) {
	if s.volume == nil {
		return nil, fmt.Errorf("import: no volume mounted")
	}
	var written []string
	for _, f := range hostFiles {
		if isArchive(f) {
			r, err := os.Open(f)
			if err != nil {
				return written, fmt.Errorf("opening %s: %w", f, err)
			}
			result, err := s.volume.Extract(r, dir)
			r.Close()
			if err != nil {
				return written, fmt.Errorf("extracting %s: %w", f, err)
			}
			for _, w := range result.Warnings {
				logger.Warnf("%s: %s", f, w)
			}
			written = append(written, result.Paths...)
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			return written, fmt.Errorf("reading %s: %w", f, err)
		}
		target, err := s.volume.Import(dir, filepath.Base(f), data)
		if err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// Export copies a guest file into hostDir, or writes a directory as
// <name>.tar.gz. It returns the host path written.
func (s *Storage) Export(guest, hostDir string) (string, error) {
	if s.volume == nil {
		return "", fmt.Errorf("export: no volume mounted")
	}
	info, err := s.volume.Stat(guest)
	if err != nil {
		return "", fmt.Errorf("accessing %s: %w", guest, err)
	}
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", hostDir, err)
	}

	name := path.Base(path.Clean(guest))
	if name == "/" {
		name = "root"
	}

	if !info.IsDir() {
		data, err := s.volume.ReadFile(guest)
		if err != nil {
			return "", err
		}
		out := filepath.Join(hostDir, name)
		if err := os.WriteFile(out, data, 0644); err != nil {
			return "", fmt.Errorf("writing %s: %w", out, err)
		}
		return out, nil
	}

	out := filepath.Join(hostDir, name+".tar.gz")
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", out, err)
	}
	result, err := s.volume.Archive(f, guest)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return "", err
	}
	for _, w := range result.Warnings {
		logger.Warnf("%s: %s", guest, w)
	}
	return out, nil
}

func isArchive(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")
}
