//go:build js && wasm

package main

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"syscall/js"

	"github.com/lite-xl/webshell/internal/bridge"
	"github.com/lite-xl/webshell/internal/logger"
	"github.com/lite-xl/webshell/internal/vfs"
)

// fsStorage is the Emscripten filesystem with an IDBFS mount.
type fsStorage struct {
	module js.Value
}

func (s *fsStorage) fs() js.Value {
	return s.module.Get("FS")
}

func (s *fsStorage) MkdirAll(p string) error {
	return jsCall(func() {
		s.fs().Call("mkdirTree", p)
	})
}

func (s *fsStorage) Mount(p string, opts bridge.MountOptions) error {
	fs := s.fs()
	idbfs := fs.Get("filesystems").Get("IDBFS")
	if idbfs.IsUndefined() {
		return errors.New("IDBFS is not linked into the program (build with -lidbfs.js)")
	}
	return jsCall(func() {
		fs.Call("mount", idbfs, map[string]any{"autoPersist": opts.AutoPersist}, p)
	})
}

func (s *fsStorage) Sync(populate bool, done func(error)) {
	cb := once(func(args []js.Value) {
		var err error
		if len(args) > 0 && args[0].Truthy() {
			err = errors.New(jsErrorMessage(args[0]))
		}
		done(err)
	})
	if err := jsCall(func() { s.fs().Call("syncfs", populate, cb) }); err != nil {
		cb.Release()
		done(err)
	}
}

// Upload lets the user pick files and writes them into dir.
func (s *fsStorage) Upload(dir string) {
	doc := js.Global().Get("document")
	input := doc.Call("createElement", "input")
	input.Set("type", "file")
	input.Set("multiple", true)

	input.Call("addEventListener", "change", once(func([]js.Value) {
		files := input.Get("files")
		for i := 0; i < files.Length(); i++ {
			s.uploadFile(dir, files.Index(i))
		}
	}))
	input.Call("click")
}

func (s *fsStorage) uploadFile(dir string, file js.Value) {
	name := file.Get("name").String()
	var onError js.Func
	onLoad := once(func(args []js.Value) {
		onError.Release()
		data := bytesFromJS(js.Global().Get("Uint8Array").New(args[0]))
		target := path.Join(dir, path.Base(name))
		err := jsCall(func() {
			s.fs().Call("mkdirTree", dir)
			s.fs().Call("writeFile", target, bytesToJS(data))
		})
		if err != nil {
			logger.Errorf("upload %s: %v", name, err)
			return
		}
		logger.Infof("uploaded %s (%d bytes)", target, len(data))
	})
	onError = once(func(args []js.Value) {
		onLoad.Release()
		logger.Errorf("upload %s: %s", name, jsErrorMessage(args[0]))
	})
	file.Call("arrayBuffer").Call("then", onLoad, onError)
}

// Download saves a file, or a directory as a .tar.gz, through the browser.
func (s *fsStorage) Download(p string) {
	name := path.Base(path.Clean(p))
	data, isDir, err := s.read(p)
	if err != nil {
		logger.Errorf("download %s: %v", p, err)
		return
	}
	if isDir {
		name += ".tar.gz"
	}
	saveBlob(name, data)
}

// read returns the contents of a file, or a directory as a tar.gz.
func (s *fsStorage) read(p string) (data []byte, isDir bool, err error) {
	err = jsCall(func() {
		fs := s.fs()
		isDir = fs.Call("isDir", fs.Call("stat", p).Get("mode")).Bool()
		if !isDir {
			data = bytesFromJS(fs.Call("readFile", p))
		}
	})
	if err != nil || !isDir {
		return data, isDir, err
	}
	data, err = s.archive(p)
	return data, true, err
}

// archive snapshots a directory of the Emscripten filesystem into memory and
// returns it as a tar.gz.
func (s *fsStorage) archive(dir string) ([]byte, error) {
	vol, err := vfs.NewMemory(dir)
	if err != nil {
		return nil, err
	}
	if err := s.copyTree(vol, dir); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	result, err := vol.Archive(&buf, dir)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		logger.Warnf("%s", w)
	}
	return buf.Bytes(), nil
}

func (s *fsStorage) copyTree(vol *vfs.Volume, dir string) error {
	var entries js.Value
	if err := jsCall(func() { entries = s.fs().Call("readdir", dir) }); err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for i := 0; i < entries.Length(); i++ {
		name := entries.Index(i).String()
		if name == "." || name == ".." {
			continue
		}
		p := path.Join(dir, name)

		var isDir, isFile bool
		var data []byte
		err := jsCall(func() {
			fs := s.fs()
			mode := fs.Call("lstat", p).Get("mode")
			isDir = fs.Call("isDir", mode).Bool()
			isFile = fs.Call("isFile", mode).Bool()
			if isFile {
				data = bytesFromJS(fs.Call("readFile", p))
			}
		})
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		switch {
		case isDir:
			if err := vol.MkdirAll(p); err != nil {
				return err
			}
			if err := s.copyTree(vol, p); err != nil {
				return err
			}
		case isFile:
			if err := vol.WriteFile(p, data); err != nil {
				return err
			}
		default:
			logger.Warnf("skipping %s: not a regular file", p)
		}
	}
	return nil
}

// saveBlob offers data to the user as a file download.
const revokeDelayMS = 1000

func saveBlob(name string, data []byte) {
	global := js.Global()
	blob := global.Get("Blob").New([]any{bytesToJS(data)})
	url := global.Get("URL").Call("createObjectURL", blob)

	a := global.Get("document").Call("createElement", "a")
	a.Set("href", url)
	a.Set("download", name)
	a.Call("click")

	// revoking right after click cancels the download in some browsers
	revoke := once(func([]js.Value) {
		global.Get("URL").Call("revokeObjectURL", url)
	})
	setTimeout(revoke, revokeDelayMS)
}
