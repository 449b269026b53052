package vfs

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

const (
	// MaxFileSize is the largest single file Extract accepts.
	MaxFileSize = 64 << 20
	// MaxTotalSize is the largest total content Extract accepts.
	MaxTotalSize = 512 << 20
)

// ArchiveResult contains the result of an archive operation.
type ArchiveResult struct {
	// Files is the number of regular files written.
	Files int
	// Warnings contains messages about entries that were skipped (symlinks, etc.)
	Warnings []string
}

// Archive writes a tar.gz archive of dir. Entries are named relative to the
// parent of dir, so the archive unpacks into a single folder.
func (v *Volume) Archive(w io.Writer, dir string) (*ArchiveResult, error) {
	result := &ArchiveResult{}
	dir = path.Clean(dir)

	info, err := v.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	gzw := gzip.NewWriter(w)
	tw := tar.NewWriter(gzw)

	parent := path.Dir(dir)
	err = v.walk(dir, func(guest string, info fs.FileInfo) error {
		relPath := strings.TrimPrefix(strings.TrimPrefix(guest, parent), "/")
		if relPath == "" {
			// archiving "/" itself
			return nil
		}

		mode := info.Mode()
		if mode&fs.ModeSymlink != 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping symlink: %s", relPath))
			return nil
		}
		if !mode.IsRegular() && !mode.IsDir() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping %s: %s (only regular files and directories are archived)", describeFileType(mode), relPath))
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("creating header for %s: %w", guest, err)
		}
		header.Name = relPath
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing header for %s: %w", guest, err)
		}
		if !mode.IsRegular() {
			return nil
		}

		data, err := v.ReadFile(guest)
		if err != nil {
			return err
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("copying %s: %w", guest, err)
		}
		result.Files++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return result, nil
}

// describeFileType returns a human-readable description of a file type.
func describeFileType(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeDevice != 0:
		return "device file"
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeCharDevice != 0:
		return "character device"
	case mode&fs.ModeIrregular != 0:
		return "irregular file"
	default:
		return "special file"
	}
}

// ExtractResult contains the result of an extract operation.
type ExtractResult struct {
	// Paths lists the guest paths of the extracted files.
	Paths []string
	// Warnings contains messages about entries that were skipped.
	Warnings []string
}

// ErrEmptyArchive is returned by Extract for an archive without entries.
var ErrEmptyArchive = errors.New("empty archive")

// Extract unpacks a tar.gz archive into dir.
func (v *Volume) Extract(r io.Reader, dir string) (*ExtractResult, error) {
	result := &ExtractResult{}
	dir = path.Clean(dir)

	if err := v.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("creating destination: %w", err)
	}

	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	var entries int
	var totalSize int64

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		entries++

		name := path.Clean(strings.TrimSuffix(header.Name, "/"))
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return nil, fmt.Errorf("invalid path in archive: %s", header.Name)
		}
		target := path.Join(dir, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := v.MkdirAll(target); err != nil {
				return nil, err
			}

		case tar.TypeReg:
			if header.Size > MaxFileSize {
				return nil, fmt.Errorf("file exceeds maximum size of %d bytes", MaxFileSize)
			}
			totalSize += header.Size
			if totalSize > MaxTotalSize {
				return nil, fmt.Errorf("archive exceeds maximum total size of %d bytes", MaxTotalSize)
			}

			data, err := io.ReadAll(io.LimitReader(tr, MaxFileSize+1))
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", header.Name, err)
			}
			if len(data) > MaxFileSize {
				return nil, fmt.Errorf("file exceeds maximum size during extraction")
			}
			if err := v.WriteFile(target, data); err != nil {
				return nil, err
			}
			result.Paths = append(result.Paths, target)

		case tar.TypeSymlink, tar.TypeLink:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping %s in archive: %s", describeTarType(header.Typeflag), header.Name))

		default:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping %s in archive: %s (only regular files and directories are extracted)", describeTarType(header.Typeflag), header.Name))
		}
	}

	if entries == 0 {
		return nil, ErrEmptyArchive
	}
	return result, nil
}

// describeTarType returns a human-readable description of a tar entry type.
func describeTarType(typeflag byte) string {
	switch typeflag {
	case tar.TypeSymlink:
		return "symlink"
	case tar.TypeLink:
		return "hard link"
	case tar.TypeChar:
		return "character device"
	case tar.TypeBlock:
		return "block device"
	case tar.TypeFifo:
		return "named pipe (FIFO)"
	default:
		return "special file"
	}
}
