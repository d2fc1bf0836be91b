package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"portalimg/internal/core/domain"
	"portalimg/internal/validation"
)

// sniffLen matches the header size mimetype inspects by default.
const sniffLen = 3072

// DiskFile is a domain.File backed by a path. Its type is sniffed from content
// because the filesystem carries no declared MIME type.
type DiskFile struct {
	path     string
	name     string
	mimeType string
	size     int64
	maxSize  int64
}

func Open(path string, maxSize int64) (*DiskFile, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	return &DiskFile{
		path:     path,
		name:     filepath.Base(path),
		mimeType: validation.DetectType(head[:n]),
		size:     info.Size(),
		maxSize:  maxSize,
	}, nil
}

func (f *DiskFile) Name() string { return f.name }
func (f *DiskFile) Type() string { return f.mimeType }
func (f *DiskFile) Size() int64  { return f.size }
func (f *DiskFile) Path() string { return f.path }

func (f *DiskFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	capped, err := NewCappedReader(file, f.maxSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &readCloser{Reader: capped, closer: file}, nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readCloser) Close() error {
	return r.closer.Close()
}

// Collect expands directories one level deep and opens every regular file.
func Collect(paths []string, maxSize int64) ([]domain.File, error) {
	var files []domain.File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			f, err := Open(p, maxSize)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			f, err := Open(filepath.Join(p, e.Name()), maxSize)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}
	return files, nil
}
