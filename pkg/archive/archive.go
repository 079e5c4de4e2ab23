// Package archive assembles exported images into a zip archive in memory and
// reads archives back for inspection.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/mholt/archives"
)

// ContentType is the MIME type of a finalized archive.
const ContentType = "application/zip"

// Builder accumulates named entries and is finalized exactly once.
// Add may be called from several goroutines.
type Builder struct {
	mu        sync.Mutex
	folder    string
	entries   map[string][]byte
	modTime   time.Time
	finalized bool
}

// NewBuilder creates an empty builder. A non-empty folder places every entry
// under that directory inside the archive.
func NewBuilder(folder string) *Builder {
	return &Builder{
		folder:  strings.Trim(folder, "/"),
		entries: make(map[string][]byte),
		modTime: time.Now(),
	}
}

// Add stores data under name. Adding an existing name replaces its content.
func (b *Builder) Add(name string, data []byte) error {
	if name == "" || strings.Contains(name, "/") {
		return errutils.NewValidationError("entry name", fmt.Sprintf("invalid archive entry name %q", name))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return errutils.ErrArchiveFinalized
	}
	b.entries[name] = data
	return nil
}

// Len returns the number of distinct entries.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Names returns the archive paths of all entries in sorted order.
func (b *Builder) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedPaths()
}

func (b *Builder) sortedPaths() []string {
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, b.pathOf(name))
	}
	sort.Strings(names)
	return names
}

func (b *Builder) pathOf(name string) string {
	if b.folder == "" {
		return name
	}
	return path.Join(b.folder, name)
}

// Finalize writes all entries into a zip archive and returns its bytes. The
// builder rejects further use afterwards.
func (b *Builder) Finalize(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return nil, errutils.ErrArchiveFinalized
	}
	b.finalized = true

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]archives.FileInfo, 0, len(names))
	for _, name := range names {
		data := b.entries[name]
		info := memFileInfo{name: name, size: int64(len(data)), modTime: b.modTime}
		files = append(files, archives.FileInfo{
			FileInfo:      info,
			NameInArchive: b.pathOf(name),
			Open: func() (fs.File, error) {
				return &memFile{Reader: bytes.NewReader(data), info: info}, nil
			},
		})
	}

	format := archives.Zip{
		Compression:          zip.Deflate,
		SelectiveCompression: true,
	}

	var buf bytes.Buffer
	if err := format.Archive(ctx, &buf, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	b.entries = nil
	return buf.Bytes(), nil
}

type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (fi memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }

type memFile struct {
	*bytes.Reader
	info memFileInfo
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error               { return nil }

var (
	_ fs.File     = (*memFile)(nil)
	_ io.ReaderAt = (*memFile)(nil)
)
