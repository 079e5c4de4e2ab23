package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/mholt/archives"
)

// Entry describes one file stored in an archive.
type Entry struct {
	Path string
	Size int64
}

// List returns the regular files of the archive at archivePath, sorted by path.
func List(ctx context.Context, archivePath string) ([]Entry, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	var entries []Entry
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", p, err)
		}
		entries = append(entries, Entry{Path: p, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk archive: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// ReadFile returns the content of one entry of the archive at archivePath.
func ReadFile(ctx context.Context, archivePath, entryPath string) ([]byte, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	data, err := fs.ReadFile(fsys, entryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", entryPath, err)
	}
	return data, nil
}
