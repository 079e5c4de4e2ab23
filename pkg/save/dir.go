package save

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/fsutil"
	"github.com/gofrs/flock"
)

// LockFileName is created inside the output directory while a save is in progress.
const LockFileName = ".recipe-gen.lock"

const lockRetryDelay = 50 * time.Millisecond

// DirSaver writes blobs into a local directory. Writes are atomic and
// serialized across processes through a lock file in the directory.
type DirSaver struct {
	dir string
}

// NewDirSaver creates a saver rooted at dir. The directory is created on first save.
func NewDirSaver(dir string) (*DirSaver, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errutils.NewValidationError("storage.dir", "output directory cannot be empty")
	}
	return &DirSaver{dir: dir}, nil
}

// Dir returns the output directory.
func (s *DirSaver) Dir() string {
	return s.dir
}

// Save writes blob.Data to <dir>/<blob.Name> and returns the file path.
func (s *DirSaver) Save(ctx context.Context, blob Blob) (string, error) {
	if err := validateName(blob.Name); err != nil {
		return "", err
	}
	if err := fsutil.EnsureDir(s.dir); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory %s: %w", errutils.ErrSaveFailed, s.dir, err)
	}

	lock := flock.New(filepath.Join(s.dir, LockFileName))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errutils.ErrSaveLocked, err)
	}
	if !ok {
		return "", errutils.ErrSaveLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("Failed to release output lock", logger.Fields{"dir": s.dir, "error": err.Error()})
		}
	}()

	target := filepath.Join(s.dir, blob.Name)
	if err := fsutil.WriteFileAtomic(target, blob.Data, fsutil.FileModeDefault); err != nil {
		return "", fmt.Errorf("%w: %w", errutils.ErrSaveFailed, err)
	}

	logger.Debug("Saved file", logger.Fields{"path": target, "bytes": len(blob.Data)})
	return target, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errutils.NewValidationError("name", fmt.Sprintf("invalid file name %q", name))
	}
	return nil
}

var _ Saver = (*DirSaver)(nil)
