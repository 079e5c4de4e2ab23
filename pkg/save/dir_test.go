package save

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirSaver(t *testing.T) {
	_, err := NewDirSaver("  ")
	assert.ErrorIs(t, err, errutils.ErrValidation)

	s, err := NewDirSaver("/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", s.Dir())
}

func TestDirSaver_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s, err := NewDirSaver(dir)
	require.NoError(t, err)

	loc, err := s.Save(context.Background(), Blob{Name: "Pad-Thai-recipe-images.zip", ContentType: "application/zip", Data: []byte("zip")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Pad-Thai-recipe-images.zip"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))

	// Saving again replaces the file.
	_, err = s.Save(context.Background(), Blob{Name: "Pad-Thai-recipe-images.zip", Data: []byte("zip2")})
	require.NoError(t, err)
	data, err = os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "zip2", string(data))
}

func TestDirSaver_InvalidNames(t *testing.T) {
	s, err := NewDirSaver(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../escape.jpg", `a\b.jpg`, "sub/dir.jpg"} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(context.Background(), Blob{Name: name, Data: []byte("x")})
			assert.ErrorIs(t, err, errutils.ErrValidation)
		})
	}
}

func TestDirSaver_WaitsForLock(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDirSaver(dir)
	require.NoError(t, err)

	held := flock.New(filepath.Join(dir, LockFileName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = s.Save(ctx, Blob{Name: "a.jpg", Data: []byte("x")})
	assert.ErrorIs(t, err, errutils.ErrSaveLocked)
	assert.NoFileExists(t, filepath.Join(dir, "a.jpg"))

	require.NoError(t, held.Unlock())
	_, err = s.Save(context.Background(), Blob{Name: "a.jpg", Data: []byte("x")})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestDirSaver_ConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDirSaver(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := s.Save(context.Background(), Blob{Name: name, Data: []byte(name)})
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, name, string(data))
	}
}
