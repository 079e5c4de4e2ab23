package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = content
	}
	return out
}

func TestBuilder_Finalize(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add("Acme_Image_2.jpg", []byte("second")))
	require.NoError(t, b.Add("Acme_Image_1.jpg", []byte("first")))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"Acme_Image_1.jpg", "Acme_Image_2.jpg"}, b.Names())

	data, err := b.Finalize(context.Background())
	require.NoError(t, err)

	entries := readZip(t, data)
	assert.Equal(t, map[string][]byte{
		"Acme_Image_1.jpg": []byte("first"),
		"Acme_Image_2.jpg": []byte("second"),
	}, entries)
}

func TestBuilder_FolderPrefix(t *testing.T) {
	b := NewBuilder("/Pad_Thai/")
	require.NoError(t, b.Add("Acme_Image_1.jpg", []byte("x")))
	assert.Equal(t, []string{"Pad_Thai/Acme_Image_1.jpg"}, b.Names())

	data, err := b.Finalize(context.Background())
	require.NoError(t, err)
	entries := readZip(t, data)
	assert.Contains(t, entries, "Pad_Thai/Acme_Image_1.jpg")
}

func TestBuilder_DuplicateNameOverwrites(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add("a.jpg", []byte("old")))
	require.NoError(t, b.Add("a.jpg", []byte("new")))
	assert.Equal(t, 1, b.Len())

	data, err := b.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), readZip(t, data)["a.jpg"])
}

func TestBuilder_InvalidName(t *testing.T) {
	b := NewBuilder("")
	for _, name := range []string{"", "dir/a.jpg"} {
		err := b.Add(name, []byte("x"))
		assert.ErrorIs(t, err, errutils.ErrValidation, name)
	}
	assert.Zero(t, b.Len())
}

func TestBuilder_FinalizeOnce(t *testing.T) {
	b := NewBuilder("")
	require.NoError(t, b.Add("a.jpg", []byte("x")))

	_, err := b.Finalize(context.Background())
	require.NoError(t, err)

	_, err = b.Finalize(context.Background())
	assert.ErrorIs(t, err, errutils.ErrArchiveFinalized)
	assert.ErrorIs(t, b.Add("b.jpg", []byte("y")), errutils.ErrArchiveFinalized)
}

func TestBuilder_ConcurrentAdd(t *testing.T) {
	b := NewBuilder("")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, b.Add(fmt.Sprintf("img_%02d.jpg", i), []byte{byte(i)}))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, b.Len())

	data, err := b.Finalize(context.Background())
	require.NoError(t, err)
	entries := readZip(t, data)
	assert.Len(t, entries, 50)
	assert.Equal(t, []byte{7}, entries["img_07.jpg"])
}

func TestListAndReadFile(t *testing.T) {
	b := NewBuilder("Soup")
	require.NoError(t, b.Add("b.jpg", []byte("bbb")))
	require.NoError(t, b.Add("a.jpg", []byte("a")))
	data, err := b.Finalize(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Soup-recipe-images.zip")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	entries, err := List(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Path: "Soup/a.jpg", Size: 1},
		{Path: "Soup/b.jpg", Size: 3},
	}, entries)

	content, err := ReadFile(context.Background(), path, "Soup/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("bbb"), content)

	_, err = ReadFile(context.Background(), path, "Soup/missing.jpg")
	assert.Error(t, err)
}

func TestList_MissingFile(t *testing.T) {
	_, err := List(context.Background(), filepath.Join(t.TempDir(), "nope.zip"))
	assert.Error(t, err)
}
