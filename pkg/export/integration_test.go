package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rokon-556/recipe-gen/pkg/download"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/save"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationExporter(t *testing.T, attempts int) (*Exporter, string) {
	t.Helper()
	policy := download.DefaultPolicy()
	policy.MaxAttempts = attempts
	policy.AttemptTimeout = 2 * time.Second
	fetcher, err := download.NewManager(policy, "", download.WithSleeper(func(time.Duration) {}))
	require.NoError(t, err)

	dir := t.TempDir()
	saver, err := save.NewDirSaver(dir)
	require.NoError(t, err)
	return New(fetcher, saver, Options{}), dir
}

func TestIntegration_ExportAllToDirectory(t *testing.T) {
	img := pngImage(t, 2, 2)
	var brokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	})
	mux.HandleFunc("/broken.png", func(w http.ResponseWriter, _ *http.Request) {
		brokenCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	e, dir := newIntegrationExporter(t, 3)
	res, err := e.ExportAll(context.Background(), Request{
		CollectionName: "Mango Pickle",
		BrandName:      "Acme",
		Items: []ImageReference{
			{SourceLocator: server.URL + "/ok.png", SequencePosition: 1},
			{SourceLocator: server.URL + "/broken.png", SequencePosition: 2},
			{SourceLocator: server.URL + "/ok.png", SequencePosition: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), brokenCalls.Load())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].SequencePosition)

	path := filepath.Join(dir, "Mango-Pickle-recipe-images.zip")
	assert.Equal(t, path, res.Location)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := zipEntries(t, data)
	assert.Equal(t, []string{"step-1-Acme.jpg", "step-3-Acme.jpg"}, keys(entries))
	assert.Equal(t, img, entries["step-3-Acme.jpg"])
}

func TestIntegration_ExportOneServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e, dir := newIntegrationExporter(t, 3)
	_, err := e.ExportOne(context.Background(), ImageReference{SourceLocator: server.URL, SequencePosition: 1}, "Acme", "Soup")
	require.Error(t, err)
	assert.ErrorIs(t, err, errutils.ErrExport)

	var fe *errutils.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Attempts)
	assert.Equal(t, int32(3), calls.Load())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIntegration_BatchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	e, _ := newIntegrationExporter(t, 1)
	e.Options.BatchTimeout = 50 * time.Millisecond

	start := time.Now()
	_, err := e.ExportAll(context.Background(), Request{
		CollectionName: "Soup",
		Items:          []ImageReference{{SourceLocator: server.URL, SequencePosition: 1}},
	})
	assert.ErrorIs(t, err, errutils.ErrAllFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestIntegration_BatchTimeoutSavesFastImages(t *testing.T) {
	img := pngImage(t, 2, 2)
	mux := http.NewServeMux()
	mux.HandleFunc("/fast", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	e, dir := newIntegrationExporter(t, 1)
	e.Options.BatchTimeout = 300 * time.Millisecond

	res, err := e.ExportAll(context.Background(), Request{
		CollectionName: "Soup",
		BrandName:      "Acme",
		Items: []ImageReference{
			{SourceLocator: server.URL + "/fast", SequencePosition: 1},
			{SourceLocator: server.URL + "/slow", SequencePosition: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].SequencePosition)
	assert.Contains(t, res.Failures[0].Reason, "deadline")

	data, err := os.ReadFile(filepath.Join(dir, "Soup-recipe-images.zip"))
	require.NoError(t, err)
	assert.Equal(t, []string{"step-1-Acme.jpg"}, keys(zipEntries(t, data)))
}

func TestIntegration_SlashedBrandName(t *testing.T) {
	img := pngImage(t, 1, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(img)
	}))
	defer server.Close()

	e, dir := newIntegrationExporter(t, 1)
	res, err := e.ExportAll(context.Background(), Request{
		CollectionName: "Salt/Pepper Soup",
		BrandName:      "Salt/Pepper Co",
		Items: []ImageReference{
			{SourceLocator: server.URL + "/1.png", SequencePosition: 1},
			{SourceLocator: server.URL + "/2.png", SequencePosition: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Salt-Pepper-Soup-recipe-images.zip"), res.Location)

	data, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	assert.Equal(t, []string{"step-1-Salt-Pepper-Co.jpg", "step-2-Salt-Pepper-Co.jpg"}, keys(zipEntries(t, data)))
}
