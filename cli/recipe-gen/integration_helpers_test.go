//go:build integration

package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// startImageServer serves a valid PNG under /ok/* and 404 for everything else.
func startImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ok/") {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeTempConfig writes a config with fast, single-attempt fetches that saves into outDir.
func writeTempConfig(t *testing.T, dir, outDir string, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := `config_version: "1.0"
fetch:
  max_attempts: 1
  attempt_timeout: 2s
  backoff_unit: 1ms
storage:
  type: dir
  dir: ` + outDir + `
log_level: error
output_format: text
` + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger.SetTestOutput(&bytes.Buffer{})
	t.Cleanup(logger.UnsetTestOutput)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
