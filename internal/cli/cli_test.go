package cli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"easel/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// startServer runs the API against a temporary sqlite database and returns
// the path of a config file pointing at it.
func startServer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + ln.Addr().String()

	path := filepath.Join(dir, "config.toml")
	data := fmt.Sprintf(`
api_url = '%s'
public_url = '%s'
save_directory = '%s'
upload_dir = '%s'

[database]
driver = "sqlite"
dsn = '%s'
`, url, url, filepath.Join(dir, "out"), filepath.Join(dir, "uploads"), filepath.Join(dir, "easel.db"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return path
}

func TestCreateListExport(t *testing.T) {
	cfgPath := startServer(t)

	stdout, stderr, err := runCLI(t, "--config", cfgPath, "create", "--width", "200", "--height", "100")
	require.NoError(t, err, string(stderr))
	id := strings.TrimSpace(string(stdout))
	require.NotEmpty(t, id)

	stdout, _, err = runCLI(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, string(stdout), id)
	assert.Contains(t, string(stdout), "Untitled")

	pdfPath := filepath.Join(t.TempDir(), "out.pdf")
	_, stderr, err = runCLI(t, "--config", cfgPath, "export", id, "-o", pdfPath)
	require.NoError(t, err, string(stderr))
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	stdout, stderr, err = runCLI(t, "--config", cfgPath, "export", id, "--png")
	require.NoError(t, err, string(stderr))
	pngPath := strings.TrimSpace(string(stdout))
	assert.Equal(t, id+".png", filepath.Base(pngPath))
	data, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestExportUnknownCanvas(t *testing.T) {
	cfgPath := startServer(t)

	_, stderr, err := runCLI(t, "--config", cfgPath, "export", "missing", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "not found")
}

func TestAPIFlagOverridesConfig(t *testing.T) {
	app := &App{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), APIURL: "http://example.com:9000/"}
	require.NoError(t, app.loadConfig())
	assert.Equal(t, "http://example.com:9000", app.Config.APIURL)
	assert.Equal(t, "sqlite", app.Config.Database.Driver)
}
