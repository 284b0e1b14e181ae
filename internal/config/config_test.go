package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Setenv("EASEL_API_URL", "")
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", c.APIURL)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.True(t, filepath.IsAbs(c.Database.DSN))
	assert.True(t, c.Confirmations)
	assert.Equal(t, int64(10<<20), c.MaxUploadBytes())
}

func TestLoadFileOverridesAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
api_url = "https://canvas.example.com/"
save_directory = "~/drawings"
max_upload_mb = 2
confirmations = false

[database]
driver = "postgres"
dsn = "postgres://u:p@localhost/easel"

[cache]
redis_addr = "localhost:6379"
ttl_minutes = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("EASEL_API_URL", "")
	c, err := LoadFile(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "https://canvas.example.com", c.APIURL)
	assert.Equal(t, filepath.Join(home, "drawings"), c.SaveDirectory)
	assert.Equal(t, int64(2<<20), c.MaxUploadBytes())
	assert.False(t, c.Confirmations)
	assert.Equal(t, "postgres://u:p@localhost/easel", c.Database.DSN)
	assert.Equal(t, "localhost:6379", c.Cache.RedisAddr)
	assert.Equal(t, "5m0s", c.Cache.TTL().String())

	t.Setenv("EASEL_API_URL", "http://other:8080")
	c, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://other:8080", c.APIURL)
}

func TestLoadFileInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_url = ["), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadReadsConfigDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EASEL_CONFIG_DIR", dir)
	t.Setenv("EASEL_API_URL", "")
	assert.Equal(t, filepath.Join(dir, "config.toml"), getConfigFilePath())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`api_url = "http://board:9000"`), 0o644))
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://board:9000", c.APIURL)
}

func TestGetSavePath(t *testing.T) {
	c := &Config{}
	assert.Equal(t, "a.pdf", c.GetSavePath("a.pdf"))

	c.SaveDirectory = filepath.Join(t.TempDir(), "out")
	p := c.GetSavePath("a.pdf")
	assert.Equal(t, filepath.Join(c.SaveDirectory, "a.pdf"), p)
	assert.DirExists(t, c.SaveDirectory)
}
