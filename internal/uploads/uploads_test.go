package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveKeepsExtension(t *testing.T) {
	d := Dir{Root: filepath.Join(t.TempDir(), "up"), PublicURL: "http://localhost:5000/"}

	url, err := d.Save("photo.JPG", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	name := strings.TrimPrefix(url, "http://localhost:5000/uploads/")
	path, ok := d.Path(name)
	require.True(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestSaveRejectsNonImages(t *testing.T) {
	d := Dir{Root: t.TempDir()}
	_, err := d.Save("notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveEnforcesLimit(t *testing.T) {
	d := Dir{Root: t.TempDir(), MaxBytes: 4}
	_, err := d.Save("a.png", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, _ := os.ReadDir(d.Root)
	assert.Empty(t, entries, "partial uploads are removed")

	_, err = d.Save("a.png", strings.NewReader("1234"))
	assert.NoError(t, err)
}

func TestPathRejectsTraversal(t *testing.T) {
	d := Dir{Root: "/srv/uploads"}
	for _, name := range []string{"", "../etc/passwd", "a/b.png", ".hidden"} {
		_, ok := d.Path(name)
		assert.False(t, ok, name)
	}
	p, ok := d.Path("x.png")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/srv/uploads", "x.png"), p)
}
