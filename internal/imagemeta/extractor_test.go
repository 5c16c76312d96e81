package imagemeta

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 64, G: 128, B: 192, A: 255})
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestExtractReadsDimensionsWithoutFullDecode(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "scene.png", 640, 480)

	attrs, gps, err := Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "scene.png", attrs.FileName)
	assert.Equal(t, 640, attrs.Width)
	assert.Equal(t, 480, attrs.Height)
	assert.Equal(t, "PNG", attrs.Format)
	assert.Greater(t, attrs.FileSize, int64(0))

	// Synthetic PNGs carry no EXIF block; absence is not an error.
	assert.Nil(t, gps)
}

func TestExtractJPEGFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "scene.jpg", 32, 24)

	attrs, _, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "JPEG", attrs.Format)
	assert.Equal(t, 32, attrs.Width)
}

func TestExtractUnreadableImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a jpeg"), 0o644))

	_, _, err := Extract(path)
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestExtractMissingFile(t *testing.T) {
	_, _, err := Extract(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnreadableImage)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("/a/b/photo.JPG"))
	assert.True(t, IsSupported("photo.webp"))
	assert.True(t, IsSupported("photo.tiff"))
	assert.False(t, IsSupported("notes.txt"))
	assert.False(t, IsSupported("archive.jpg.zip"))
}

func TestReadGPSMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0x00, 0x01}, 0o644))

	assert.Nil(t, readGPS(path))
}
