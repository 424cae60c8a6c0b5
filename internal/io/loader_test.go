package io

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"document-binarization/internal/core"
)

func gradient(t *testing.T) *core.Image {
	t.Helper()
	img, err := core.NewImage(16, 9)
	require.NoError(t, err)
	for i := range img.Data {
		img.Data[i] = byte(i * 255 / (len(img.Data) - 1))
	}
	return img
}

func TestIsSupported(t *testing.T) {
	for _, path := range []string{"a.png", "dir/b.JPG", "c.tiff", "d.tif", "e.bmp", "f.jpeg"} {
		assert.True(t, IsSupported(path), path)
	}
	for _, path := range []string{"a.gif", "noext", "dir.png/file", "x.webp"} {
		assert.False(t, IsSupported(path), path)
	}
	assert.Len(t, SupportedExtensions(), 6)
}

func TestFromImageConvertsColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(3, 5, 7, 7))
	src.Set(3, 5, color.RGBA{255, 255, 255, 255})
	src.Set(6, 6, color.RGBA{0, 0, 0, 255})
	src.Set(4, 5, color.RGBA{128, 128, 128, 255})

	img := FromImage(src)
	require.NoError(t, img.Validate())
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, byte(255), img.At(0, 0))
	assert.Equal(t, byte(128), img.At(1, 0))
	assert.Equal(t, byte(0), img.At(3, 1))
}

func TestFromImageCopies(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	img := FromImage(g)
	g.Pix[0] = 9
	assert.Equal(t, byte(0), img.Data[0])
}

func TestDecodeRoundTrip(t *testing.T) {
	want := gradient(t)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, ToImage(want)))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestDecodeRegisteredFormats(t *testing.T) {
	src := ToImage(gradient(t))
	encoders := map[string]func(*bytes.Buffer) error{
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, src, &jpeg.Options{Quality: 100}) },
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))
			got, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 16, got.Width)
			assert.Equal(t, 9, got.Height)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	loader := NewLoader(nil)
	want := gradient(t)
	path := filepath.Join(t.TempDir(), "page.png")

	require.NoError(t, loader.Save(path, want))
	require.NoError(t, loader.ValidateImageFile(path))

	got, err := loader.LoadGrayscale(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoaderErrors(t *testing.T) {
	loader := NewLoader(nil)
	dir := t.TempDir()

	_, err := loader.LoadGrayscale(filepath.Join(dir, "page.gif"))
	assert.ErrorContains(t, err, "unsupported image format")

	_, err = loader.LoadGrayscale(filepath.Join(dir, "missing.png"))
	assert.ErrorContains(t, err, "failed to load image")

	assert.Error(t, loader.Save(filepath.Join(dir, "out.png"), &core.Image{Width: 2, Height: 2}))
	assert.Error(t, loader.ValidateImageFile(filepath.Join(dir, "missing.png")))
}
