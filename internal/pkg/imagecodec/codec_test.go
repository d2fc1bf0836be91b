package imagecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalimg/internal/compression/service"
	"portalimg/internal/core/domain"
)

func gradient(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func TestCodec_DecodeFormats(t *testing.T) {
	src := gradient(64, 48)

	var pngBuf, gifBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, gif.Encode(&gifBuf, src, nil))

	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", encodeJPEG(t, src, 90)},
		{"png", pngBuf.Bytes()},
		{"gif", gifBuf.Bytes()},
	}

	codec := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := codec.Decode(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, 64, img.Bounds().Dx())
			assert.Equal(t, 48, img.Bounds().Dy())
		})
	}
}

func TestCodec_DecodeGarbage(t *testing.T) {
	_, err := New().Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

// gifHeader is a bare GIF screen descriptor declaring width x height with no
// pixel data behind it.
func gifHeader(width, height uint16) []byte {
	return []byte{
		'G', 'I', 'F', '8', '9', 'a',
		byte(width), byte(width >> 8),
		byte(height), byte(height >> 8),
		0, 0, 0,
	}
}

func TestCodec_DecodeRejectsHugeDimensions(t *testing.T) {
	_, err := New().Decode(bytes.NewReader(gifHeader(65535, 65535)))
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestCompress_HugeDimensionsIsDecodeError(t *testing.T) {
	file := domain.NewSourceImage("bomb.gif", "image/gif", gifHeader(30000, 30000))
	svc := service.NewService(New())

	_, err := svc.Compress(file, domain.CompressionOptions{MaxSizeMB: 0.000001})
	assert.ErrorIs(t, err, service.ErrDecode)
	assert.ErrorContains(t, err, "too large")
}

func TestCodec_Render(t *testing.T) {
	codec := New()
	src := gradient(400, 300)

	surface, err := codec.Render(src, 108, 81)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 108, 81), surface.Bounds())

	same, err := codec.Render(src, 400, 300)
	require.NoError(t, err)
	assert.Equal(t, src.At(10, 10), same.At(10, 10))

	_, err = codec.Render(src, 0, 81)
	assert.ErrorIs(t, err, ErrNoSurface)

	_, err = codec.Render(src, 100000, 100000)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestCodec_Encoder(t *testing.T) {
	codec := New()

	enc, err := codec.Encoder("image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", enc.MIMEType())

	enc, err = codec.Encoder("IMAGE/PNG")
	require.NoError(t, err)
	assert.Equal(t, "image/png", enc.MIMEType())

	_, err = codec.Encoder("image/avif")
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.ElementsMatch(t, []string{"image/jpeg", "image/png"}, codec.Types())
}

func TestJPEGEncoder_QualityShrinksOutput(t *testing.T) {
	img := gradient(320, 240)
	enc := NewJPEGEncoder()

	high, err := enc.Encode(img, 0.9)
	require.NoError(t, err)
	low, err := enc.Encode(img, 0.5)
	require.NoError(t, err)

	assert.Less(t, len(low), len(high))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 80, percent(0.8))
	assert.Equal(t, 50, percent(0.5000000000000001))
	assert.Equal(t, 1, percent(0))
	assert.Equal(t, 100, percent(1.5))
}

func TestCompress_LargeJPEGEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 4000x3000 encode in short mode")
	}

	data := encodeJPEG(t, gradient(4000, 3000), 95)
	file := domain.NewSourceImage("storefront.jpg", "image/jpeg", data)

	// Budget below the input size so the slow path runs; JPEG keeps this pure Go.
	budgetMB := float64(len(data)) / 2 / domain.BytesPerMB
	svc := service.NewService(New())

	result, err := svc.Compress(file, domain.CompressionOptions{
		MaxSizeMB: budgetMB,
		FileType:  "image/jpeg",
	})
	require.NoError(t, err)

	assert.True(t, result.WasCompressed)
	assert.Equal(t, 1080, result.Width)
	assert.Equal(t, 810, result.Height)
	assert.Equal(t, "storefront.jpeg", result.File.Name())
	assert.Equal(t, "image/jpeg", result.File.Type())
	assert.Equal(t, int64(len(data)), result.OriginalSize)

	out := result.File.(*domain.SourceImage).Bytes()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1080, cfg.Width)
	assert.Equal(t, 810, cfg.Height)

	if float64(result.CompressedSize) > budgetMB*domain.BytesPerMB {
		assert.Equal(t, 0.5, result.Quality, "over-budget output must come from the quality floor")
	}
}
