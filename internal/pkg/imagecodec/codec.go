// portalimg/internal/pkg/imagecodec/codec.go
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"portalimg/internal/core/ports"
)

// MaxSurfacePixels bounds a render target. Larger surfaces are refused the same
// way a browser refuses an oversized canvas.
const MaxSurfacePixels = 64 * 1024 * 1024

// MaxSourcePixels bounds what Decode will expand. Small, highly compressible
// files can declare dimensions that would take gigabytes once decoded.
const MaxSourcePixels = 128 * 1024 * 1024

var (
	ErrNoSurface     = errors.New("no drawing surface available")
	ErrUnsupported   = errors.New("unsupported output type")
	ErrTooManyPixels = errors.New("image dimensions too large")
)

var _ ports.Codec = (*Codec)(nil)

type Codec struct {
	encoders map[string]ports.Encoder
	scaler   draw.Scaler
}

// New returns a codec that can encode to the given formats. JPEG and PNG are
// always available.
func New(encoders ...ports.Encoder) *Codec {
	c := &Codec{
		encoders: make(map[string]ports.Encoder),
		scaler:   draw.CatmullRom,
	}
	c.Register(NewJPEGEncoder())
	c.Register(NewPNGEncoder())
	for _, enc := range encoders {
		c.Register(enc)
	}
	return c
}

func (c *Codec) Register(enc ports.Encoder) {
	c.encoders[strings.ToLower(enc.MIMEType())] = enc
}

func (c *Codec) Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	header, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	if pixels := int64(header.Width) * int64(header.Height); pixels > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrTooManyPixels, format, header.Width, header.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decoded %s image has no pixels", format)
	}
	return img, nil
}

func (c *Codec) Render(src image.Image, width, height int) (draw.Image, error) {
	if width <= 0 || height <= 0 || width*height > MaxSurfacePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoSurface, width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst, nil
	}
	c.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

func (c *Codec) Encoder(mimeType string) (ports.Encoder, error) {
	enc, ok := c.encoders[strings.ToLower(mimeType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
	return enc, nil
}

// Types lists the MIME types this codec can encode to.
func (c *Codec) Types() []string {
	types := make([]string, 0, len(c.encoders))
	for t := range c.encoders {
		types = append(types, t)
	}
	return types
}
