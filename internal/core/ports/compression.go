// portalimg/internal/core/ports/compression.go
package ports

import (
	"image"
	"image/draw"
	"io"

	"portalimg/internal/core/domain"
)

type Compressor interface {
	Compress(file domain.File, opts domain.CompressionOptions) (*domain.CompressionResult, error)
}

// Codec is the decode/render/encode capability the compressor runs on.
type Codec interface {
	Decode(r io.Reader) (image.Image, error)
	// Render draws src scaled into a new surface of the given size.
	Render(src image.Image, width, height int) (draw.Image, error)
	Encoder(mimeType string) (Encoder, error)
}

type Encoder interface {
	MIMEType() string
	// Encode returns the encoded bytes at quality in [0,1].
	Encode(img image.Image, quality float64) ([]byte, error)
}
