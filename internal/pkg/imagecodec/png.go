package imagecodec

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder is lossless; quality only picks the compression level.
type PNGEncoder struct{}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{}
}

func (e *PNGEncoder) MIMEType() string { return "image/png" }

func (e *PNGEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	level := png.DefaultCompression
	if quality < 0.7 {
		level = png.BestCompression
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
