// Package webp encodes lossy WebP through libwebp. It needs cgo and libwebp-dev.
package webp

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const MIMEType = "image/webp"

type Encoder struct {
	preset encoder.EncodingPreset
}

func NewEncoder() *Encoder {
	return &Encoder{preset: encoder.PresetPhoto}
}

func (e *Encoder) MIMEType() string { return MIMEType }

func (e *Encoder) Encode(img image.Image, quality float64) ([]byte, error) {
	q := float32(math.Max(0, math.Min(100, math.Round(quality*100))))

	options, err := encoder.NewLossyEncoderOptions(e.preset, q)
	if err != nil {
		return nil, fmt.Errorf("failed to build webp options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
