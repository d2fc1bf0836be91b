package imagecodec

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"
)

type JPEGEncoder struct{}

func NewJPEGEncoder() *JPEGEncoder {
	return &JPEGEncoder{}
}

func (e *JPEGEncoder) MIMEType() string { return "image/jpeg" }

func (e *JPEGEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024)

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: percent(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// percent maps a [0,1] quality onto the 1-100 scale the stdlib and libwebp use.
func percent(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
