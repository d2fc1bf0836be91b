package mocks

import (
	"bytes"
	"image"
	"image/draw"
	"io"

	"portalimg/internal/core/ports"
)

// MockCodec decodes any input to a blank image of DecodeWidth x DecodeHeight
// and renders onto a real RGBA surface. Override the func fields per test.
type MockCodec struct {
	DecodeFunc  func(r io.Reader) (image.Image, error)
	RenderFunc  func(src image.Image, width, height int) (draw.Image, error)
	EncoderFunc func(mimeType string) (ports.Encoder, error)

	DecodeWidth  int
	DecodeHeight int
	Enc          *MockEncoder
}

func NewMockCodec(width, height int) *MockCodec {
	m := &MockCodec{
		DecodeWidth:  width,
		DecodeHeight: height,
		Enc:          NewMockEncoder("image/webp"),
	}
	m.DecodeFunc = func(r io.Reader) (image.Image, error) {
		if _, err := io.Copy(io.Discard, r); err != nil {
			return nil, err
		}
		return image.NewGray(image.Rect(0, 0, m.DecodeWidth, m.DecodeHeight)), nil
	}
	m.RenderFunc = func(src image.Image, width, height int) (draw.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, width, height)), nil
	}
	m.EncoderFunc = func(mimeType string) (ports.Encoder, error) {
		m.Enc.Type = mimeType
		return m.Enc, nil
	}
	return m
}

func (m *MockCodec) Decode(r io.Reader) (image.Image, error) {
	return m.DecodeFunc(r)
}

func (m *MockCodec) Render(src image.Image, width, height int) (draw.Image, error) {
	return m.RenderFunc(src, width, height)
}

func (m *MockCodec) Encoder(mimeType string) (ports.Encoder, error) {
	return m.EncoderFunc(mimeType)
}

// MockEncoder produces SizeAt(quality) bytes and records every quality it was asked for.
type MockEncoder struct {
	Type       string
	SizeAt     func(quality float64) int
	EncodeFunc func(img image.Image, quality float64) ([]byte, error)
	Qualities  []float64
}

func NewMockEncoder(mimeType string) *MockEncoder {
	return &MockEncoder{
		Type: mimeType,
		SizeAt: func(quality float64) int {
			return int(quality * 1000)
		},
	}
}

func (m *MockEncoder) MIMEType() string {
	return m.Type
}

func (m *MockEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	m.Qualities = append(m.Qualities, quality)
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, quality)
	}
	return bytes.Repeat([]byte{0xAB}, m.SizeAt(quality)), nil
}
