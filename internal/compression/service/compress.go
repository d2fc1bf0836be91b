package service

import (
	"bytes"
	"fmt"
	"io"

	"portalimg/internal/core/domain"
)

func (s *CompressionService) Compress(file domain.File, opts domain.CompressionOptions) (*domain.CompressionResult, error) {
	opts = opts.WithDefaults()
	maxBytes := opts.MaxSizeBytes()

	if float64(file.Size()) <= maxBytes {
		return &domain.CompressionResult{
			File:           file,
			OriginalSize:   file.Size(),
			CompressedSize: file.Size(),
			WasCompressed:  false,
		}, nil
	}

	data, err := readFile(file)
	if err != nil {
		return nil, err
	}

	img, err := s.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, file.Name(), err)
	}

	bounds := img.Bounds()
	width, height := targetDimensions(bounds.Dx(), bounds.Dy(), opts.MaxWidthOrHeight)

	surface, err := s.codec.Render(img, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d: %v", ErrContext, width, height, err)
	}
	if surface == nil {
		return nil, fmt.Errorf("%w: %dx%d", ErrContext, width, height)
	}

	encoder, err := s.codec.Encoder(opts.FileType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	var encoded []byte
	quality := opts.Quality
	for {
		encoded, err = encoder.Encode(surface, quality)
		if err != nil {
			return nil, fmt.Errorf("%w: %s at quality %.1f: %v", ErrEncode, opts.FileType, quality, err)
		}
		if len(encoded) == 0 {
			return nil, fmt.Errorf("%w: %s at quality %.1f produced no output", ErrEncode, opts.FileType, quality)
		}

		if float64(len(encoded)) <= maxBytes || !canStepDown(quality) {
			break
		}
		quality -= domain.QualityStep
	}

	return &domain.CompressionResult{
		File:           domain.NewSourceImage(outputName(file.Name(), opts.FileType), opts.FileType, encoded),
		OriginalSize:   file.Size(),
		CompressedSize: int64(len(encoded)),
		WasCompressed:  true,
		Quality:        roundQuality(quality),
		Width:          width,
		Height:         height,
	}, nil
}

// readFile drains the file into memory so the decoder never holds an open handle.
func readFile(file domain.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, file.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, file.Name(), err)
	}
	return data, nil
}
