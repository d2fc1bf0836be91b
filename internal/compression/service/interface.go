package service

import (
	"errors"

	"portalimg/internal/core/domain"
	"portalimg/internal/core/ports"
)

var (
	ErrRead    = errors.New("failed to read image file")
	ErrDecode  = errors.New("failed to decode image")
	ErrContext = errors.New("failed to obtain drawing surface")
	ErrEncode  = errors.New("failed to encode image")
)

type Service interface {
	Compress(file domain.File, opts domain.CompressionOptions) (*domain.CompressionResult, error)
}

var _ ports.Compressor = (*CompressionService)(nil)

type CompressionService struct {
	codec ports.Codec
}

func NewService(codec ports.Codec) Service {
	return &CompressionService{
		codec: codec,
	}
}
