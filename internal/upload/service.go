// Package upload runs the validate, compress and store pipeline for portal images.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"portalimg/internal/core/domain"
	"portalimg/internal/core/ports"
	"portalimg/internal/pkg/sizefmt"
	"portalimg/internal/storage"
	"portalimg/internal/validation"
)

var ErrInvalidFile = errors.New("invalid file")

// WorkstationProvider reports the machine uploads are attributed to.
type WorkstationProvider interface {
	Workstation() (domain.Workstation, error)
}

type Options struct {
	Compression domain.CompressionOptions
	// Workers bounds UploadAll concurrency. Values < 1 mean one worker.
	Workers int
}

type Service struct {
	compressor ports.Compressor
	store      storage.Store
	device     WorkstationProvider
	logger     *slog.Logger
	opts       Options

	once        sync.Once
	workstation domain.Workstation
}

// Result describes one stored image.
type Result struct {
	Metadata       storage.ImageMetadata
	OriginalSize   string
	CompressedSize string
}

// Failure is a file UploadAll could not process.
type Failure struct {
	Name string
	Err  error
}

type BatchResult struct {
	Uploaded []*Result
	Failed   []Failure
}

func NewService(compressor ports.Compressor, store storage.Store, device WorkstationProvider, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{
		compressor: compressor,
		store:      store,
		device:     device,
		logger:     logger,
		opts:       opts,
	}
}

// Upload validates file, compresses it to the configured budget and stores it
// under category.
func (s *Service) Upload(ctx context.Context, file domain.File, category domain.Category) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := s.logger.With("file", file.Name(), "category", category)

	verdict := validation.Validate(file)
	if !verdict.Valid {
		log.Warn("rejected file", "reason", verdict.Error)
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, verdict.Error)
	}

	start := time.Now()
	compressed, err := s.compressor.Compress(file, s.opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", file.Name(), err)
	}
	log.Debug("compressed",
		"original", compressed.OriginalSize,
		"compressed", compressed.CompressedSize,
		"was_compressed", compressed.WasCompressed,
		"quality", compressed.Quality,
		"elapsed", time.Since(start))

	body, err := compressed.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed %s: %w", file.Name(), err)
	}
	defer body.Close()

	meta := storage.ImageMetadata{
		FileName:    compressed.File.Name(),
		ContentType: compressed.File.Type(),
		Category:    category,
		Upload: domain.UploadMetadata{
			OriginalName:   file.Name(),
			OriginalSize:   compressed.OriginalSize,
			CompressedSize: compressed.CompressedSize,
			WasCompressed:  compressed.WasCompressed,
			Quality:        compressed.Quality,
			Width:          compressed.Width,
			Height:         compressed.Height,
			UploadedFrom:   s.currentWorkstation(),
			UploadedAt:     time.Now().UTC(),
		},
	}

	stored, err := s.store.StoreImage(ctx, body, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", file.Name(), err)
	}

	log.Info("uploaded", "id", stored.ID, "key", stored.ObjectKey, "size", stored.Size)

	return &Result{
		Metadata:       stored,
		OriginalSize:   sizefmt.FormatFileSize(compressed.OriginalSize),
		CompressedSize: sizefmt.FormatFileSize(compressed.CompressedSize),
	}, nil
}

// UploadAll uploads files concurrently. A failing file does not stop the
// batch; only context cancellation does. Results keep the input order.
func (s *Service) UploadAll(ctx context.Context, files []domain.File, category domain.Category) (*BatchResult, error) {
	results := make([]*Result, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			res, err := s.Upload(gctx, file, category)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Error("upload failed", "file", file.Name(), "error", err)
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch upload interrupted: %w", err)
	}

	batch := &BatchResult{}
	for i, file := range files {
		if errs[i] != nil {
			batch.Failed = append(batch.Failed, Failure{Name: file.Name(), Err: errs[i]})
			continue
		}
		batch.Uploaded = append(batch.Uploaded, results[i])
	}
	return batch, nil
}

// Compress runs the compressor without storing, for local previews.
func (s *Service) Compress(file domain.File) (*domain.CompressionResult, error) {
	verdict := validation.Validate(file)
	if !verdict.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, verdict.Error)
	}
	return s.compressor.Compress(file, s.opts.Compression)
}

// currentWorkstation is resolved once per service. Uploads still go through
// when the fingerprint is unavailable.
func (s *Service) currentWorkstation() domain.Workstation {
	s.once.Do(func() {
		if s.device == nil {
			return
		}
		ws, err := s.device.Workstation()
		if err != nil {
			s.logger.Warn("workstation fingerprint unavailable", "error", err)
			return
		}
		s.workstation = ws
	})
	return s.workstation
}

