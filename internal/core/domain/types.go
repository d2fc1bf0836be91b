// portalimg/internal/core/domain/types.go
package domain

import (
	"bytes"
	"io"
	"time"
)

const (
	// BytesPerMB is a binary megabyte. Size budgets are always expressed in MiB.
	BytesPerMB = 1024 * 1024

	DefaultMaxSizeMB        = 1.0
	DefaultMaxWidthOrHeight = 1080
	DefaultQuality          = 0.8
	DefaultFileType         = "image/webp"

	MinQuality  = 0.5
	QualityStep = 0.1
)

// File is a named, typed blob the way an upload form hands it over.
type File interface {
	Name() string
	Type() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// SourceImage is an in-memory File. The buffer is never modified after construction.
type SourceImage struct {
	name     string
	mimeType string
	data     []byte
}

func NewSourceImage(name, mimeType string, data []byte) *SourceImage {
	return &SourceImage{
		name:     name,
		mimeType: mimeType,
		data:     data,
	}
}

func (s *SourceImage) Name() string { return s.name }
func (s *SourceImage) Type() string { return s.mimeType }
func (s *SourceImage) Size() int64  { return int64(len(s.data)) }

func (s *SourceImage) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// Bytes returns the underlying buffer. Callers must not modify it.
func (s *SourceImage) Bytes() []byte {
	return s.data
}

// CompressionOptions configures a single Compress call. Zero values mean "unset".
type CompressionOptions struct {
	MaxSizeMB        float64 `mapstructure:"max_size_mb"`
	MaxWidthOrHeight int     `mapstructure:"max_width_or_height"`
	Quality          float64 `mapstructure:"quality"`
	FileType         string  `mapstructure:"file_type"`
}

// WithDefaults returns a copy with every unset field replaced by its default.
func (o CompressionOptions) WithDefaults() CompressionOptions {
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = DefaultMaxSizeMB
	}
	if o.MaxWidthOrHeight <= 0 {
		o.MaxWidthOrHeight = DefaultMaxWidthOrHeight
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.FileType == "" {
		o.FileType = DefaultFileType
	}
	return o
}

// MaxSizeBytes is the byte budget implied by MaxSizeMB.
func (o CompressionOptions) MaxSizeBytes() float64 {
	return o.MaxSizeMB * BytesPerMB
}

type CompressionResult struct {
	File           File
	OriginalSize   int64
	CompressedSize int64
	WasCompressed  bool

	// Set only when WasCompressed is true.
	Quality float64
	Width   int
	Height  int
}

type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Category is the portal section an image belongs to. It doubles as the
// storage folder.
type Category string

const (
	CategoryKnowledge     Category = "knowledge"
	CategoryMenu          Category = "menu"
	CategoryPromotions    Category = "promotions"
	CategoryAnnouncements Category = "announcements"
	CategoryBlacklist     Category = "blacklist"
	CategoryWarnings      Category = "warnings"
	CategoryGeneral       Category = "general"
)

var Categories = []Category{
	CategoryKnowledge,
	CategoryMenu,
	CategoryPromotions,
	CategoryAnnouncements,
	CategoryBlacklist,
	CategoryWarnings,
	CategoryGeneral,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Workstation identifies the machine an upload came from.
type Workstation struct {
	DeviceID     string            `json:"device_id"`
	HardwareHash string            `json:"hardware_hash"`
	Platform     string            `json:"platform"`
	Fingerprint  map[string]string `json:"fingerprint,omitempty"`
}

type UploadMetadata struct {
	OriginalName   string      `json:"original_name"`
	OriginalSize   int64       `json:"original_size"`
	CompressedSize int64       `json:"compressed_size"`
	WasCompressed  bool        `json:"was_compressed"`
	Quality        float64     `json:"quality,omitempty"`
	Width          int         `json:"width,omitempty"`
	Height         int         `json:"height,omitempty"`
	UploadedFrom   Workstation `json:"uploaded_from"`
	UploadedAt     time.Time   `json:"uploaded_at"`
}
