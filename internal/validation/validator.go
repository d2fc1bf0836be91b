// Package validation decides whether a file may enter the compression and
// upload pipeline. It never reads file contents.
package validation

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"portalimg/internal/core/domain"
)

// AllowedTypes is the upload allow-list, in display order.
var AllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"image/avif",
}

// CJK Unified Ideographs as accepted by the storage backend's name filter.
const (
	cjkFirst = '\u4e00'
	cjkLast  = '\u9fa5'
)

func Validate(file domain.File) domain.ValidationResult {
	if !IsAllowedType(file.Type()) {
		return domain.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("unsupported file type %q: allowed types are %s", file.Type(), strings.Join(AllowedTypes, ", ")),
		}
	}

	if ContainsCJK(file.Name()) {
		return domain.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("file name %q must not contain Chinese characters", file.Name()),
		}
	}

	return domain.ValidationResult{Valid: true}
}

func IsAllowedType(mimeType string) bool {
	for _, allowed := range AllowedTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

func ContainsCJK(name string) bool {
	for _, r := range name {
		if r >= cjkFirst && r <= cjkLast {
			return true
		}
	}
	return false
}

// DetectType sniffs the MIME type of a file header. Parameters such as
// charset are dropped.
func DetectType(head []byte) string {
	mtype := mimetype.Detect(head).String()
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		mtype = mtype[:i]
	}
	return mtype
}
