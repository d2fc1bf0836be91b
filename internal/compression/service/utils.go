package service

import (
	"math"
	"path"
	"strings"

	"portalimg/internal/core/domain"
)

// qualityEpsilon absorbs the drift of repeatedly subtracting 0.1.
const qualityEpsilon = 1e-9

// targetDimensions caps the longer side at maxSide and keeps the aspect ratio.
// Images already within the cap are returned unchanged.
func targetDimensions(width, height, maxSide int) (int, int) {
	if width <= maxSide && height <= maxSide {
		return width, height
	}

	if width >= height {
		return maxSide, scaleSide(height, maxSide, width)
	}
	return scaleSide(width, maxSide, height), maxSide
}

func scaleSide(shorter, maxSide, longer int) int {
	side := int(math.Round(float64(shorter) * float64(maxSide) / float64(longer)))
	if side < 1 {
		return 1
	}
	return side
}

func canStepDown(quality float64) bool {
	return quality-domain.QualityStep >= domain.MinQuality-qualityEpsilon
}

func roundQuality(quality float64) float64 {
	return math.Round(quality*100) / 100
}

// outputName swaps the extension of name for the subtype of mimeType.
func outputName(name, mimeType string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return base + "." + extensionFor(mimeType)
}

func extensionFor(mimeType string) string {
	if i := strings.IndexByte(mimeType, '/'); i >= 0 {
		return mimeType[i+1:]
	}
	return mimeType
}
