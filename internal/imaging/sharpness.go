package imaging

import (
	"bytes"
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/pkg/models"
)

const (
	// DefaultBlurThreshold is the Laplacian variance at or below which a photo is flagged
	DefaultBlurThreshold = 100.0

	// MaxSharpnessPixels is the largest photo, by header pixel count, that is
	// decoded for the sharpness advisory
	MaxSharpnessPixels = 40_000_000

	// sharpnessMaxSide caps the working copy so large camera frames stay cheap
	sharpnessMaxSide = 512
)

// SharpnessChecker measures focus. The result is advice shown to the user;
// bark texture photographs that are out of focus identify poorly.
type SharpnessChecker struct {
	threshold float64
}

// NewSharpnessChecker uses DefaultBlurThreshold when threshold <= 0
func NewSharpnessChecker(threshold float64) *SharpnessChecker {
	if threshold <= 0 {
		threshold = DefaultBlurThreshold
	}
	return &SharpnessChecker{threshold: threshold}
}

// Check decodes the photo and computes the Laplacian variance of a gray copy.
// Photos whose header reports more than MaxSharpnessPixels are not decoded
// and give nil advice.
func (c *SharpnessChecker) Check(data []byte) (*models.SharpnessAdvice, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidImageError("cannot decode image", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSharpnessPixels {
		return nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidImageError("cannot decode image", err)
	}

	variance := LaplacianVariance(toGray(img, sharpnessMaxSide))
	advice := models.SharpnessAdvice{
		LaplacianVariance: variance,
		Blurry:            variance <= c.threshold,
	}
	if advice.Blurry {
		advice.Message = "Image looks blurry. Hold the camera steady and focus on the bark."
	}
	return &advice, nil
}

// toGray scales img so its longest side is at most maxSide and converts to gray
func toGray(img image.Image, maxSide int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if longest := max(w, h); longest > maxSide {
		w = w * maxSide / longest
		h = h * maxSide / longest
	}
	gray := image.NewGray(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)
	return gray
}

// LaplacianVariance applies the 4-neighbour Laplacian kernel and returns the
// sample variance of the response. Images too small for two responses give 0.
func LaplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return 0
	}
	responses := make([]float64, 0, (b.Dx()-2)*(b.Dy()-2))

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			v := int(gray.GrayAt(x, y-1).Y) + int(gray.GrayAt(x, y+1).Y) +
				int(gray.GrayAt(x-1, y).Y) + int(gray.GrayAt(x+1, y).Y) -
				4*int(gray.GrayAt(x, y).Y)
			responses = append(responses, float64(v))
		}
	}

	if len(responses) < 2 {
		return 0
	}
	return stat.Variance(responses, nil)
}
