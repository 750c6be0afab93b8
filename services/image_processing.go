package services

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MaxImageEdge is the longest side sent to the provider.
const MaxImageEdge = 1536

func imagingFormat(mimeType string) (imaging.Format, bool) {
	switch mimeType {
	case "image/png":
		return imaging.PNG, true
	case "image/jpeg", "image/jpg":
		return imaging.JPEG, true
	case "image/gif":
		return imaging.GIF, true
	default:
		return 0, false
	}
}

// NormalizeImage downsizes images whose longest edge exceeds maxEdge, keeping the
// original format. Formats imaging cannot decode are returned untouched.
func NormalizeImage(photo DataURI, maxEdge int) DataURI {
	format, ok := imagingFormat(photo.MIMEType)
	if !ok {
		return photo
	}
	img, err := imaging.Decode(bytes.NewReader(photo.Data), imaging.AutoOrientation(true))
	if err != nil {
		return photo
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxEdge && bounds.Dy() <= maxEdge {
		return photo
	}
	resized := imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(90)); err != nil {
		return photo
	}
	return DataURI{MIMEType: photo.MIMEType, Data: buf.Bytes()}
}

// WhitenBackgroundFeathered pushes bright pixels outside the protected centre
// towards pure white. Pixels with luminance between the two thresholds are blended
// so the garment edge stays soft. The result is always PNG.
func WhitenBackgroundFeathered(imageBytes []byte, lowerThreshold, upperThreshold uint8, centralProtectionRatio float64) ([]byte, error) {
	if lowerThreshold >= upperThreshold {
		return nil, fmt.Errorf("lowerThreshold must be less than upperThreshold")
	}
	if centralProtectionRatio < 0.0 || centralProtectionRatio > 1.0 {
		return nil, fmt.Errorf("centralProtectionRatio must be between 0.0 and 1.0")
	}

	src, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img := imaging.Clone(src)
	width, height := img.Rect.Dx(), img.Rect.Dy()

	protected := image.Rect(0, 0, int(float64(width)*centralProtectionRatio), int(float64(height)*centralProtectionRatio))
	protected = protected.Add(image.Pt((width-protected.Dx())/2, (height-protected.Dy())/2))

	transitionRange := float64(upperThreshold - lowerThreshold)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if image.Pt(x, y).In(protected) {
				continue
			}
			i := img.PixOffset(x, y)
			pixel := img.Pix[i : i+3 : i+3]
			luminance := 0.299*float64(pixel[0]) + 0.587*float64(pixel[1]) + 0.114*float64(pixel[2])
			switch {
			case luminance <= float64(lowerThreshold):
			case luminance >= float64(upperThreshold):
				pixel[0], pixel[1], pixel[2] = 255, 255, 255
			default:
				blend := (luminance - float64(lowerThreshold)) / transitionRange
				for c := range pixel {
					pixel[c] = uint8(math.Round(float64(pixel[c])*(1.0-blend) + 255.0*blend))
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image to png: %w", err)
	}
	return buf.Bytes(), nil
}
