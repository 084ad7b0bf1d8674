package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Processor downscales and re-encodes chat images before storage.
type Processor struct {
	quality      int // JPEG quality (1-100)
	maxDimension int // longest side in px
}

func NewProcessor(quality, maxDimension int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxDimension <= 0 {
		maxDimension = 1600
	}
	return &Processor{
		quality:      quality,
		maxDimension: maxDimension,
	}
}

// Process decodes the image, downscales it when it exceeds the
// configured dimension, and re-encodes it in its original format.
// Returns the processed bytes and the resulting content type.
func (p *Processor) Process(reader io.Reader) (io.Reader, string, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := p.resize(img)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
		return &buf, "image/jpeg", nil
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return &buf, "image/png", nil
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}
}

// resize scales the image down to fit maxDimension, keeping aspect ratio.
// Images already within bounds are returned unchanged.
func (p *Processor) resize(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= p.maxDimension && height <= p.maxDimension {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = p.maxDimension
		newHeight = height * p.maxDimension / width
	} else {
		newHeight = p.maxDimension
		newWidth = width * p.maxDimension / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
