package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// ProcessedImage holds the resized photo and its thumbnail.
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
}

type Config struct {
	MaxWidth    int
	MaxHeight   int
	ThumbWidth  int
	ThumbHeight int
	Quality     int // JPEG quality 1-100
}

func DefaultConfig() Config {
	return Config{
		MaxWidth:    1920,
		MaxHeight:   1080,
		ThumbWidth:  480,
		ThumbHeight: 320,
		Quality:     85,
	}
}

type Processor struct {
	config Config
}

func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process downsizes an oversized photo and produces a center-cropped
// thumbnail for listing views.
func (p *Processor) Process(data []byte) (*ProcessedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := img
	bounds := img.Bounds()
	if bounds.Dx() > p.config.MaxWidth || bounds.Dy() > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	original, err := p.encode(resized, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}

	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)
	thumbnail, err := p.encode(thumb, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &ProcessedImage{
		Original:    original,
		Thumbnail:   thumbnail,
		ContentType: mimeFromFormat(format),
	}, nil
}

func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func mimeFromFormat(format string) string {
	if format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}
