// Package poster decodes uploaded event posters and normalises them to an
// opaque RGB JPEG before they are sent to the model.
package poster

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
)

const (
	// MIMEType is the type of every normalised poster.
	MIMEType    = "image/jpeg"
	jpegQuality = 90

	// MaxPixels bounds the declared canvas of an upload.
	MaxPixels = 40_000_000
)

// Sentinel errors.
var (
	ErrTooLarge      = errors.New("poster exceeds upload limit")
	ErrUnsupported   = errors.New("unsupported poster format; use PNG or JPEG")
	ErrEmpty         = errors.New("poster is empty")
	ErrTooManyPixels = errors.New("poster dimensions exceed pixel limit")
)

// Image is a normalised poster held for one request only.
type Image struct {
	Data   []byte // JPEG bytes
	Hash   string // hex SHA-256 of the uploaded bytes
	Format string // source format reported by the decoder
	Width  int
	Height int
}

// MIMEType returns the encoded type of Data.
func (i *Image) MIMEType() string { return MIMEType }

// Decode reads at most maxBytes from r, decodes PNG/JPEG/GIF and re-encodes
// it as RGB JPEG. Transparent pixels are composited onto white.
func Decode(r io.Reader, maxBytes int64) (*Image, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read poster: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, ErrTooLarge
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode poster header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode poster: %w", err)
	}

	b := src.Bounds()
	rgb := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgb, rgb.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(rgb, rgb.Bounds(), src, b.Min, draw.Over)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode poster: %w", err)
	}

	sum := sha256.Sum256(raw)
	return &Image{
		Data:   out.Bytes(),
		Hash:   hex.EncodeToString(sum[:]),
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
