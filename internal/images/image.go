package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PlaceholderSize is the edge length of the blank image returned when no
// real image is available.
const PlaceholderSize = 64

// Channels is the number of color channels carried by an Image.
const Channels = 3

// ErrInvalidImage is returned when pixel data does not match the declared size.
var ErrInvalidImage = errors.New("invalid image")

// supportedExtensions are the file extensions treated as images, lowercased.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

// Image is an RGB image with float32 intensities in [0,1], stored row-major
// as height x width x channel.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

// Blank returns a fully zeroed square image.
func Blank(size int) Image {
	return Image{
		Width:  size,
		Height: size,
		Pix:    make([]float32, size*size*Channels),
	}
}

// IsSupported reports whether the filename carries a recognized image extension.
func IsSupported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Validate checks that the pixel buffer matches the image dimensions.
func (img Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height*Channels {
		return fmt.Errorf("%w: expected %d values, got %d", ErrInvalidImage, img.Width*img.Height*Channels, len(img.Pix))
	}
	return nil
}

// At returns the normalized RGB triple at x, y.
func (img Image) At(x, y int) (r, g, b float32) {
	i := (y*img.Width + x) * Channels
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// Load decodes an image file and normalizes it to RGB in [0,1].
func Load(path string) (Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	decoded, format, err := image.Decode(file)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}

	img := FromImage(decoded)
	if err := img.Validate(); err != nil {
		return Image{}, fmt.Errorf("failed to convert %s image: %w", format, err)
	}
	return img, nil
}

// FromImage converts any decoded image to a normalized RGB Image. Alpha is
// discarded and the stored color values are kept as they are.
func FromImage(src image.Image) Image {
	bounds := src.Bounds()
	img := Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	img.Pix = make([]float32, img.Width*img.Height*Channels)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			img.Pix[i] = float32(c.R) / 255
			img.Pix[i+1] = float32(c.G) / 255
			img.Pix[i+2] = float32(c.B) / 255
			i += Channels
		}
	}
	return img
}

// ToRGBA scales the intensities back to 8 bits, clipping to [0,255].
func (img Image) ToRGBA() (*image.RGBA, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.At(x, y)
			out.SetRGBA(x, y, color.RGBA{R: clip(r), G: clip(g), B: clip(b), A: 255})
		}
	}
	return out, nil
}

// EncodePNG returns the image as a PNG byte stream.
func (img Image) EncodePNG() ([]byte, error) {
	rgba, err := img.ToRGBA()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64PNG returns the PNG byte stream encoded as standard base64.
func (img Image) EncodeBase64PNG() (string, error) {
	data, err := img.EncodePNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBase64 decodes a base64 encoded image file of any supported format.
func DecodeBase64(data string) (Image, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(decoded), nil
}

func clip(v float32) uint8 {
	scaled := v * 255
	switch {
	case scaled != scaled, scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	default:
		return uint8(scaled)
	}
}
