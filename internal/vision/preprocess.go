package vision

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hyperjump/civicroute/internal/models"
)

// Per-channel RGB normalisation applied to every backend input.
var (
	Mean = [3]float32{0.485, 0.456, 0.406}
	Std  = [3]float32{0.229, 0.224, 0.225}
)

// MaxPixels bounds the declared width x height of an input image. Larger
// images are rejected before their pixel buffer is allocated.
const MaxPixels = 40_000_000

// Preprocess decodes an encoded image, resizes it to size x size with
// bilinear interpolation over the 2x2 nearest source pixels and returns the
// normalised pixels in CHW order. Alpha is discarded.
func Preprocess(data []byte, size int) ([]float32, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, models.WrapError(models.ErrInvalidImage, "decode image", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, models.NewError(models.ErrInvalidImage, "decode image", "empty image")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, models.NewError(models.ErrInvalidImage, "decode image",
			"%dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.WrapError(models.ErrInvalidImage, "decode image", err)
	}
	src := img.Bounds()
	if src.Empty() {
		return nil, models.NewError(models.ErrInvalidImage, "decode image", "empty image")
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			off := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := float32(dst.Pix[off+c]) / 255
				out[c*plane+y*size+x] = (v - Mean[c]) / Std[c]
			}
		}
	}
	return out, nil
}
