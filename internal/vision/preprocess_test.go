package vision

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/hyperjump/civicroute/internal/models"
)

func TestPreprocess_Normalisation(t *testing.T) {
	const size = 6
	px, err := Preprocess(pngBytes(t, solidImage(15, 9, color.RGBA{R: 255, G: 128, A: 255})), size)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if len(px) != 3*size*size {
		t.Fatalf("len = %d, want %d", len(px), 3*size*size)
	}
	raw := [3]float32{255, 128, 0}
	plane := size * size
	for c := 0; c < 3; c++ {
		want := (raw[c]/255 - Mean[c]) / Std[c]
		for i := 0; i < plane; i++ {
			// one 8-bit step of slack for resampling rounding
			if got := px[c*plane+i]; math.Abs(float64(got-want)) > 1.0/255/0.224+1e-4 {
				t.Fatalf("channel %d pixel %d = %v, want %v", c, i, got, want)
			}
		}
	}
}

func TestPreprocess_CHWLayout(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{A: 255})
	px, err := Preprocess(pngBytes(t, img), 2)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	hi := func(c int) float32 { return (1 - Mean[c]) / Std[c] }
	lo := func(c int) float32 { return -Mean[c] / Std[c] }
	want := []float32{
		hi(0), lo(0), lo(0), lo(0),
		lo(1), hi(1), lo(1), lo(1),
		lo(2), lo(2), hi(2), lo(2),
	}
	for i := range want {
		if math.Abs(float64(px[i]-want[i])) > 1e-5 {
			t.Errorf("px[%d] = %v, want %v", i, px[i], want[i])
		}
	}
}

func TestPreprocess_Formats(t *testing.T) {
	img := solidImage(5, 5, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { b.Write(pngBytes(t, img)); return nil },
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, img, nil) },
		"gif":  func(b *bytes.Buffer) error { return gif.Encode(b, img, nil) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, img) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, img, nil) },
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			px, err := Preprocess(buf.Bytes(), 4)
			if err != nil {
				t.Fatalf("Preprocess() error = %v", err)
			}
			if len(px) != 48 {
				t.Errorf("len = %d, want 48", len(px))
			}
		})
	}
}

func TestPreprocess_Invalid(t *testing.T) {
	_, err := Preprocess([]byte{0x89, 'P', 'N', 'G', 0, 0}, 4)
	if !errors.Is(err, models.ErrInvalidImage) {
		t.Errorf("Preprocess() error = %v, want ErrInvalidImage", err)
	}
}

// pngHeader returns a PNG signature followed by a lone IHDR chunk declaring
// an 8-bit grayscale image of the given size.
func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, width)
	chunk = binary.BigEndian.AppendUint32(chunk, height)
	chunk = append(chunk, 8, 0, 0, 0, 0)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(chunk)-4))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestPreprocess_PixelLimit(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantMsg       string
	}{
		{"square over limit", 16000, 16000, "exceeds"},
		{"one row over limit", MaxPixels + 1, 1, "exceeds"},
		{"at limit decodes body", MaxPixels, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Preprocess(pngHeader(tt.width, tt.height), 4)
			if !errors.Is(err, models.ErrInvalidImage) {
				t.Fatalf("Preprocess() error = %v, want ErrInvalidImage", err)
			}
			if got := strings.Contains(err.Error(), "exceeds"); got != (tt.wantMsg != "") {
				t.Errorf("Preprocess() error = %q, pixel limit hit = %v", err, got)
			}
		})
	}
}

func TestPreprocess_DownscaleSamplesNearestNeighbours(t *testing.T) {
	// 8 -> 2 samples source columns 1,2 and 5,6; the white columns around
	// them must not bleed in.
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.RGBA{A: 255}
			if x == 0 || x == 3 || x == 4 || x == 7 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	px, err := Preprocess(pngBytes(t, img), 2)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	for i, got := range px {
		c := i / 4
		if want := -Mean[c] / Std[c]; math.Abs(float64(got-want)) > 1e-5 {
			t.Errorf("px[%d] = %v, want %v", i, got, want)
		}
	}
}
