package vision

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// redGarbageWeights sends red-dominant images to "garbage", everything else
// to "pothole", and always predicts high severity.
func redGarbageWeights() linearWeights {
	return linearWeights{
		Grid: 1,
		Category: linearHead{
			Weight: [][]float32{{1, 0, 0}, {-1, 0, 0}},
			Bias:   []float32{0, 0},
		},
		Severity: linearHead{
			Weight: [][]float32{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
			Bias:   []float32{0, 0, 1},
		},
	}
}

// writeCheckpoint writes a manifest and its weights file into dir and returns
// the manifest path.
func writeCheckpoint(t *testing.T, dir, manifest string, weights any) string {
	t.Helper()
	if weights != nil {
		data, err := json.Marshal(weights)
		if err != nil {
			t.Fatalf("marshal weights: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "weights.json"), data, 0o644); err != nil {
			t.Fatalf("write weights: %v", err)
		}
	}
	path := filepath.Join(dir, "checkpoint.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

const twoClassManifest = `backbone: pooled_linear
classes: [garbage, pothole]
weights: weights.json
image_size: 8
`
