package vision

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperjump/civicroute/internal/models"
)

type linearHead struct {
	Weight [][]float32 `json:"weight"`
	Bias   []float32   `json:"bias"`
}

func (h linearHead) check(name string, rows, features int) error {
	if len(h.Weight) != rows || len(h.Bias) != rows {
		return fmt.Errorf("%s head: got %d weight rows and %d biases, want %d", name, len(h.Weight), len(h.Bias), rows)
	}
	for i, row := range h.Weight {
		if len(row) != features {
			return fmt.Errorf("%s head: row %d has %d weights, want %d", name, i, len(row), features)
		}
	}
	return nil
}

func (h linearHead) apply(features []float32) []float32 {
	out := make([]float32, len(h.Bias))
	for r, row := range h.Weight {
		sum := h.Bias[r]
		for f, w := range row {
			sum += w * features[f]
		}
		out[r] = sum
	}
	return out
}

type linearWeights struct {
	Grid     int        `json:"grid"`
	Category linearHead `json:"category"`
	Severity linearHead `json:"severity"`
}

// LinearBackend average-pools each channel over a grid x grid layout and
// feeds the 3*grid*grid features to two linear heads.
type LinearBackend struct {
	grid     int
	size     int
	category linearHead
	severity linearHead
}

func newLinearBackend(weightsPath string, numClasses, size int) (*LinearBackend, error) {
	data, err := os.ReadFile(weightsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	var w linearWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse weights: %w", err)
	}
	if w.Grid < 1 || w.Grid > size {
		return nil, fmt.Errorf("grid %d out of range for image size %d", w.Grid, size)
	}
	features := 3 * w.Grid * w.Grid
	if err := w.Category.check("category", numClasses, features); err != nil {
		return nil, err
	}
	if err := w.Severity.check("severity", len(models.SeverityLevels), features); err != nil {
		return nil, err
	}
	return &LinearBackend{grid: w.Grid, size: size, category: w.Category, severity: w.Severity}, nil
}

// Forward implements Backend.
func (b *LinearBackend) Forward(pixels []float32) ([]float32, []float32, error) {
	if len(pixels) != 3*b.size*b.size {
		return nil, nil, fmt.Errorf("pooled_linear: got %d pixels, want %d", len(pixels), 3*b.size*b.size)
	}
	features := b.pool(pixels)
	return b.category.apply(features), b.severity.apply(features), nil
}

// pool returns features ordered channel, grid row, grid column.
func (b *LinearBackend) pool(pixels []float32) []float32 {
	plane := b.size * b.size
	cells := b.grid * b.grid
	features := make([]float32, 3*cells)
	for c := 0; c < 3; c++ {
		for gy := 0; gy < b.grid; gy++ {
			y0, y1 := gy*b.size/b.grid, (gy+1)*b.size/b.grid
			for gx := 0; gx < b.grid; gx++ {
				x0, x1 := gx*b.size/b.grid, (gx+1)*b.size/b.grid
				var sum float64
				for y := y0; y < y1; y++ {
					row := pixels[c*plane+y*b.size:]
					for x := x0; x < x1; x++ {
						sum += float64(row[x])
					}
				}
				features[c*cells+gy*b.grid+gx] = float32(sum / float64((y1-y0)*(x1-x0)))
			}
		}
	}
	return features
}

// Close is a no-op.
func (b *LinearBackend) Close() error { return nil }
