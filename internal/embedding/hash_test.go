package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/civicroute/internal/vector"
	"github.com/hyperjump/civicroute/pkg/utils"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "Potholes are repaired by the roads department.")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "Potholes are repaired by the roads department.")
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should produce the same embedding")
		}
	}
	if s := vector.CosineSimilarity(a, b); math.Abs(s-1) > 1e-6 {
		t.Errorf("self similarity = %f, want 1", s)
	}
}

func TestHashEmbedder_UnitNorm(t *testing.T) {
	e := NewHashEmbedder(32)
	for _, text := range []string{"", "pothole", "garbage overflow near the market", "¡Árbol caído!"} {
		v, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		if n := utils.L2Norm(v); math.Abs(n-1) > 1e-5 {
			t.Errorf("norm(%q) = %f, want 1", text, n)
		}
	}
}

func TestHashEmbedder_SharedWordsScoreHigher(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "water leak")
	near, _ := e.Embed(ctx, "report a water leak in the pipeline")
	far, _ := e.Embed(ctx, "streetlight maintenance schedule")
	if vector.CosineSimilarity(q, near) <= vector.CosineSimilarity(q, far) {
		t.Error("text sharing words with the query should score higher")
	}
}

func TestHashEmbedder_DefaultDimensions(t *testing.T) {
	if d := NewHashEmbedder(0).Dimensions(); d != 384 {
		t.Errorf("default dimensions = %d, want 384", d)
	}
}

func TestNew(t *testing.T) {
	e, err := New(Options{Provider: ProviderHash, Dimensions: 16})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
	if _, err := New(Options{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
