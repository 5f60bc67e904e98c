package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// FakeProvider возвращает псевдослучайный вектор, зависящий только от текста и seed.
type FakeProvider struct {
	Dim  int
	Seed int64
}

func NewFakeProvider(dim int, seed int64) *FakeProvider {
	return &FakeProvider{Dim: dim, Seed: seed}
}

func (f *FakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) ^ f.Seed))
	v := make([]float32, f.Dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v, nil
}
