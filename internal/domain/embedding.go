package domain

import (
	"math"
	"time"
)

// DestinationEmbedding - вектор места с версией модели
type DestinationEmbedding struct {
	DestinationID string    `json:"destination_id"`
	Vector        []float32 `json:"vector"`
	ModelVersion  string    `json:"model_version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func L2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// SimilarityScore переводит L2 расстояние в шкалу 0..100.
func SimilarityScore(distance float64) float64 {
	s := 100 - distance*10
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MeanVector - среднее векторов размерности dim; векторы другой размерности пропускаются.
func MeanVector(vectors [][]float32, dim int) []float32 {
	mean := make([]float64, dim)
	n := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			mean[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]float32, dim)
	for i := range mean {
		out[i] = float32(mean[i] / float64(n))
	}
	return out
}

func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
