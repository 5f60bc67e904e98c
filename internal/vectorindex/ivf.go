package vectorindex

import (
	"sort"

	"github.com/trip-planner/internal/domain"
)

// invertedFile - k-means разбиение на nlist ячеек
type invertedFile struct {
	centroids [][]float32
	lists     [][]int
	nprobe    int
}

func buildInvertedFile(vectors [][]float32, nlist int) *invertedFile {
	n := len(vectors)
	dim := len(vectors[0])

	// детерминированная инициализация: равномерно по входу
	centroids := make([][]float32, nlist)
	for c := 0; c < nlist; c++ {
		centroids[c] = append([]float32(nil), vectors[c*n/nlist]...)
	}

	assign := make([]int, n)
	for iter := 0; iter < kmeansIters; iter++ {
		changed := false
		for i, v := range vectors {
			if best := nearestCentroid(centroids, v); best != assign[i] {
				assign[i] = best
				changed = true
			}
		}

		sums := make([][]float64, nlist)
		counts := make([]int, nlist)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range vectors {
			c := assign[i]
			counts[c]++
			for j, x := range v {
				sums[c][j] += float64(x)
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = float32(sums[c][j] / float64(counts[c]))
			}
		}
		if !changed && iter > 0 {
			break
		}
	}

	lists := make([][]int, nlist)
	for i, v := range vectors {
		c := nearestCentroid(centroids, v)
		lists[c] = append(lists[c], i)
	}

	nprobe := nlist / probeFraction
	if nprobe < 1 {
		nprobe = 1
	}
	return &invertedFile{centroids: centroids, lists: lists, nprobe: nprobe}
}

func nearestCentroid(centroids [][]float32, v []float32) int {
	best, bestDist := 0, -1.0
	for c, centroid := range centroids {
		d := domain.L2Distance(v, centroid)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// candidates обходит ближайшие ячейки, пока не наберёт хотя бы k кандидатов
// и не просмотрит nprobe ячеек.
func (f *invertedFile) candidates(query []float32, k int) []int {
	type cell struct {
		id   int
		dist float64
	}
	cells := make([]cell, len(f.centroids))
	for c, centroid := range f.centroids {
		cells[c] = cell{id: c, dist: domain.L2Distance(query, centroid)}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].dist < cells[j].dist })

	var out []int
	for probed, c := range cells {
		if probed >= f.nprobe && len(out) >= k {
			break
		}
		out = append(out, f.lists[c.id]...)
	}
	return out
}
