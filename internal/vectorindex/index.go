// Package vectorindex is the process-wide nearest-neighbour index over destination vectors.
//
// Readers load the current snapshot through an atomic pointer and never lock.
// Build prepares a complete snapshot and swaps it in with a single store, so a
// concurrent Search sees either the old or the new index.
package vectorindex

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxLists      = 100
	kmeansIters   = 10
	probeFraction = 10
)

// Hit - результат поиска: id места и схожесть 0..100
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type snapshot struct {
	ids     []string
	vectors [][]float32
	ivf     *invertedFile
}

type Index struct {
	current        atomic.Pointer[snapshot]
	writeMu        sync.Mutex
	dim            int
	exactThreshold int
	logger         *zap.Logger
}

func New(dim, exactThreshold int, logger *zap.Logger) *Index {
	return &Index{
		dim:            dim,
		exactThreshold: exactThreshold,
		logger:         logger,
	}
}

func (ix *Index) Dim() int {
	return ix.dim
}

// Ready - индекс построен хотя бы раз
func (ix *Index) Ready() bool {
	return ix.current.Load() != nil
}

func (ix *Index) Size() int {
	s := ix.current.Load()
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Build заменяет индекс целиком. Векторы копируются, вызывающий может переиспользовать срезы.
func (ix *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return errors.ErrInvalidRequest.WithMessage("ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return errors.ErrDimensionMismatch.WithMessage("vector %s has dimension %d, expected %d", ids[i], len(v), ix.dim)
		}
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	snap := &snapshot{
		ids:     append([]string(nil), ids...),
		vectors: make([][]float32, len(vectors)),
	}
	for i, v := range vectors {
		snap.vectors[i] = append([]float32(nil), v...)
	}

	if len(ids) >= ix.exactThreshold {
		nlist := int(math.Floor(math.Sqrt(float64(len(ids)))))
		if nlist > maxLists {
			nlist = maxLists
		}
		if nlist < 1 {
			nlist = 1
		}
		snap.ivf = buildInvertedFile(snap.vectors, nlist)
	}

	ix.current.Store(snap)
	ix.logger.Info("Vector index rebuilt",
		zap.Int("vectors", len(ids)),
		zap.Bool("approximate", snap.ivf != nil))
	return nil
}

// Reset сбрасывает индекс (shutdown)
func (ix *Index) Reset() {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	ix.current.Store(nil)
}

// Search возвращает до k ближайших по убыванию схожести.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	snap := ix.current.Load()
	if snap == nil {
		return nil, errors.ErrIndexNotBuilt
	}
	if len(query) != ix.dim {
		return nil, errors.ErrDimensionMismatch.WithMessage("query has dimension %d, expected %d", len(query), ix.dim)
	}
	if k <= 0 || len(snap.ids) == 0 {
		return []Hit{}, nil
	}

	var candidates []int
	if snap.ivf != nil {
		candidates = snap.ivf.candidates(query, k)
	} else {
		candidates = make([]int, len(snap.ids))
		for i := range candidates {
			candidates[i] = i
		}
	}

	hits := make([]Hit, 0, len(candidates))
	for _, i := range candidates {
		d := domain.L2Distance(query, snap.vectors[i])
		hits = append(hits, Hit{ID: snap.ids[i], Score: domain.SimilarityScore(d)})
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}
