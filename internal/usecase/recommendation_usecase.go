package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
	"github.com/trip-planner/internal/vectorindex"
)

// VectorSearcher - поиск ближайших мест (process-wide индекс)
type VectorSearcher interface {
	Search(query []float32, k int) ([]vectorindex.Hit, error)
}

// RecommendationUseCase смешивает семантическую близость с популярностью в кластере
type RecommendationUseCase struct {
	index       VectorSearcher
	prefRepo    repository.PreferenceRepository
	clusterRepo repository.ClusterRepository
	embRepo     repository.EmbeddingRepository
	dim         int
	simWeight   float64
	popWeight   float64
	logger      *zap.Logger
}

// NewRecommendationUseCase - создание нового RecommendationUseCase
func NewRecommendationUseCase(
	index VectorSearcher,
	prefRepo repository.PreferenceRepository,
	clusterRepo repository.ClusterRepository,
	embRepo repository.EmbeddingRepository,
	dim int,
	simWeight, popWeight float64,
	logger *zap.Logger,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		index:       index,
		prefRepo:    prefRepo,
		clusterRepo: clusterRepo,
		embRepo:     embRepo,
		dim:         dim,
		simWeight:   simWeight,
		popWeight:   popWeight,
		logger:      logger,
	}
}

// RecommendSimilar - k ближайших мест к вектору
func (uc *RecommendationUseCase) RecommendSimilar(ctx context.Context, vec []float32, k int) ([]vectorindex.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return uc.index.Search(vec, k)
}

// ClusterCentroid - среднее эмбеддингов предпочтений участников; nil, если ни у кого нет эмбеддинга
func (uc *RecommendationUseCase) ClusterCentroid(ctx context.Context, cluster *domain.Cluster) ([]float32, error) {
	if len(cluster.MemberIDs) == 0 {
		return nil, nil
	}
	prefs, err := uc.prefRepo.GetByUserIDs(ctx, cluster.MemberIDs)
	if err != nil {
		return nil, err
	}
	vectors := make([][]float32, 0, len(prefs))
	for _, p := range prefs {
		if p.HasEmbedding() {
			vectors = append(vectors, p.Embedding)
		}
	}
	return domain.MeanVector(vectors, uc.dim), nil
}

// ClusterHybrid ранжирует места кластера по w_sim*similarity + w_pop*popularity.
// Пустые веса берутся из конфигурации.
func (uc *RecommendationUseCase) ClusterHybrid(ctx context.Context, clusterID string, k int, simWeight, popWeight *float64) ([]domain.ScoredDestination, error) {
	wSim, wPop := uc.simWeight, uc.popWeight
	if simWeight != nil {
		wSim = *simWeight
	}
	if popWeight != nil {
		wPop = *popWeight
	}
	if wSim < 0 || wPop < 0 {
		return nil, errors.ErrInvalidRequest.WithMessage("hybrid weights must be non-negative")
	}
	if k <= 0 {
		return []domain.ScoredDestination{}, nil
	}

	cluster, err := uc.clusterRepo.GetByID(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	centroid, err := uc.ClusterCentroid(ctx, cluster)
	if err != nil {
		uc.logger.Error("Failed to compute cluster centroid", zap.String("cluster_id", clusterID), zap.Error(err))
		return nil, err
	}
	if centroid == nil {
		uc.logger.Debug("Cluster has no member embeddings", zap.String("cluster_id", clusterID))
		return []domain.ScoredDestination{}, nil
	}

	hits, err := uc.index.Search(centroid, 2*k)
	if err != nil {
		return nil, err
	}
	popular, err := uc.clusterRepo.TopDestinations(ctx, clusterID, 2*k)
	if err != nil {
		uc.logger.Error("Failed to load cluster popularity", zap.String("cluster_id", clusterID), zap.Error(err))
		return nil, err
	}

	return MergeHybrid(hits, popular, wSim, wPop, k), nil
}

// MergeHybrid объединяет результаты по id места; отсутствующая оценка считается нулём.
// Сортировка по убыванию hybrid, при равенстве по id.
func MergeHybrid(hits []vectorindex.Hit, popular []domain.PopularDestination, wSim, wPop float64, k int) []domain.ScoredDestination {
	merged := map[string]*domain.ScoredDestination{}
	get := func(id string) *domain.ScoredDestination {
		s, ok := merged[id]
		if !ok {
			s = &domain.ScoredDestination{DestinationID: id}
			merged[id] = s
		}
		return s
	}
	for _, h := range hits {
		get(h.ID).Similarity = h.Score
	}
	for _, p := range popular {
		get(p.DestinationID).Popularity = p.Score
	}

	out := make([]domain.ScoredDestination, 0, len(merged))
	for _, s := range merged {
		s.Hybrid = wSim*s.Similarity + wPop*s.Popularity
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hybrid != out[j].Hybrid {
			return out[i].Hybrid > out[j].Hybrid
		}
		return out[i].DestinationID < out[j].DestinationID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// ForUser - рекомендации пользователю без уже посещённых мест
func (uc *RecommendationUseCase) ForUser(ctx context.Context, userID string, k int, hybrid bool) ([]string, error) {
	pref, err := uc.prefRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !pref.HasEmbedding() {
		return nil, errors.ErrEmbeddingNotFound.WithMessage("user %s has no preference embedding", userID)
	}
	if k <= 0 {
		return []string{}, nil
	}
	want := k + len(pref.VisitedIDs)

	var ids []string
	if hybrid && pref.ClusterID != nil {
		scored, err := uc.ClusterHybrid(ctx, *pref.ClusterID, want, nil, nil)
		if err != nil && errors.KindOf(err) != errors.CodeNotFound {
			return nil, err
		}
		for _, s := range scored {
			ids = append(ids, s.DestinationID)
		}
	}
	if len(ids) == 0 {
		hits, err := uc.index.Search(pref.Embedding, want)
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			ids = append(ids, h.ID)
		}
	}

	out := make([]string, 0, k)
	for _, id := range ids {
		if pref.HasVisited(id) {
			continue
		}
		out = append(out, id)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// referenceVector - центроид кластера пользователя, иначе его собственный эмбеддинг
func (uc *RecommendationUseCase) referenceVector(ctx context.Context, userID string) ([]float32, error) {
	pref, err := uc.prefRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref.ClusterID != nil {
		cluster, err := uc.clusterRepo.GetByID(ctx, *pref.ClusterID)
		if err == nil {
			if len(cluster.Centroid) == uc.dim {
				return cluster.Centroid, nil
			}
			centroid, err := uc.ClusterCentroid(ctx, cluster)
			if err == nil && centroid != nil {
				return centroid, nil
			}
		}
	}
	if !pref.HasEmbedding() {
		return nil, errors.ErrEmbeddingNotFound.WithMessage("user %s has no preference embedding", userID)
	}
	return pref.Embedding, nil
}

// Rerank упорядочивает результаты внешнего поиска по близости к кластеру пользователя.
// Места без эмбеддинга идут в конце в исходном порядке. Ошибка ранжирования не ломает
// поиск: возвращается исходный порядок.
func (uc *RecommendationUseCase) Rerank(ctx context.Context, userID string, hits []dto.SearchHit) []dto.SearchHit {
	if len(hits) < 2 {
		return hits
	}
	ref, err := uc.referenceVector(ctx, userID)
	if err != nil {
		uc.logger.Warn("Search rerank skipped, keeping provider order",
			zap.String("user_id", userID), zap.Error(err))
		return hits
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DestinationID
	}
	embs, err := uc.embRepo.GetByDestinationIDs(ctx, ids)
	if err != nil {
		uc.logger.Warn("Search rerank skipped, keeping provider order",
			zap.String("user_id", userID), zap.Error(err))
		return hits
	}

	ranked := make([]dto.SearchHit, 0, len(hits))
	var rest []dto.SearchHit
	for _, h := range hits {
		e, ok := embs[h.DestinationID]
		if !ok || len(e.Vector) != len(ref) {
			h.Affinity = nil
			rest = append(rest, h)
			continue
		}
		score := domain.Cosine(ref, e.Vector)
		h.Affinity = &score
		ranked = append(ranked, h)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return *ranked[i].Affinity > *ranked[j].Affinity })
	return append(ranked, rest...)
}
