package testhelpers

import (
	"context"
	"testing"

	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/repository/postgres"
)

// Repositories - набор репозиториев поверх тестовой БД
type Repositories struct {
	Plans        repository.PlanRepository
	Destinations repository.DestinationRepository
	Preferences  repository.PreferenceRepository
	Embeddings   repository.EmbeddingRepository
	Clusters     repository.ClusterRepository
}

// NewRepositories создает все postgres репозитории над TestDB
func (tdb *TestDB) NewRepositories() Repositories {
	return Repositories{
		Plans:        postgres.NewPlanRepository(tdb.PG, tdb.Logger),
		Destinations: postgres.NewDestinationRepository(tdb.PG, tdb.Logger),
		Preferences:  postgres.NewPreferenceRepository(tdb.PG, tdb.Logger),
		Embeddings:   postgres.NewEmbeddingRepository(tdb.PG, tdb.Logger),
		Clusters:     postgres.NewClusterRepository(tdb.PG, tdb.Logger),
	}
}

// SeedCluster создает кластер с участниками
func (tdb *TestDB) SeedCluster(t *testing.T, clusterID string, members ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := tdb.DB.ExecContext(ctx,
		`INSERT INTO clusters (id, name, algorithm) VALUES ($1, $1, 'kmeans')`, clusterID); err != nil {
		t.Fatalf("seed cluster: %v", err)
	}
	for _, m := range members {
		if _, err := tdb.DB.ExecContext(ctx,
			`INSERT INTO user_cluster_associations (user_id, cluster_id) VALUES ($1, $2)`, m, clusterID); err != nil {
			t.Fatalf("seed cluster member: %v", err)
		}
	}
}
