package embedding

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type slowProvider struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return []float32{float32(len(text)), 1}, nil
}

func TestPool_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2, 4, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	provider := &slowProvider{}
	svc := NewService(provider, pool, 2, "v", zap.NewNop())

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff"}
	vectors, err := EncodeBatch(context.Background(), svc, texts, 6)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	assert.LessOrEqual(t, provider.peak.Load(), int32(2))
	for _, v := range vectors {
		assert.Len(t, v, 2)
	}
}

func TestPool_SubmitHonoursCancellation(t *testing.T) {
	pool := NewPool(1, 1, zap.NewNop())
	// воркеры не запущены: очередь заполнится, второй Submit ждёт
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pool.Submit(ctx, NewFakeProvider(4, 1), "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 0, zap.NewNop())
	pool.Start()
	pool.Stop()

	_, err := pool.Submit(context.Background(), NewFakeProvider(4, 1), "x")
	assert.Error(t, err)
}
