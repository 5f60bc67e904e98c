package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errPoolStopped = fmt.Errorf("embedding pool stopped")

type encodeRequest struct {
	ctx        context.Context
	provider   Provider
	text       string
	resultChan chan encodeResult
}

type encodeResult struct {
	vector []float32
	err    error
}

// Pool - ограниченный пул воркеров для вызовов модели
type Pool struct {
	workers      int
	logger       *zap.Logger
	requestQueue chan *encodeRequest
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		workers:      workers,
		logger:       logger,
		requestQueue: make(chan *encodeRequest, queueSize),
		stopChan:     make(chan struct{}),
	}
}

// Start запускает воркеры
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	p.logger.Info("Embedding pool started", zap.Int("workers", p.workers))
}

// Stop останавливает воркеры и ждёт их завершения
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case req := <-p.requestQueue:
			if err := req.ctx.Err(); err != nil {
				req.resultChan <- encodeResult{err: err}
				continue
			}
			vec, err := req.provider.Embed(req.ctx, req.text)
			req.resultChan <- encodeResult{vector: vec, err: err}
		}
	}
}

// Submit ставит задачу в очередь и ждёт результат или отмену контекста.
func (p *Pool) Submit(ctx context.Context, provider Provider, text string) ([]float32, error) {
	select {
	case <-p.stopChan:
		return nil, errPoolStopped
	default:
	}

	req := &encodeRequest{
		ctx:        ctx,
		provider:   provider,
		text:       text,
		resultChan: make(chan encodeResult, 1),
	}

	select {
	case p.requestQueue <- req:
	case <-p.stopChan:
		return nil, errPoolStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.resultChan:
		return res.vector, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EncodeBatch кодирует тексты параллельно, не более limit одновременно.
// Порядок результата совпадает с порядком входа.
func EncodeBatch(ctx context.Context, enc Encoder, texts []string, limit int) ([][]float32, error) {
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, text := range texts {
		g.Go(func() error {
			vec, err := enc.Encode(gctx, text)
			if err != nil {
				return fmt.Errorf("encode item %d: %w", i, err)
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
