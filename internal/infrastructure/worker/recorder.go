// Package worker runs the background goroutines of the API process.
package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	persistTimeout = 5 * time.Second
)

// ErrRecorderClosed is returned by Record after Stop.
var ErrRecorderClosed = errors.New("recorder closed")

// Recorder persists validation records off the request path. Records are
// sharded by owner so each user's history is written in submission order.
type Recorder struct {
	mu      sync.RWMutex
	closed  bool
	workers []chan domain.ValidationRecord
	repo    ports.ValidationRepository
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewRecorder creates a Recorder with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewRecorder(numWorkers int, repo ports.ValidationRepository, log zerolog.Logger) *Recorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Recorder{
		workers: make([]chan domain.ValidationRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan domain.ValidationRecord, channelBuffer)
	}
	return r
}

// Start launches the worker goroutines. They exit once Stop has closed their
// queues and every pending record has been written.
func (r *Recorder) Start() {
	for i, ch := range r.workers {
		r.wg.Add(1)
		go r.runWorker(i, ch)
	}
}

// Record queues rec for its owner's shard. It blocks while the shard is full
// until ctx is done.
func (r *Recorder) Record(ctx context.Context, rec domain.ValidationRecord) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}

	select {
	case r.workers[r.shardIndex(rec.OwnerKey())] <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects new records and waits for queued ones to be persisted, or for
// ctx to expire.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		for _, ch := range r.workers {
			close(ch)
		}
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) shardIndex(owner string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	return int(h.Sum32() % uint32(len(r.workers)))
}

func (r *Recorder) runWorker(id int, ch <-chan domain.ValidationRecord) {
	defer r.wg.Done()
	for rec := range ch {
		r.persist(id, rec)
	}
}

func (r *Recorder) persist(id int, rec domain.ValidationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if _, err := r.repo.Insert(ctx, &rec); err != nil {
		r.log.Error().Err(err).
			Str("owner", rec.OwnerKey()).
			Int("worker_id", id).
			Msg("failed to persist validation record")
	}
}
