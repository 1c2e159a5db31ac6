package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/darktech/marketplace-auth/internal/api/metrics"
	"github.com/darktech/marketplace-auth/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Recorder routes login-attempt records to a fixed set of workers using
// consistent hashing on the username, so attempts for one identity are
// applied in order while the login path itself never blocks on lockout
// bookkeeping.
type Recorder struct {
	workers []chan ports.LoginAttempt
	lockout ports.LockoutService
	log     zerolog.Logger
}

// NewRecorder creates a Recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRecorder(numWorkers int, lockout ports.LockoutService, log zerolog.Logger) *Recorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Recorder{
		workers: make([]chan ports.LoginAttempt, numWorkers),
		lockout: lockout,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan ports.LoginAttempt, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record enqueues one attempt, fire-and-forget. Call it exactly once per
// real login attempt; a full shard drops the record with a log line rather
// than stalling the caller.
func (r *Recorder) Record(attempt ports.LoginAttempt) {
	idx := r.shardIndex(attempt.Username)
	select {
	case r.workers[idx] <- attempt:
		metrics.TelemetryQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
	default:
		r.log.Warn().
			Str("username", attempt.Username).
			Int("worker_id", idx).
			Msg("telemetry queue full, attempt dropped")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (r *Recorder) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(username)))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Recorder) runWorker(ctx context.Context, id int, ch <-chan ports.LoginAttempt) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case attempt, ok := <-ch:
			if !ok {
				return
			}
			metrics.TelemetryQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			res, err := r.lockout.RecordAttempt(ctx, attempt)
			if err != nil {
				r.log.Error().Err(err).
					Str("username", attempt.Username).
					Int("worker_id", id).
					Msg("lockout bookkeeping failed")
				continue
			}
			if res.Locked {
				metrics.LockoutsTotal.Inc()
			}
		}
	}
}
