package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	jobTypeEmail = "email"

	// MaxJobAttempts is how many times a job runs before it goes to the DLQ.
	MaxJobAttempts = 5
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Processor handles one job payload. Returning ErrPermanent skips retries.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// ErrPermanent marks a job failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, jobTypeEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb        *redis.Client
	processors map[string]Processor
	queues     []string
	backoff    func(attempt int) time.Duration
}

func NewPool(rdb *redis.Client, email Processor) *Pool {
	return &Pool{
		rdb:        rdb,
		processors: map[string]Processor{jobTypeEmail: email},
		queues:     []string{QueueEmail},
		backoff:    retryBackoff,
	}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				pauseAfterPopError(ctx, id, err)
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.handle(ctx, result[0], result[1])
		}
	}
}

// popErrorPause throttles the loop while Redis is unreachable.
var popErrorPause = time.Second

// pauseAfterPopError returns at once for an empty-queue timeout (redis.Nil)
// or a cancelled ctx. Any other error waits popErrorPause before the next
// BRPOP.
func pauseAfterPopError(ctx context.Context, id int, err error) {
	if errors.Is(err, redis.Nil) || ctx.Err() != nil {
		return
	}
	log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
	select {
	case <-ctx.Done():
	case <-time.After(popErrorPause):
	}
}

// handle runs one raw job and requeues or dead-letters it on failure.
func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(raw), "unmarshal: "+err.Error(), 0)
		return
	}
	proc, ok := p.processors[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no processor for job type", job.Attempts)
		return
	}

	job.Attempts++
	err := proc.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	if errors.Is(err, ErrPermanent) || job.Attempts >= MaxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	delay := p.backoff(job.Attempts)
	log.Warn().
		Err(err).
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Dur("retry_in", delay).
		Msg("job failed, requeueing")

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if err := push(context.WithoutCancel(ctx), p.rdb, queue, job); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("requeue failed")
		}
	}()
}

// retryBackoff doubles from 10s up to 10 minutes.
func retryBackoff(attempt int) time.Duration {
	d := 10 * time.Second
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= 10*time.Minute {
			return 10 * time.Minute
		}
	}
	return d
}
