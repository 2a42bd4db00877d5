// Package worker provides an asynchronous worker pool for archiving completed
// answers with the provided archive.Driver and announcing them through the
// provided eventstream.Publisher.
//
// The pool keeps storage and publishing off the stream callbacks, which must
// not block.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/askstream/pkg/archive"
	"github.com/papercomputeco/askstream/pkg/eventstream"
	"github.com/papercomputeco/askstream/pkg/logger"
	"github.com/papercomputeco/askstream/pkg/stream"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Question string
	Endpoint string
	Response *stream.Response

	StartedAt   time.Time
	CompletedAt time.Time
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the archive backend for persisting answers.
	Driver archive.Driver

	// Publisher optionally announces newly archived answers.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool processes archive jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("worker pool requires an archive driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Response == nil {
		p.logger.Error("job not queued, missing response")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued", "request_id", job.Response.RequestID)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", "request_id", job.Response.RequestID)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// No job may be enqueued after Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("archive worker stopped", "worker_id", id)
}

// processJob archives the answer and, when it was new, publishes it.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()
	rec := archive.NewRecord(job.Question, job.Endpoint, job.Response)

	isNew, err := p.config.Driver.Put(ctx, rec)
	if err != nil {
		p.logger.Error("archiving answer failed",
			"request_id", rec.ID,
			"error", err,
		)
		return
	}

	p.logger.Info("answer archived",
		"request_id", rec.ID,
		"is_new", isNew,
		"answer_length", len(rec.Answer),
		"sources", len(rec.Sources),
	)

	if !isNew || p.config.Publisher == nil {
		return
	}

	event := eventstream.NewAnswerCompletedEvent(job.Question, job.Endpoint, job.Response, job.StartedAt, job.CompletedAt)
	if err := p.config.Publisher.PublishAnswer(ctx, event); err != nil {
		p.logger.Warn("failed to publish answer event",
			"request_id", rec.ID,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("answer event published", "event_id", event.EventID)
}
