// Package notify sends the outbound notification emails for freshly saved
// listings. All sends go through a single rate-limited Queue so the mail
// provider sees a bounded call rate no matter how many adapters ran.
package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobmill-engine/internal/clock"
)

// Message is one outbound notification email. Tags carry at least the
// source name and the fixed "job-notification" category.
type Message struct {
	To      string
	Subject string
	HTML    string
	Tags    []string
}

// Result resolves a queued send with the provider message id or an error.
type Result struct {
	ID  string
	Err error
}

// Deliverer is the outbound transport. One call, one message.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) (string, error)
}

var ErrInvalidRecipient = errors.New("invalid recipient address")

const (
	DefaultBatchSize = 2
	DefaultWindow    = time.Second
)

// Queue is an in-memory outbound queue drained by a single worker. The
// worker starts lazily on the first enqueue, sends up to batchSize
// messages concurrently, waits for the whole batch to settle, sleeps the
// window, and exits once the queue is empty. The next enqueue restarts it.
//
// The queue is explicitly constructed and owned by the caller; nothing
// here is process-global.
type Queue struct {
	deliverer Deliverer
	clk       clock.Clock
	batchSize int
	window    time.Duration

	mu      sync.Mutex
	pending []task
	running bool
}

type task struct {
	msg  Message
	done chan Result
}

func NewQueue(d Deliverer, clk clock.Clock, batchSize int, window time.Duration) *Queue {
	if clk == nil {
		clk = clock.Real{}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Queue{
		deliverer: d,
		clk:       clk,
		batchSize: batchSize,
		window:    window,
	}
}

// Enqueue appends one send and immediately returns its completion handle.
// An address without "@" resolves at once with ErrInvalidRecipient and
// never consumes a rate-limit slot.
func (q *Queue) Enqueue(msg Message) <-chan Result {
	done := make(chan Result, 1)
	if !strings.Contains(msg.To, "@") {
		done <- Result{Err: ErrInvalidRecipient}
		return done
	}

	q.mu.Lock()
	q.pending = append(q.pending, task{msg: msg, done: done})
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()
	return done
}

// take pops the next batch, or flips the worker off and returns nil when
// the queue is empty. Holding the lock for both steps closes the gap an
// enqueue could otherwise fall into.
func (q *Queue) take() []task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		q.running = false
		return nil
	}
	n := len(q.pending)
	if n > q.batchSize {
		n = q.batchSize
	}
	batch := make([]task, n)
	copy(batch, q.pending)
	q.pending = q.pending[n:]
	return batch
}

func (q *Queue) drain() {
	for {
		batch := q.take()
		if batch == nil {
			return
		}

		g := new(errgroup.Group)
		for _, t := range batch {
			t := t // keep per-iteration capture on pre-1.22 toolchains
			g.Go(func() error {
				id, err := q.deliverer.Deliver(context.Background(), t.msg)
				t.done <- Result{ID: id, Err: err}
				return nil
			})
		}
		// every send resolves its own handle; a failed send never takes
		// its batch siblings down with it
		g.Wait()

		q.clk.Sleep(q.window)
	}
}
