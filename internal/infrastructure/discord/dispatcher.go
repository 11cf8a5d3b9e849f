package discord

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/orris-inc/archy/internal/shared/goroutine"
	"github.com/orris-inc/archy/internal/shared/logger"
)

// Handler processes one inbound message.
type Handler interface {
	HandleMessage(ctx context.Context, msg *Message) error
}

// Dispatcher fans messages out to a fixed pool of workers. Messages of one
// user always land on the same worker, so they are handled in arrival order;
// different users run in parallel.
type Dispatcher struct {
	handler Handler
	logger  logger.Interface
	timeout time.Duration
	queues  []chan *Message
	wg      sync.WaitGroup
	once    sync.Once

	// mu orders Submit's sends before Stop closes the queues.
	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

func NewDispatcher(handler Handler, workers, queueSize int, timeout time.Duration, log logger.Interface) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	queues := make([]chan *Message, workers)
	for i := range queues {
		queues[i] = make(chan *Message, queueSize)
	}
	return &Dispatcher{
		handler: handler,
		logger:  log,
		timeout: timeout,
		queues:  queues,
		done:    make(chan struct{}),
	}
}

// Start launches the workers; they exit when Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := range d.queues {
		d.wg.Add(1)
		idx := i
		goroutine.SafeGo(d.logger, "discord-worker", func() {
			defer d.wg.Done()
			for msg := range d.queues[idx] {
				d.process(ctx, idx, msg)
			}
		})
	}
	d.logger.Infow("message dispatcher started", "workers", len(d.queues))
}

// Submit blocks while the user's worker queue is full. Messages submitted
// during or after Stop are dropped.
func (d *Dispatcher) Submit(ctx context.Context, msg *Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.logger.Debugw("dispatcher stopped, dropping message", "message_id", msg.ID)
		return
	}

	select {
	case d.queues[d.workerFor(msg.Author.ID)] <- msg:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Stop drains the queues and waits for in-flight messages.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.done)
		d.mu.Lock()
		d.stopped = true
		for _, q := range d.queues {
			close(q)
		}
		d.mu.Unlock()
	})
	d.wg.Wait()
	d.logger.Infow("message dispatcher stopped")
}

func (d *Dispatcher) process(ctx context.Context, worker int, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorw("panic recovered in message handler",
				"worker", worker,
				"message_id", msg.ID,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	if ctx.Err() != nil {
		return
	}
	msgCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		msgCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.handler.HandleMessage(msgCtx, msg); err != nil {
		d.logger.Errorw("failed to handle message",
			"worker", worker,
			"message_id", msg.ID,
			"channel_id", msg.ChannelID,
			"error", err,
		)
	}
}

// workerFor maps a user id to a worker index.
func (d *Dispatcher) workerFor(userID string) int {
	n := uint64(len(d.queues))
	if id, err := strconv.ParseUint(userID, 10, 64); err == nil {
		return int(id % n)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum64() % n)
}
