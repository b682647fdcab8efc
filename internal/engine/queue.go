package engine

import (
	"sync"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// MessageKind distinguishes a queued Command from a queued Event.
type MessageKind uint8

const (
	MessageCommand MessageKind = iota
	MessageEvent
)

// Message is the union type carried on the Live Loop's queue: a command
// produced by a strategy, or an event produced by the ExecutionClient.
type Message struct {
	Kind    MessageKind
	Command Command
	Event   Event
}

// ErrQueueClosed is returned by TryPublish once the queue has been closed.
var ErrQueueClosed = errors.New("queue is closed")

// ErrQueueFull is returned by TryPublish when the queue's buffer is
// saturated; the Live Loop favors dropping a producer's message over
// blocking it, matching the bounded, non-blocking enqueue a multi-producer
// single-consumer FIFO needs to stay responsive.
var ErrQueueFull = errors.New("queue is full")

// Queue is a bounded, multi-producer single-consumer FIFO. Grounded on a
// bounded non-blocking channel queue (TryPublish/Close/Run), generalized
// from a byte-payload transport to the engine's Command/Event Message
// union.
type Queue struct {
	ch chan Message

	closeOnce sync.Once
	closed    chan struct{}
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch:     make(chan Message, capacity),
		closed: make(chan struct{}),
	}
}

// TryPublish enqueues msg without blocking. It returns ErrQueueClosed after
// Close, or ErrQueueFull if the buffer has no room.
func (q *Queue) TryPublish(msg Message) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- msg:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	default:
		return ErrQueueFull
	}
}

// Close stops accepting new messages. It is safe to call more than once
// and safe to call concurrently with TryPublish.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
}

// Run drains the queue on the calling goroutine, invoking handle for each
// message in FIFO order, until Close is called and the buffer is empty.
func (q *Queue) Run(handle func(Message)) {
	for {
		select {
		case msg := <-q.ch:
			handle(msg)
		case <-q.closed:
			q.drain(handle)
			return
		}
	}
}

func (q *Queue) drain(handle func(Message)) {
	for {
		select {
		case msg := <-q.ch:
			handle(msg)
		default:
			logs.Info("queue drained")
			return
		}
	}
}
