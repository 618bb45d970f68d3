// Package dispatch carries validated path messages from the socket accept
// loop to the render loop.
package dispatch

import (
	"errors"
	"sync"
)

// ErrClosed is returned to producers once the consumer side has shut down.
var ErrClosed = errors.New("dispatch queue closed")

// Queue is an unbounded FIFO handoff between one producing goroutine and one
// consuming goroutine. Send never blocks; TryReceive never blocks. Messages
// are delivered in send order and exactly once.
type Queue struct {
	mu       sync.Mutex
	messages []string
	closed   bool
}

func New() *Queue {
	return &Queue{}
}

// Send enqueues one path message. It fails only after Close.
func (q *Queue) Send(path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.messages = append(q.messages, path)
	return nil
}

// TryReceive dequeues at most one message without blocking.
func (q *Queue) TryReceive() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.messages) == 0 {
		return "", false
	}
	path := q.messages[0]
	q.messages = q.messages[1:]
	return path, true
}

// Close marks the consumer as gone. Idempotent. Messages already enqueued
// remain receivable; subsequent sends fail with ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
