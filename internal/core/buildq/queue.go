// Package buildq bounds and serializes index builds.
//
// A Queue holds a fixed number of slots. Submit claims the first slot whose
// operation has settled and starts a new operation that first waits for
// every operation still pending at submission time, then runs its task.
// When no slot has settled, Submit fails with ErrQueueFull instead of
// blocking.
package buildq

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const DefaultCapacity = 2

var ErrQueueFull = errors.New("build queue is full")

// Task performs one build and returns its captured output.
type Task func(ctx context.Context) (string, error)

type Queue struct {
	mu     sync.Mutex
	slots  []*Operation
	nextID uint64
}

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue{slots: make([]*Operation, capacity)}
	for i := range q.slots {
		q.slots[i] = settledOperation()
	}
	return q
}

func (q *Queue) Capacity() int {
	return len(q.slots)
}

// Submit schedules task. The returned Operation is visible as pending to
// every later Submit before this call returns.
func (q *Queue) Submit(ctx context.Context, task Task) (*Operation, error) {
	if task == nil {
		return nil, fmt.Errorf("task is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	free := -1
	var pending []*Operation
	for i, op := range q.slots {
		if op.Settled() {
			if free < 0 {
				free = i
			}
			continue
		}
		pending = append(pending, op)
	}
	if free < 0 {
		return nil, ErrQueueFull
	}

	q.nextID++
	op := newOperation(q.nextID, pending)
	q.slots[free] = op
	go op.run(ctx, pending, task)
	return op, nil
}

// Pending reports how many slots hold an unsettled operation.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, op := range q.slots {
		if !op.Settled() {
			n++
		}
	}
	return n
}

// Run submits task and waits for its result.
func (q *Queue) Run(ctx context.Context, task Task) (string, error) {
	op, err := q.Submit(ctx, task)
	if err != nil {
		return "", err
	}
	return op.Wait(ctx)
}
