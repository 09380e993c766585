package buildq

import (
	"context"
	"fmt"
	"sync"
)

type opState int

const (
	stateIdle opState = iota
	statePending
	stateSettled
)

// Operation is a build that has been accepted by a Queue.
type Operation struct {
	id      uint64
	waitsOn []uint64
	done    chan struct{}

	mu    sync.Mutex
	state opState
	out   string
	err   error
}

func newOperation(id uint64, deps []*Operation) *Operation {
	ids := make([]uint64, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, d.id)
	}
	return &Operation{
		id:      id,
		waitsOn: ids,
		done:    make(chan struct{}),
		state:   statePending,
	}
}

func settledOperation() *Operation {
	done := make(chan struct{})
	close(done)
	return &Operation{done: done, state: stateIdle}
}

func (o *Operation) ID() uint64 { return o.id }

// WaitsOn returns the IDs of the operations this one waited for before running.
func (o *Operation) WaitsOn() []uint64 {
	return append([]uint64(nil), o.waitsOn...)
}

// Settled reports whether the operation has finished, without blocking.
func (o *Operation) Settled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state != statePending
}

func (o *Operation) Done() <-chan struct{} { return o.done }

// Wait blocks until the operation settles or ctx is done. Cancelling ctx
// does not stop the build.
func (o *Operation) Wait(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-o.done:
		o.mu.Lock()
		defer o.mu.Unlock()
		return o.out, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (o *Operation) run(ctx context.Context, deps []*Operation, task Task) {
	for _, d := range deps {
		<-d.done
	}

	var out string
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("build panicked: %v", r)
			}
		}()
		out, err = task(ctx)
	}()
	o.settle(out, err)
}

func (o *Operation) settle(out string, err error) {
	o.mu.Lock()
	o.out = out
	o.err = err
	o.state = stateSettled
	o.mu.Unlock()
	close(o.done)
}
