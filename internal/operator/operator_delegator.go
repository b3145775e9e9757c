package operator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/site-ledger/internal/operator/actions"
)

// ErrStopped is returned by Process once the delegator has been stopped.
var ErrStopped = errors.New("operator: delegator stopped")

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	backend    Backend
	logger     *logrus.Logger
	queue      chan ActionItem
	numWorkers int
	timeout    time.Duration
	wg         sync.WaitGroup

	stateMutex sync.RWMutex
	stopped    bool
}

// NewOperatorDelegator builds a pool of numWorkers operators. A positive
// timeout bounds each unit of work.
func NewOperatorDelegator(backend Backend, numWorkers int, timeout time.Duration, logger *logrus.Logger) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		backend:    backend,
		logger:     logger,
		queue:      make(chan ActionItem, 1000),
		numWorkers: numWorkers,
		timeout:    timeout,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.backend, d.queue, d.timeout, d.logger)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

// Stop closes the queue and waits for queued items to drain.
func (d *OperatorDelegator) Stop() {
	d.stateMutex.Lock()
	if d.stopped {
		d.stateMutex.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.stateMutex.Unlock()

	d.wg.Wait()
}

// Process runs action in its own unit of work on one of the workers and
// returns its error. The unit of work is committed only if Perform succeeds.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	if err := d.enqueue(ctx, item); err != nil {
		return err
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *OperatorDelegator) enqueue(ctx context.Context, item ActionItem) error {
	d.stateMutex.RLock()
	defer d.stateMutex.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
