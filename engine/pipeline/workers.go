package pipeline

import (
	"fmt"
	"sync"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

// jobTask is one unit of generation work executed on a worker goroutine.
type jobTask struct {
	run func()
}

// jobSystem is a fixed worker pool draining a buffered task channel.
// Generation tasks are CPU-bound, so the worker count should track the
// cores budgeted for background generation, not the request rate.
type jobSystem struct {
	numWorkers int
	jobQueue   chan jobTask
	wg         sync.WaitGroup
}

func newJobSystem(numWorkers int, channelSize int) (*jobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &jobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan jobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *jobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				job.run()
			}
		}()
	}
}

// trySubmit queues the task if the channel has room. Never blocks, so
// callers on gameplay threads are insulated from generation latency.
func (js *jobSystem) trySubmit(jt jobTask) bool {
	select {
	case js.jobQueue <- jt:
		return true
	default:
		return false
	}
}

// shutdown drains the queue and waits for the workers to exit.
func (js *jobSystem) shutdown() {
	close(js.jobQueue)
	js.wg.Wait()
}
