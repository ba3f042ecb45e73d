package internal

import (
	"fmt"
	"sync"

	"github.com/nocturnecity/density-resizer/pkg"
)

type job struct {
	d   pkg.Density
	run func(pkg.Density) (pkg.ResultSize, error)
	c   chan jobResult
}

type jobResult struct {
	result pkg.ResultSize
	err    error
}

func NewPool(logger *StdLog, maxWorkers int) *Pool {
	return &Pool{
		logger:  logger,
		wq:      make(chan chan job, maxWorkers),
		workers: maxWorkers,
		qq:      make(chan struct{}),
		wg:      &sync.WaitGroup{},
	}
}

type Pool struct {
	logger  *StdLog
	wq      chan chan job
	qq      chan struct{}
	workers int
	wg      *sync.WaitGroup
}

func (d *Pool) Run() {
	d.logger.Debug("Starting worker pool with %d workers", d.workers)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		worker := newWorker(d.logger, d.wq, d.qq, d.wg)
		worker.start()
	}
}

// Dispatch blocks until a worker is free to take j.
func (d *Pool) Dispatch(j job) {
	jobChannel := <-d.wq
	jobChannel <- j
}

func (d *Pool) ShutDown() {
	close(d.qq)
	d.wg.Wait()
}

func newWorker(logger *StdLog, workerQueue chan chan job, quitChan chan struct{}, wg *sync.WaitGroup) *Worker {
	return &Worker{
		logger: logger,
		jq:     make(chan job),
		wq:     workerQueue,
		qc:     quitChan,
		wg:     wg,
	}
}

type Worker struct {
	logger *StdLog
	jq     chan job      // internal worker queue
	wq     chan chan job // pool workers queue
	qc     chan struct{}
	wg     *sync.WaitGroup
}

func (w *Worker) start() {
	go func() {
		w.logger.Debug("Worker spawned")
		for {
			select {
			case w.wq <- w.jq:
			case <-w.qc:
				w.logger.Debug("Worker quit channel triggered")
				w.wg.Done()
				return
			}
			select {
			case rq := <-w.jq:
				w.logger.Debug("Worker processing %s", rq.d)
				result, err := w.process(rq)
				rq.c <- jobResult{
					result,
					err,
				}
			case <-w.qc:
				w.logger.Debug("Worker quit channel triggered")
				w.wg.Done()
				return
			}
		}
	}()
}

// process runs the job and turns a panic into an error so the caller
// waiting on the result channel is always answered.
func (w *Worker) process(rq job) (result pkg.ResultSize, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panic recover: %v", r)
			err = fmt.Errorf("%w: %s: panic: %v", ErrEncode, rq.d, r)
		}
	}()
	return rq.run(rq.d)
}
