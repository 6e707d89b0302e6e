package scheduler

import (
	"context"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cloudify-ls.scheduler")

type Task struct {
	Name    string
	Execute func(ctx context.Context) error
}

// Scheduler runs background tasks on a few workers. Scheduling never blocks:
// a task that does not fit in the queue is dropped.
type Scheduler struct {
	taskQueue chan Task
	workers   int

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler with the specified queue size and
// number of workers.
func NewScheduler(queueSize, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		taskQueue: make(chan Task, queueSize),
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RunScheduler starts the workers.
func (s *Scheduler) RunScheduler() {
	for range s.workers {
		s.wg.Add(1)
		go s.work()
	}
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	for {
		select {
		case task := <-s.taskQueue:
			s.execute(task)
		case <-s.ctx.Done():
			// drain what was already accepted
			for {
				select {
				case task := <-s.taskQueue:
					s.execute(task)
				default:
					return
				}
			}
		}
	}
}

func (s *Scheduler) execute(task Task) {
	log.Debugf("executing %s", task.Name)
	if err := task.Execute(s.ctx); err != nil {
		log.Errorf("%s failed: %s", task.Name, err)
	}
}

// Schedule queues a task and reports whether it was accepted.
func (s *Scheduler) Schedule(task Task) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return false
	}
	select {
	case s.taskQueue <- task:
		return true
	default:
		log.Warningf("skipped scheduling %s, queue is full", task.Name)
		return false
	}
}

// StopScheduler cancels running tasks, runs the queued ones with the
// cancelled context and waits for the workers to exit.
func (s *Scheduler) StopScheduler() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	log.Info("stopping scheduler")
	s.cancel()
	s.wg.Wait()
	log.Info("scheduler stopped")
}
