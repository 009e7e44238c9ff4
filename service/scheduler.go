package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is one periodic task. Run receives a context cancelled on scheduler
// stop.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives the mention batch and the ranking sweep on fixed
// intervals. Each job runs synchronously in its own loop, so a tick that
// fires while the previous run is still going is coalesced by the ticker
// rather than overlapped.
type Scheduler struct {
	jobs []Job
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{stop: make(chan struct{})}
}

func (s *Scheduler) Add(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

// Start launches one goroutine per job. Jobs with a non-positive interval
// are disabled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			log.Printf("scheduler: job %s disabled", job.Name)
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()
	log.Printf("scheduler: job %s every %s", job.Name, job.Interval)
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				log.Printf("scheduler: job %s: %v", job.Name, err)
			}
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop signals every job loop and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}
