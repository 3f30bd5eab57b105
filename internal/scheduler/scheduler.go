package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Reloader refreshes some process-wide state, such as the crop catalog.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler periodically reloads the crop catalog.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reloader  Reloader
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(interval time.Duration, reloader Reloader) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		reloader:  reloader,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the reload job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: catalog reload disabled")
		return nil
	}

	// The catalog is loaded at startup; the first reload waits one interval.
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.reload)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: reloading catalog every %s", s.interval)
	return nil
}

func (s *Scheduler) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.reloader.Reload(ctx); err != nil {
		log.Printf("scheduler: catalog reload failed, keeping previous catalog: %v", err)
		return
	}
	log.Println("scheduler: catalog reloaded")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
