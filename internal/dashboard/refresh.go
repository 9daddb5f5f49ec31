package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Refresher reloads the dashboard on a fixed interval and on demand. A
// section that fails during a refresh keeps its previous data; the error is
// still reported so the view can offer a retry.
type Refresher struct {
	loader   *Loader
	interval time.Duration
	onUpdate func(Snapshot)

	mu      sync.Mutex
	current Snapshot
	loaded  bool
	sched   *gocron.Scheduler
}

func NewRefresher(loader *Loader, interval time.Duration, onUpdate func(Snapshot)) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{loader: loader, interval: interval, onUpdate: onUpdate}
}

// Start schedules periodic refreshes, the first one immediately. Runs never
// overlap.
func (r *Refresher) Start(ctx context.Context) error {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	if _, err := s.Every(r.interval).Do(func() { r.Refresh(ctx) }); err != nil {
		return err
	}
	r.mu.Lock()
	r.sched = s
	r.mu.Unlock()
	s.StartAsync()
	log.Info().Dur("interval", r.interval).Msg("dashboard: auto-refresh started")
	return nil
}

// Stop cancels the schedule; an in-flight refresh completes.
func (r *Refresher) Stop() {
	r.mu.Lock()
	s := r.sched
	r.sched = nil
	r.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Refresh loads now, merges with the previous snapshot and publishes it.
func (r *Refresher) Refresh(ctx context.Context) Snapshot {
	next := r.loader.Load(ctx)

	r.mu.Lock()
	if r.loaded {
		for section := range next.Errors {
			if r.current.Ok(section) {
				next.merge(section, r.current)
				next.Sources[section] = r.current.Sources[section]
			}
		}
		next.derive(next.LoadedAt)
	}
	r.current = next
	r.loaded = true
	r.mu.Unlock()

	if r.onUpdate != nil {
		r.onUpdate(next)
	}
	return next
}

// Current returns the last published snapshot.
func (r *Refresher) Current() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.loaded
}
