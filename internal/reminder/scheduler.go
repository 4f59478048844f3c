package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler drives the engine's three passes on independent tickers.
// Each tick runs its pass to completion inside the ticker loop, so a
// pass never overlaps itself; different passes may run concurrently
// since they touch disjoint fields per subscription.
type Scheduler struct {
	mu            sync.RWMutex
	engine        *Engine
	badgeInterval time.Duration
	checkInterval time.Duration
	dailySweep    time.Duration
	dailyHour     int
	cancel        context.CancelFunc
	done          chan struct{}
	logger        *slog.Logger
}

// NewScheduler creates a scheduler with the default cadence: badge
// sync hourly, interval check every 5 minutes, and an hourly daily
// sweep that fires only during dailyHour (local time).
func NewScheduler(engine *Engine, dailyHour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:        engine,
		badgeInterval: time.Hour,
		checkInterval: 5 * time.Minute,
		dailySweep:    time.Hour,
		dailyHour:     dailyHour,
		logger:        logger,
	}
}

// Start begins the scheduler loops.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	var wg sync.WaitGroup
	run := func(interval time.Duration, tick func(time.Time)) {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				tick(now)
			}
		}
	}

	wg.Add(3)
	go run(s.badgeInterval, s.engine.SyncBadges)
	go run(s.checkInterval, s.engine.SendIntervalReminders)
	go run(s.dailySweep, func(now time.Time) {
		if now.Hour() == s.dailyHour {
			s.engine.SendDailyReminders(now)
		}
	})

	go func() {
		wg.Wait()
		close(done)
	}()

	s.logger.Info("reminder scheduler started", "daily_hour", s.dailyHour)
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
