package snapshotsettings

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// sweepSchedule matches the 1-hour retention sweep cadence named in the
// concurrency model.
const sweepSchedule = "@hourly"

// Sweeper runs the retention sweep on a cron schedule until stopped.
type Sweeper struct {
	manager *Manager
	cron    *cron.Cron
	now     func() time.Time
}

// StartSweeper schedules the retention sweep to run hourly, using nowFn to
// obtain the current time at each tick (injected so tests can control it).
func StartSweeper(manager *Manager, nowFn func() time.Time) (*Sweeper, error) {
	c := cron.New()

	s := &Sweeper{manager: manager, cron: c, now: nowFn}

	if _, err := c.AddFunc(sweepSchedule, func() {
		manager.SweepExpired(context.Background(), nowFn())
	}); err != nil {
		return nil, err
	}

	c.Start()

	return s, nil
}

// Stop halts the sweeper, waiting for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
