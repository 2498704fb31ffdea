package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the syncer on a standard five-field cron schedule.
type Scheduler struct {
	syncer *Syncer
	cron   *cron.Cron
}

func NewScheduler(syncer *Syncer, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &Scheduler{syncer: syncer, cron: c}
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	_, err := s.syncer.Run(context.Background())
	if errors.Is(err, ErrRunning) {
		log.Info("Skipping scheduled sync, another run is in progress")
		return
	}
	if err != nil {
		log.Warnf("Scheduled sync finished with errors: %v", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Infof("Sync scheduler started, next run at %s", s.cron.Entries()[0].Next)
}

// Stop prevents new runs and waits for a running one to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn("Timed out waiting for running sync to finish")
	}
}
