package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/definite-d/complendar/internal/config"
	"github.com/definite-d/complendar/internal/convert"
	appLog "github.com/definite-d/complendar/internal/log"
)

// Scheduler re-converts the subscribed spreadsheets on a cron schedule
// and writes each calendar into the configured output directory. Event
// identifiers are content-derived, so a re-run rewrites each file with
// the same UIDs and importers keep treating them as the same events.
type Scheduler struct {
	cron *cron.Cron
	cfg  *config.Config
	conv *convert.Converter
}

func New(cfg *config.Config, conv *convert.Converter) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		cfg:  cfg,
		conv: conv,
	}
}

// Start registers the refresh job and starts the cron loop. With no
// schedule or no subscriptions it is a no-op.
func (s *Scheduler) Start() error {
	if s.cfg.RefreshCron == "" || len(s.cfg.Sheets) == 0 {
		appLog.Info("scheduler disabled", "refresh", s.cfg.RefreshCron, "sheets", len(s.cfg.Sheets))
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.RefreshCron, s.refresh); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	s.cron.Start()
	appLog.Info("scheduler started", "refresh", s.cfg.RefreshCron, "sheets", len(s.cfg.Sheets))
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	appLog.Info("scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx := context.Background()

	for _, sheet := range s.cfg.Sheets {
		id := sheet.ID
		if id == "" {
			id = sheet.Name
		}
		if sheet.Link == "" || id == "" {
			appLog.Warn("subscription missing link or id, skipping", "name", sheet.Name)
			continue
		}

		result, err := s.conv.Convert(ctx, sheet.Link)
		if err != nil {
			appLog.Error("scheduled conversion failed", err, "id", id)
			continue
		}

		path, err := convert.WriteFile(s.cfg.OutputDir, id+".ics", result.ICS)
		if err != nil {
			appLog.Error("scheduled conversion write failed", err, "id", id)
			continue
		}

		appLog.Info("scheduled conversion done",
			"id", id,
			"path", path,
			"name_column", result.Headers.NameColumn,
			"birthday_column", result.Headers.DateColumn,
			"events", result.Events,
			"skipped", result.Skipped,
		)
	}
}
