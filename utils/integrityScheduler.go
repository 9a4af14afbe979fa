package utils

import (
	"context"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/logger"

	"github.com/robfig/cron/v3"
)

// runIntegrityAudit checks every sibling group once and logs what it found.
func runIntegrityAudit(ops *lifecycle.Operator, log *logger.Logger, repair bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := ops.Audit(ctx, repair)
	if err != nil {
		log.Error("integrity audit failed", "error", err)
		return
	}
	if len(report.Violations) == 0 {
		log.Debug("integrity audit clean", "groups", report.Groups)
		return
	}
	log.Warn("integrity audit found sparse groups",
		"violations", len(report.Violations),
		"repaired", report.Repaired,
	)
}

// InitializeIntegrityScheduler starts the periodic position audit. An empty
// spec disables it and returns nil.
func InitializeIntegrityScheduler(spec string, repair bool, ops *lifecycle.Operator, log *logger.Logger) (*cron.Cron, error) {
	log = log.With("component", "IntegrityScheduler")
	if spec == "" {
		log.Info("integrity scheduler disabled")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		runIntegrityAudit(ops, log, repair)
	}); err != nil {
		return nil, err
	}
	c.Start()

	log.Info("integrity scheduler started", "spec", spec, "repair", repair)
	return c, nil
}
