package main

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"webscan/pkg/config"
	"webscan/pkg/models"
	"webscan/pkg/monitor"
	"webscan/pkg/report"
	"webscan/pkg/scanner"
	"webscan/pkg/store"
)

// scanJob runs one full scan and hands the results to the sinks
type scanJob struct {
	cfg     *config.Config
	units   []models.ProbeUnit
	scanner *scanner.Scanner
	history *store.Store
	logger  *zap.Logger
}

func (j *scanJob) Run(ctx context.Context) error {
	proxy := "direct"
	if u, _ := j.cfg.ProxyURL(); u != nil {
		proxy = u.Redacted()
	}

	j.logger.Info("Starting scan...",
		zap.Int("probes", len(j.units)),
		zap.Int("concurrency", j.cfg.Concurrency),
		zap.String("proxy", proxy))
	for _, network := range j.cfg.Ranges {
		j.logger.Info("Scanning subnet", zap.String("range", network))
	}

	started := time.Now()
	progress := monitor.NewProgress(len(j.units), os.Stderr)
	results := j.scanner.Run(ctx, j.units, progress)
	progress.Finish()
	finished := time.Now()

	report.PrintTable(os.Stdout, results)
	report.PrintSummary(os.Stdout, finished.Sub(started), len(results), progress.Total())

	// An interrupted scan is partial; the sinks keep the last full one
	if ctx.Err() != nil {
		j.logger.Warn("Scan interrupted, results not saved",
			zap.Int("completed", progress.Completed()),
			zap.Int("total", progress.Total()),
			zap.Error(ctx.Err()))
		return nil
	}

	var errs []error
	if j.cfg.Output != "" {
		if err := report.WriteFile(j.cfg.Output, results); err != nil {
			j.logger.Error("Failed to save results", zap.Error(err))
			errs = append(errs, err)
		} else {
			j.logger.Info("Results saved", zap.String("path", j.cfg.Output))
		}
	}

	if j.history != nil {
		id, err := j.history.SaveScan(context.WithoutCancel(ctx), started, finished, len(j.units), results)
		if err != nil {
			j.logger.Error("Failed to record scan", zap.Error(err))
			errs = append(errs, err)
		} else {
			j.logger.Info("Scan recorded", zap.Int64("scan", id))
		}
	}

	return errors.Join(errs...)
}
