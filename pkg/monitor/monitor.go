package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Watch runs job once immediately and then on every tick of the cron
// schedule until ctx is cancelled. A tick that arrives while the previous run
// is still going is skipped. Watch waits for a running job before returning.
func Watch(ctx context.Context, schedule cron.Schedule, job func(context.Context), logger *zap.Logger) {
	logger = logger.With(zap.String("component", "monitor"))

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})))
	c.Schedule(schedule, cron.FuncJob(func() { job(ctx) }))

	// Initial scan
	job(ctx)

	if ctx.Err() != nil {
		return
	}

	c.Start()
	logger.Info("Watching for scheduled scans", zap.Time("next", schedule.Next(time.Now())))

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

// cronLogger routes cron's own messages into zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(keysAndValues []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, zap.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return out
}
