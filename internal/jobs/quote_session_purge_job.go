package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPurgeSchedule runs the purge at second 0 of every minute.
const DefaultPurgeSchedule = "0 * * * * *"

const purgeTimeout = 30 * time.Second

// SessionPurger deletes expired quote sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// QuoteSessionPurgeJob removes expired quote sessions from stores that do
// not expire keys on their own.
type QuoteSessionPurgeJob struct {
	purger   SessionPurger
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewQuoteSessionPurgeJob(purger SessionPurger, schedule string, logger *zap.Logger) *QuoteSessionPurgeJob {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	return &QuoteSessionPurgeJob{
		purger:   purger,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With(zap.String("component", "quote_session_purge_job")),
	}
}

func (j *QuoteSessionPurgeJob) Name() string { return "quote session purge" }

func (j *QuoteSessionPurgeJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("quote session purge job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop waits for a running purge to finish.
func (j *QuoteSessionPurgeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("quote session purge job stopped")
}

func (j *QuoteSessionPurgeJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("purge expired quote sessions failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Debug("purged expired quote sessions", zap.Int64("count", n))
	}
}
