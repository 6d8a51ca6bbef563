package scheduler

import (
	"context"
	"fmt"

	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// IssueNotifier delivers the e-mails behind the issue tasks.
type IssueNotifier interface {
	NotifyIssueStatusChanged(ctx context.Context, issueID int64, status string) error
	NotifyIssueReported(ctx context.Context, issueID int64) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	notifier IssueNotifier
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, notifier IssueNotifier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		notifier: notifier,
		log:      log,
	}
	w.registerHandlers()

	return w, nil
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TaskIssueStatusChanged, w.handleIssueStatusChanged)
	w.mux.HandleFunc(TaskIssueReported, w.handleIssueReported)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleIssueStatusChanged(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseIssueStatusChangedPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return w.notifier.NotifyIssueStatusChanged(ctx, payload.IssueID, payload.Status)
}

func (w *Worker) handleIssueReported(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseIssueReportedPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return w.notifier.NotifyIssueReported(ctx, payload.IssueID)
}
