package scheduler

import (
	"context"
	"fmt"

	"studio_backend/platform/config"
	"studio_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	auditor *BaselineAuditor
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, auditor *BaselineAuditor, log *logger.Logger) (*Worker, error) {
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

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		auditor: auditor,
		log:     log,
	}

	mux.HandleFunc(TaskBaselineAudit, w.handleBaselineAudit)

	return w, nil
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

func (w *Worker) handleBaselineAudit(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseBaselineAuditPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	_, err = w.auditor.Audit(ctx, payload)
	return err
}
