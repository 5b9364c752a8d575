package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio_backend/platform/cache"
	"studio_backend/platform/config"

	"github.com/hibiken/asynq"
)

const (
	baselineAuditDelay    = time.Minute
	baselineAuditMaxRetry = 5
)

type Client struct {
	client *asynq.Client
	queue  string
}

// BaselineAuditScheduler enqueues the post-provisioning baseline check.
type BaselineAuditScheduler interface {
	ScheduleBaselineAudit(ctx context.Context, payload BaselineAuditPayload) error
}

var _ BaselineAuditScheduler = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleBaselineAudit enqueues one audit per project. A second enqueue for
// the same project is ignored.
func (c *Client) ScheduleBaselineAudit(ctx context.Context, payload BaselineAuditPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewBaselineAuditTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.ProcessIn(baselineAuditDelay),
		asynq.MaxRetry(baselineAuditMaxRetry),
		asynq.TaskID(TaskBaselineAudit+":"+payload.ProjectID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := cache.ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
