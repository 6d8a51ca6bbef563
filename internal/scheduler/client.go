package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"chalkstone_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const maxNotificationRetries = 5

type Client struct {
	client *asynq.Client
	queue  string
}

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

// EnqueueIssueStatusChanged schedules the status e-mail for an issue.
// eventID becomes the task ID, so a replayed event is enqueued once.
func (c *Client) EnqueueIssueStatusChanged(ctx context.Context, eventID string, issueID int64, status string) error {
	task, err := NewIssueStatusChangedTask(IssueStatusChangedPayload{IssueID: issueID, Status: status})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, eventID)
}

// EnqueueIssueReported schedules the receipt e-mail for a new issue.
func (c *Client) EnqueueIssueReported(ctx context.Context, eventID string, issueID int64) error {
	task, err := NewIssueReportedTask(IssueReportedPayload{IssueID: issueID})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, eventID)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, taskID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	opts := []asynq.Option{asynq.Queue(c.queue), asynq.MaxRetry(maxNotificationRetries)}
	if taskID != "" {
		opts = append(opts, asynq.TaskID(taskID))
	}

	_, err := c.client.EnqueueContext(ctx, task, opts...)
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
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
