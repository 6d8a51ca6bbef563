package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"chalkstone_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSchedulerConfig struct {
	url   string
	queue string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 0 }

type recordingNotifier struct {
	status   []string
	reported []int64
	err      error
}

func (n *recordingNotifier) NotifyIssueStatusChanged(_ context.Context, issueID int64, status string) error {
	n.status = append(n.status, status)
	return n.err
}

func (n *recordingNotifier) NotifyIssueReported(_ context.Context, issueID int64) error {
	n.reported = append(n.reported, issueID)
	return n.err
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewIssueStatusChangedTask(IssueStatusChangedPayload{IssueID: 4, Status: "RESOLVED"})
	require.NoError(t, err)
	assert.Equal(t, TaskIssueStatusChanged, task.Type())
	assert.JSONEq(t, `{"issueId": 4, "status": "RESOLVED"}`, string(task.Payload()))

	_, err = ParseIssueStatusChangedPayload(asynq.NewTask(TaskIssueStatusChanged, []byte(`{"issueId": 4}`)))
	assert.Error(t, err)
	_, err = ParseIssueReportedPayload(asynq.NewTask(TaskIssueReported, []byte(`nope`)))
	assert.Error(t, err)
}

func TestWorkerHandlers(t *testing.T) {
	notifier := &recordingNotifier{}
	w := &Worker{mux: asynq.NewServeMux(), notifier: notifier, log: logger.Nop()}
	w.registerHandlers()
	ctx := context.Background()

	task, err := NewIssueStatusChangedTask(IssueStatusChangedPayload{IssueID: 4, Status: "CLOSED"})
	require.NoError(t, err)
	require.NoError(t, w.mux.ProcessTask(ctx, task))

	task, err = NewIssueReportedTask(IssueReportedPayload{IssueID: 9})
	require.NoError(t, err)
	require.NoError(t, w.mux.ProcessTask(ctx, task))

	assert.Equal(t, []string{"CLOSED"}, notifier.status)
	assert.Equal(t, []int64{9}, notifier.reported)

	err = w.mux.ProcessTask(ctx, asynq.NewTask(TaskIssueReported, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerPropagatesNotifierErrors(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	w := &Worker{mux: asynq.NewServeMux(), notifier: notifier, log: logger.Nop()}
	w.registerHandlers()

	task, err := NewIssueReportedTask(IssueReportedPayload{IssueID: 1})
	require.NoError(t, err)
	assert.EqualError(t, w.mux.ProcessTask(context.Background(), task), "smtp down")
}

func TestNewClientRequiresRedis(t *testing.T) {
	_, err := NewClient(testSchedulerConfig{})
	assert.Error(t, err)

	_, err = NewWorker(testSchedulerConfig{}, &recordingNotifier{}, logger.Nop())
	assert.Error(t, err)
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.internal:6380/3", true)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 3, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)

	opt, err = redisClientOpt("redis://localhost:6379", false)
	require.NoError(t, err)
	assert.Nil(t, opt.TLSConfig)
}

func TestQueueName(t *testing.T) {
	assert.Equal(t, "default", queueName(testSchedulerConfig{}))
	assert.Equal(t, "council", queueName(testSchedulerConfig{queue: "council"}))
}

func TestNilClientEnqueueIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.EnqueueIssueReported(context.Background(), "evt", 1))
	assert.NoError(t, c.Close())
}

type countingWarmer struct{ calls chan struct{} }

func (w countingWarmer) Warm(context.Context) error {
	w.calls <- struct{}{}
	return nil
}

func TestAnalyticsRefreshRunsImmediately(t *testing.T) {
	warmer := countingWarmer{calls: make(chan struct{}, 4)}
	refresh := NewAnalyticsRefresh(warmer, logger.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresh.Run(ctx)
		close(done)
	}()

	select {
	case <-warmer.calls:
	case <-time.After(time.Second):
		t.Fatal("refresh did not run")
	}
	cancel()
	<-done
}
