package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TaskIssueStatusChanged = "issues.status_changed"

const TaskIssueReported = "issues.reported"

type IssueStatusChangedPayload struct {
	IssueID int64  `json:"issueId"`
	Status  string `json:"status"`
}

type IssueReportedPayload struct {
	IssueID int64 `json:"issueId"`
}

func NewIssueStatusChangedTask(payload IssueStatusChangedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIssueStatusChanged, data), nil
}

func ParseIssueStatusChangedPayload(task *asynq.Task) (IssueStatusChangedPayload, error) {
	var payload IssueStatusChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return IssueStatusChangedPayload{}, err
	}
	if payload.IssueID <= 0 || payload.Status == "" {
		return IssueStatusChangedPayload{}, fmt.Errorf("invalid %s payload", TaskIssueStatusChanged)
	}
	return payload, nil
}

func NewIssueReportedTask(payload IssueReportedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIssueReported, data), nil
}

func ParseIssueReportedPayload(task *asynq.Task) (IssueReportedPayload, error) {
	var payload IssueReportedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return IssueReportedPayload{}, err
	}
	if payload.IssueID <= 0 {
		return IssueReportedPayload{}, fmt.Errorf("invalid %s payload", TaskIssueReported)
	}
	return payload, nil
}
