package transport

// IssueAnalyticsRequest filters issue analytics by creation date.
type IssueAnalyticsRequest struct {
	StartDate string `form:"startDate" json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// IssueAnalyticsResponse breaks issue counts down by type, status and month.
type IssueAnalyticsResponse struct {
	TotalIssues    int            `json:"total_issues"`
	IssuesByType   map[string]int `json:"issues_by_type"`
	IssuesByStatus map[string]int `json:"issues_by_status"`
	IssuesByMonth  map[string]int `json:"issues_by_month"`
}

// EngineerRef identifies an engineer in performance results.
type EngineerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EngineerPerformance summarises one engineer's workload.
type EngineerPerformance struct {
	Engineer             EngineerRef    `json:"engineer"`
	IssuesResolved       int            `json:"issues_resolved"`
	AvgResolutionTime    string         `json:"avg_resolution_time"`
	AvgResolutionSeconds float64        `json:"avg_resolution_seconds"`
	ResolvedIssuesByType map[string]int `json:"resolved_issues_by_type"`
	IssuesAssigned       int            `json:"issues_assigned"`
	AssignedIssuesByType map[string]int `json:"assigned_issues_by_type"`
	TotalIssues          int            `json:"total_issues"`
}

// ChartValue is one slice of a pie or bar chart.
type ChartValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TimelineValue is one day of the reported/resolved chart.
type TimelineValue struct {
	Date     string `json:"date"`
	Reported int    `json:"reported"`
	Resolved int    `json:"resolved"`
}

// StaffPerformance is one bar of the staff chart.
type StaffPerformance struct {
	StaffName string `json:"staffName"`
	Assigned  int    `json:"assigned"`
	Resolved  int    `json:"resolved"`
}

// DashboardResponse is the staff dashboard in chart-ready form.
type DashboardResponse struct {
	TotalIssues       int                `json:"totalIssues"`
	ResolvedIssues    int                `json:"resolvedIssues"`
	PendingIssues     int                `json:"pendingIssues"`
	AvgResolutionTime string             `json:"avgResolutionTime"`
	IssuesByType      []ChartValue       `json:"issuesByType"`
	IssuesByStatus    []ChartValue       `json:"issuesByStatus"`
	IssuesTimeline    []TimelineValue    `json:"issuesTimeline"`
	StaffPerformance  []StaffPerformance `json:"staffPerformance"`
}
