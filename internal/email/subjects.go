package email

const (
	subjectIssueStatusFmt   = "Update on your report #%d: %s"
	subjectIssueReceivedFmt = "We have received your report #%d"
)
