// Package domain defines the issue vocabulary shared by the issues,
// analytics and notification modules.
package domain

import (
	"strings"
	"unicode"
)

// IssueType is the category a citizen picks when reporting.
type IssueType string

const (
	TypePothole      IssueType = "POTHOLE"
	TypeStreetLight  IssueType = "STREET_LIGHT"
	TypeGraffiti     IssueType = "GRAFFITI"
	TypeAntiSocial   IssueType = "ANTI_SOCIAL"
	TypeFlyTipping   IssueType = "FLY_TIPPING"
	TypeBlockedDrain IssueType = "BLOCKED_DRAIN"
)

// IssueStatus is the lifecycle position of an issue.
type IssueStatus string

const (
	StatusNew        IssueStatus = "NEW"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusResolved   IssueStatus = "RESOLVED"
	StatusClosed     IssueStatus = "CLOSED"
)

// AllTypes lists the issue types in display order.
var AllTypes = []IssueType{TypePothole, TypeStreetLight, TypeGraffiti, TypeAntiSocial, TypeFlyTipping, TypeBlockedDrain}

// AllStatuses lists the statuses in lifecycle order.
var AllStatuses = []IssueStatus{StatusNew, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether t is a known type.
func (t IssueType) Valid() bool {
	switch t {
	case TypePothole, TypeStreetLight, TypeGraffiti, TypeAntiSocial, TypeFlyTipping, TypeBlockedDrain:
		return true
	}
	return false
}

// Label is the human form, e.g. "Street Light".
func (t IssueType) Label() string { return FormatLabel(string(t)) }

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Label is the human form, e.g. "In Progress".
func (s IssueStatus) Label() string { return FormatLabel(string(s)) }

// Done reports whether work on the issue has finished. Done issues carry a
// closed_at timestamp used for resolution time analytics.
func (s IssueStatus) Done() bool {
	return s == StatusResolved || s == StatusClosed
}

// ParseType accepts any casing and surrounding whitespace.
func ParseType(raw string) (IssueType, bool) {
	t := IssueType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// ParseStatus accepts any casing and surrounding whitespace.
func ParseStatus(raw string) (IssueStatus, bool) {
	s := IssueStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// FormatLabel turns an enum value like "FLY_TIPPING" into "Fly Tipping".
func FormatLabel(value string) string {
	words := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
