package transport

import (
	"bytes"
	"encoding/json"
	"time"
)

// LocationResponse is a map position.
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IssueResponse is the full view of an issue.
type IssueResponse struct {
	ID          int64            `json:"id"`
	Type        string           `json:"type"`
	TypeLabel   string           `json:"typeLabel"`
	Status      string           `json:"status"`
	Description string           `json:"description"`
	Location    LocationResponse `json:"location"`
	Images      []string         `json:"images"`
	ImageURLs   []string         `json:"imageUrls,omitempty"`
	ReportedBy  string           `json:"reportedBy"`
	AssignedTo  *int64           `json:"assignedTo"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	ClosedAt    *time.Time       `json:"closedAt,omitempty"`
}

// IssueSummaryResponse is the list and search view with a shortened description.
type IssueSummaryResponse struct {
	ID          int64            `json:"id"`
	Type        string           `json:"type"`
	Status      string           `json:"status"`
	Description string           `json:"description"`
	Location    LocationResponse `json:"location"`
	AssignedTo  *int64           `json:"assignedTo"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// IssueListResponse is a page of issues.
type IssueListResponse struct {
	Items      []IssueSummaryResponse `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	TotalPages int                    `json:"totalPages"`
}

// MapPinResponse is one marker of the public map.
type MapPinResponse struct {
	ID       int64            `json:"id"`
	Type     string           `json:"type"`
	Status   string           `json:"status"`
	Location LocationResponse `json:"location"`
}

// PhotoLocationResponse is the GPS position read from a photo.
type PhotoLocationResponse struct {
	Location LocationResponse `json:"location"`
}

// ListIssuesRequest holds pagination query parameters.
type ListIssuesRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// SearchIssuesRequest filters issues by type and status.
type SearchIssuesRequest struct {
	Type   string `form:"type" json:"type" validate:"omitempty,issuetype"`
	Status string `form:"status" json:"status" validate:"omitempty,issuestatus"`
}

// MapRequest filters the public map.
type MapRequest struct {
	Type string `form:"type" json:"type" validate:"omitempty,issuetype"`
}

// UpdateIssueRequest is a staff update. AssignedTo distinguishes an absent
// field from an explicit null that unassigns the engineer.
type UpdateIssueRequest struct {
	Status     *string    `json:"status" validate:"omitempty,issuestatus"`
	AssignedTo OptionalID `json:"assigned_to"`
}

// OptionalID is a JSON id that records whether it was present.
type OptionalID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON marks the field as set and accepts null.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}
