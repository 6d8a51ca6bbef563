package transport

import "time"

// CreateEngineerRequest adds an engineer. JoinDate is YYYY-MM-DD.
type CreateEngineerRequest struct {
	Name           string `json:"name" yaml:"name" validate:"required,min=2,max=100"`
	Email          string `json:"email" yaml:"email" validate:"required,councilemail,max=255"`
	Phone          string `json:"phone" yaml:"phone" validate:"required,max=30"`
	Specialization string `json:"specialization" yaml:"specialization" validate:"required,max=50"`
	JoinDate       string `json:"join_date" yaml:"join_date" validate:"omitempty,datetime=2006-01-02"`
}

// EngineerResponse is the API view of an engineer.
type EngineerResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Specialization string    `json:"specialization"`
	JoinDate       string    `json:"join_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SeedFile is the YAML document read by ImportEngineers.
type SeedFile struct {
	Engineers []CreateEngineerRequest `yaml:"engineers"`
}

// ImportResult summarises a seed run.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
