package domain

import "time"

// CreateTargetRequest represents a request to register a webhook target
type CreateTargetRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}

// UpdateTargetRequest represents a request to update a webhook target
type UpdateTargetRequest struct {
	Name     *string `json:"name,omitempty"`
	URL      *string `json:"url,omitempty" binding:"omitempty,url"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CreateScheduleRequest represents a request to create a recurring schedule
type CreateScheduleRequest struct {
	TargetID   string     `json:"target_id" binding:"required"`
	Name       string     `json:"name" binding:"required"`
	Body       string     `json:"body,omitempty"`
	Embed      *Embed     `json:"embed,omitempty"`
	ImageURL   string     `json:"image_url,omitempty" binding:"omitempty,url"`
	Recurrence Recurrence `json:"recurrence" binding:"required"`
}

// UpdateScheduleRequest represents a request to update a recurring schedule.
// Pointer fields distinguish "leave unchanged" from explicit values.
type UpdateScheduleRequest struct {
	Name       *string     `json:"name,omitempty"`
	Body       *string     `json:"body,omitempty"`
	Embed      *Embed      `json:"embed,omitempty"`
	ImageURL   *string     `json:"image_url,omitempty"`
	IsActive   *bool       `json:"is_active,omitempty"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`
}

// CreateDeferredRequest represents a request to schedule a one-off send
type CreateDeferredRequest struct {
	TargetID     string    `json:"target_id" binding:"required"`
	Content      string    `json:"content" binding:"required"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

// ListLogsRequest represents a request to read delivery history
type ListLogsRequest struct {
	TargetID string `form:"target_id" binding:"required"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
