package models

import "time"

// Visualisation is a dashboard tile built from a data view.
type Visualisation struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"` // table, chart
	DataViewID string `json:"dataViewId"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
}

// ReportSummary is a published report listed on the dashboard.
type ReportSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
	DownloadURL string    `json:"downloadUrl"`
}

// ExecutionStatus is the outcome of an automation run.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionRunning ExecutionStatus = "running"
)

// ExecutionLogEntry is one automation rule execution.
type ExecutionLogEntry struct {
	ID             string          `json:"id"`
	ExecutedAt     time.Time       `json:"executedAt"`
	AutomationName string          `json:"automationName"`
	Status         ExecutionStatus `json:"status"`
	ErrorSummary   string          `json:"errorSummary,omitempty"`
	ErrorDetails   string          `json:"errorDetails,omitempty"`
}
