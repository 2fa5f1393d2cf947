package apiclient

import (
	"context"
	"time"

	"github.com/datadrift/datadrift/pkg/models"
)

// The dashboard endpoints do not exist on the server yet; these return fixed
// sample data so the dashboard can be exercised end to end.
// TODO: call GET /api/dashboard/visualisations, /api/reports and /api/executions once the server serves them.

// Visualisations lists dashboard tiles.
func (c *Client) Visualisations(ctx context.Context) ([]models.Visualisation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.Visualisation{
		{ID: "vis-1", Title: "Example table visualisation", Type: "table", DataViewID: "dv-1", W: 2, H: 2},
	}, nil
}

// Reports lists published reports.
func (c *Client) Reports(ctx context.Context) ([]models.ReportSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.ReportSummary{
		{
			ID:          "rep-1",
			Name:        "Monthly data quality overview",
			Description: "High-level summary of key data quality metrics.",
			Author:      "Data Platform Team",
			CreatedAt:   time.Now().UTC(),
			DownloadURL: "#",
		},
	}, nil
}

// ExecutionLogs lists recent automation runs, newest first.
func (c *Client) ExecutionLogs(ctx context.Context) ([]models.ExecutionLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return []models.ExecutionLogEntry{
		{
			ID:             "exec-1",
			ExecutedAt:     now,
			AutomationName: "Daily freshness checks",
			Status:         models.ExecutionSuccess,
		},
		{
			ID:             "exec-2",
			ExecutedAt:     now.Add(-time.Hour),
			AutomationName: "SLA breach notifications",
			Status:         models.ExecutionFailed,
			ErrorSummary:   "Failed to connect to reporting warehouse",
			ErrorDetails:   "Connection to warehouse `analytics-prod` timed out after 30 seconds. Check network ACLs and credentials.",
		},
	}, nil
}
