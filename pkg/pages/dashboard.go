package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/datadrift/datadrift/pkg/models"
)

// DashboardAPI loads the dashboard sections. *apiclient.Client satisfies it.
type DashboardAPI interface {
	Visualisations(ctx context.Context) ([]models.Visualisation, error)
	Reports(ctx context.Context) ([]models.ReportSummary, error)
	ExecutionLogs(ctx context.Context) ([]models.ExecutionLogEntry, error)
}

// Dashboard is everything the dashboard screen shows.
type Dashboard struct {
	Visualisations []models.Visualisation
	Reports        []models.ReportSummary
	Executions     []models.ExecutionLogEntry
	// Error is the first load failure; sections that loaded are still shown.
	Error string
}

// LoadDashboard fetches the sections concurrently. Execution logs are only
// fetched when includeExecutions is set (admins and managers). If ctx is done
// by the time the loads finish the result is stale and ctx.Err() is returned
// instead.
func LoadDashboard(ctx context.Context, api DashboardAPI, includeExecutions bool) (*Dashboard, error) {
	var (
		d                  Dashboard
		visErr, repErr, ex error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Visualisations, visErr = api.Visualisations(gctx)
		return nil
	})
	g.Go(func() error {
		d.Reports, repErr = api.Reports(gctx)
		return nil
	})
	if includeExecutions {
		g.Go(func() error {
			d.Executions, ex = api.ExecutionLogs(gctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, err := range []error{visErr, repErr, ex} {
		if err != nil {
			d.Error = err.Error()
			break
		}
	}
	return &d, nil
}

var executionStatusLabel = map[models.ExecutionStatus]string{
	models.ExecutionSuccess: "Succeeded",
	models.ExecutionFailed:  "Failed",
	models.ExecutionRunning: "Running",
}

// RenderDashboard renders d for user. Admins and managers (canManage) see
// the execution log section and the authoring hints.
func RenderDashboard(d *Dashboard, user *models.User, canManage bool) string {
	parts := []string{header("Dashboard", "Overview of visualisations, reports, and recent automation runs.")}

	if d.Error != "" {
		parts = append(parts, "", errorLine("Unable to load dashboard: "+d.Error))
	}

	parts = append(parts, section("Visualisations", "Charts and tiles configured for this workspace."))
	switch {
	case len(d.Visualisations) > 0:
		for _, v := range d.Visualisations {
			parts = append(parts, fmt.Sprintf("  • %s (%s visualisation)", v.Title, strings.ToUpper(v.Type)))
		}
	case canManage:
		parts = append(parts, mutedStyle.Render("You haven't created any charts yet. Get started by creating your first visualisation."))
	default:
		parts = append(parts, mutedStyle.Render("Your Data Manager hasn't created any charts yet."))
	}

	parts = append(parts, section("Reports", "Reports shared with or accessible by "+displayName(user)+"."))
	if len(d.Reports) == 0 {
		parts = append(parts, mutedStyle.Render("No reports yet."))
	} else {
		rows := make([][]string, 0, len(d.Reports))
		for _, r := range d.Reports {
			link := "Not available"
			if r.DownloadURL != "" {
				link = r.DownloadURL
			}
			rows = append(rows, []string{r.Name, orDash(r.Description), r.Author, formatTime(r.CreatedAt), link})
		}
		parts = append(parts, grid([]string{"Name", "Description", "Author", "Created", "Download"}, rows))
	}

	if canManage {
		parts = append(parts, section("Execution logs", "Recent automation runs and their status."))
		if len(d.Executions) == 0 {
			parts = append(parts, mutedStyle.Render("No executions yet."))
		} else {
			parts = append(parts, ExecutionTable(d.Executions))
		}
	}

	return join(parts...)
}

// ExecutionTable renders execution log entries, with error summaries for
// failed runs.
func ExecutionTable(entries []models.ExecutionLogEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		label, ok := executionStatusLabel[e.Status]
		if !ok {
			label = string(e.Status)
		}
		rows = append(rows, []string{formatTime(e.ExecutedAt), e.AutomationName, label, orDash(e.ErrorSummary)})
	}
	return grid([]string{"Date / time", "Automation", "Status", "Error"}, rows)
}

// ReportTable renders the report list shown by the reports command.
func ReportTable(reports []models.ReportSummary) string {
	if len(reports) == 0 {
		return join(mutedStyle.Render("No reports yet."))
	}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{r.ID, r.Name, r.Author, formatTime(r.CreatedAt)})
	}
	return join(grid([]string{"ID", "Name", "Author", "Created"}, rows), mutedStyle.Render(plural(len(reports), "report", "reports")))
}

func displayName(u *models.User) string {
	switch {
	case u == nil:
		return "the current user"
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "the current user"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format("2006-01-02 15:04")
}
