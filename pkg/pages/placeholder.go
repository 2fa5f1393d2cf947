package pages

import (
	"github.com/datadrift/datadrift/pkg/routing"
)

type placeholderText struct {
	title       string
	description string
}

var placeholders = map[routing.Page]placeholderText{
	routing.PageDataViews:       {"Data Views", "Define views and queries over your connected data sources."},
	routing.PageAutomationRules: {"Automation Rules", "Define triggers, conditions, and actions for data monitoring and automation."},
	routing.PageExecutions:      {"Executions", "View run history and execution details for rules and jobs."},
	routing.PageReports:         {"Reports", "Create and view reports on monitoring and execution data."},
	routing.PageTemplates:       {"Templates", "Manage reusable templates for rules, views, and reports."},
	routing.PageAuditLogs:       {"Audit Logs", "View audit trail of changes and actions across the platform."},
	routing.PageSettings:        {"Settings", "Configure application and tenant settings."},
}

// IsPlaceholder reports whether p only has a placeholder screen.
func IsPlaceholder(p routing.Page) bool {
	_, ok := placeholders[p]
	return ok
}

// Placeholder renders a page that has no content yet.
func Placeholder(title, description string) string {
	return join(header(title, description), "", mutedStyle.Render("Content area: placeholder"))
}

// PlaceholderFor renders the placeholder screen registered for p.
func PlaceholderFor(p routing.Page) string {
	text, ok := placeholders[p]
	if !ok {
		return Placeholder(string(p), "")
	}
	return Placeholder(text.title, text.description)
}

// Gate renders the non-content outcomes of a navigation: the loading view,
// the not-authorized view and the login redirect notice. It returns "" for
// Render.
func Gate(d routing.Decision) string {
	switch d.Kind {
	case routing.Loading, routing.Forbidden:
		return join(header(d.Title, d.Message))
	case routing.Redirect:
		if d.From == "" || d.From == "/" {
			return join(mutedStyle.Render("Sign in to continue: datadrift login"))
		}
		return join(mutedStyle.Render("Sign in to continue to " + d.From + ": datadrift login"))
	default:
		return ""
	}
}
