package routing

import (
	"strings"

	"github.com/datadrift/datadrift/pkg/models"
)

// Page identifies the screen a route renders.
type Page string

const (
	PageDashboard       Page = "dashboard"
	PageDataSources     Page = "data-sources"
	PageDataSourceNew   Page = "data-source-new"
	PageDataSourceEdit  Page = "data-source-edit"
	PageDataViews       Page = "data-views"
	PageAutomationRules Page = "automation-rules"
	PageExecutions      Page = "executions"
	PageReports         Page = "reports"
	PageTemplates       Page = "templates"
	PageAuditLogs       Page = "audit-logs"
	PageSettings        Page = "settings"
)

// Route is one entry of the console's navigation table.
type Route struct {
	// Pattern segments in braces ("{id}") capture path parameters.
	Pattern string
	Page    Page
	Label   string
	// Roles allowed to view the page; empty means any signed-in user.
	Roles []models.Role
}

var (
	adminOnly      = []models.Role{models.RoleAdmin}
	adminOrManager = []models.Role{models.RoleAdmin, models.RoleManager}
)

// Routes is the navigation table in sidebar order. The first entry is the
// fallback for unknown locations.
var Routes = []Route{
	{Pattern: "/", Page: PageDashboard, Label: "Dashboard"},
	{Pattern: "/data-sources", Page: PageDataSources, Label: "Data Sources", Roles: adminOnly},
	{Pattern: "/data-sources/new", Page: PageDataSourceNew, Label: "New Data Source", Roles: adminOnly},
	{Pattern: "/data-sources/{id}/edit", Page: PageDataSourceEdit, Label: "Edit Data Source", Roles: adminOnly},
	{Pattern: "/data-views", Page: PageDataViews, Label: "Data Views", Roles: adminOrManager},
	{Pattern: "/automation-rules", Page: PageAutomationRules, Label: "Automation Rules", Roles: adminOrManager},
	{Pattern: "/executions", Page: PageExecutions, Label: "Executions", Roles: adminOrManager},
	{Pattern: "/reports", Page: PageReports, Label: "Reports"},
	{Pattern: "/templates", Page: PageTemplates, Label: "Templates", Roles: adminOrManager},
	{Pattern: "/audit-logs", Page: PageAuditLogs, Label: "Audit Logs", Roles: adminOrManager},
	{Pattern: "/settings", Page: PageSettings, Label: "Settings", Roles: adminOnly},
}

// Resolved is a location matched against Routes.
type Resolved struct {
	Route  Route
	Params map[string]string
	// Path is the normalized location, "/" when the input matched nothing.
	Path string
	// Fallback is set when the location matched no route.
	Fallback bool
}

// Param returns a captured path parameter.
func (m Resolved) Param(name string) string {
	return m.Params[name]
}

// Match maps location to its route. Query strings, fragments and trailing
// slashes are ignored; unknown paths resolve to the dashboard.
func Match(location string) Resolved {
	path := normalize(location)
	segments := split(path)

	for _, r := range Routes {
		if params, ok := matchSegments(split(r.Pattern), segments); ok {
			return Resolved{Route: r, Params: params, Path: path}
		}
	}
	return Resolved{Route: Routes[0], Params: map[string]string{}, Path: "/", Fallback: true}
}

// Navigate resolves location and decides what it shows for g. A redirect
// to login remembers the location as typed, query included, unless it was
// replaced by the fallback route.
func Navigate(g Guard, location string) (Resolved, Decision) {
	m := Match(location)
	from := strings.TrimSpace(location)
	if m.Fallback {
		from = m.Path
	}
	return m, Decide(g, m.Route.Roles, from)
}

func normalize(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	location = "/" + strings.Trim(strings.TrimSpace(location), "/")
	return location
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if path[i] == "" {
				return nil, false
			}
			params[seg[1:len(seg)-1]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}
