package pages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/datadrift/datadrift/pkg/datasources"
	"github.com/datadrift/datadrift/pkg/models"
)

const (
	EmptyDataSourcesText   = "Connect your first data source to start monitoring and automating."
	LoadDataSourcesFailed  = "Failed to load data sources."
	ConfirmDeleteText      = "Delete this data source? This cannot be undone."
	CreateDataSourceFailed = "Failed to create data source."
	SaveDataSourceFailed   = "Failed to save."
	DataSourceNotFound     = "Data source not found."
)

// DataSourceList renders the data source list screen. A non-nil err replaces
// the table with its message.
func DataSourceList(sources []models.DataSource, err error) string {
	head := header("Data Sources", "Connections DataDrift monitors and automates against.")
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = LoadDataSourcesFailed
		}
		return join(head, "", errorLine(msg))
	}
	if len(sources) == 0 {
		return join(head, "", mutedStyle.Render(EmptyDataSourcesText), mutedStyle.Render("Add one with: datadrift sources create"))
	}

	rows := make([][]string, 0, len(sources))
	for _, ds := range sources {
		rows = append(rows, []string{ds.ID.String(), ds.Name, string(ds.Type), formatTime(ds.CreatedAt)})
	}
	return join(head, "", grid([]string{"ID", "Name", "Type", "Created at"}, rows),
		mutedStyle.Render(plural(len(sources), "data source", "data sources")))
}

// DataSourceDetail renders one source with its decoded, masked config.
func DataSourceDetail(ds *models.DataSource) string {
	if ds == nil {
		return join(errorLine(DataSourceNotFound))
	}

	lines := []string{
		header(ds.Name, fmt.Sprintf("%s data source", ds.Type)),
		"",
		field("ID", ds.ID.String()),
		field("Created", formatTime(ds.CreatedAt)),
		field("Updated", formatTime(ds.UpdatedAt)),
		section("Configuration", ""),
	}
	lines = append(lines, configLines(ds.Type, datasources.Parse(ds.Config, ds.Type))...)
	return join(lines...)
}

func configLines(t models.DataSourceType, cfg datasources.Config) []string {
	secret := func(key string) string {
		return field(key, models.MaskedValue)
	}

	switch c := cfg.(type) {
	case *datasources.FileConfig:
		return []string{field("path", c.Path), field("encoding", orDash(c.Encoding))}
	case *datasources.DatabaseConfig:
		port := "—"
		if c.Port != nil {
			port = fmt.Sprint(*c.Port)
		}
		driver := c.Driver
		if driver == "" {
			driver = datasources.DriverPostgres
		}
		return []string{
			field("host", c.Host),
			field("port", port),
			field("database", c.Database),
			field("username", c.Username),
			field("driver", driver),
			secret("password"),
		}
	case *datasources.RESTConfig:
		lines := []string{field("url", c.URL), secret("apiKey"), secret("token")}
		keys := make([]string, 0, len(c.Headers))
		for k := range c.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, field("header "+k, c.Headers[k]))
		}
		return lines
	default:
		return []string{mutedStyle.Render(fmt.Sprintf("Unsupported data source type %q.", t))}
	}
}

func field(label, value string) string {
	return fmt.Sprintf("  %-12s %s", label+":", value)
}

// FieldErrors renders validation messages in a stable order.
func FieldErrors(errs map[string]string) string {
	if len(errs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, errorLine(fmt.Sprintf("%s: %s", k, errs[k])))
	}
	return join(lines...)
}

// TestResult renders the outcome of a connection test.
func TestResult(res datasources.TestResult) string {
	return join(statusLine(res.Success, res.Message))
}

// Saved renders the confirmation after a create or update.
func Saved(ds *models.DataSource, created bool) string {
	verb := "Saved"
	if created {
		verb = "Created"
	}
	return join(successStyle.Render(fmt.Sprintf("%s data source %q (%s).", verb, ds.Name, ds.ID)))
}

// Deleted renders the confirmation after a delete.
func Deleted(id string) string {
	return join(successStyle.Render(fmt.Sprintf("Deleted data source %s.", strings.TrimSpace(id))))
}
