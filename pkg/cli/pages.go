package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/pages"
	"github.com/datadrift/datadrift/pkg/routing"
)

// ErrNotAuthorized is returned when the route guard forbids a page.
var ErrNotAuthorized = errors.New("not authorized")

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := opts.app.API.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", h.App, h.Version, h.Status)
			return nil
		},
	}
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Render a console page, e.g. / or /data-sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.open(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.open(cmd.Context(), cmd.OutOrStdout(), "/")
		},
	}
}

func newReportsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.guard(cmd.Context(), cmd.OutOrStdout(), "/reports"); err != nil {
				return err
			}
			reports, err := opts.app.API.Reports(cmd.Context())
			if err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), pages.ReportTable(reports))
			return nil
		},
	}
}

func newExecutionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "executions",
		Short: "List recent automation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.guard(cmd.Context(), cmd.OutOrStdout(), "/executions"); err != nil {
				return err
			}
			entries, err := opts.app.API.ExecutionLogs(cmd.Context())
			if err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), pages.ExecutionTable(entries))
			return nil
		},
	}
}

// guard runs the route decision for location and renders any non-content
// outcome. It returns an error unless the page may render.
func (o *rootOptions) guard(ctx context.Context, out io.Writer, location string) error {
	_, decision := routing.Navigate(o.app.Session, location)
	return o.gateError(ctx, out, decision)
}

// gateError renders d unless it is Render. A login redirect records the
// requested location for the next login.
func (o *rootOptions) gateError(ctx context.Context, out io.Writer, d routing.Decision) error {
	switch d.Kind {
	case routing.Render:
		return nil
	case routing.Redirect:
		o.app.Store.RememberLocation(ctx, d.From)
		writeLine(out, pages.Gate(d))
		return ErrNotSignedIn
	case routing.Forbidden:
		writeLine(out, pages.Gate(d))
		return ErrNotAuthorized
	default:
		writeLine(out, pages.Gate(d))
		return fmt.Errorf("session is %s", d.Kind)
	}
}

// open resolves location through the route guard and renders its page.
func (o *rootOptions) open(ctx context.Context, out io.Writer, location string) error {
	resolved, decision := routing.Navigate(o.app.Session, location)
	if err := o.gateError(ctx, out, decision); err != nil {
		return err
	}

	m := o.app.Session
	switch page := resolved.Route.Page; page {
	case routing.PageDashboard:
		canManage := m.HasRole(models.RoleAdmin, models.RoleManager)
		d, err := pages.LoadDashboard(ctx, o.app.API, canManage)
		if err != nil {
			return err
		}
		writeLine(out, pages.RenderDashboard(d, m.User(), canManage))

	case routing.PageDataSources:
		sources, err := o.app.API.ListDataSources(ctx)
		writeLine(out, pages.DataSourceList(sources, err))

	case routing.PageDataSourceNew:
		writeLine(out, pages.Placeholder("New Data Source",
			"Create one with: datadrift sources create --name NAME --type CSV|JSON|DATABASE|REST [config flags]"))

	case routing.PageDataSourceEdit:
		ds, err := o.app.API.GetDataSource(ctx, resolved.Param("id"))
		if err != nil {
			return err
		}
		writeLine(out, pages.DataSourceDetail(ds))

	default:
		writeLine(out, pages.PlaceholderFor(page))
	}
	return nil
}
