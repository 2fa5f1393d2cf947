package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datadrift/datadrift/pkg/datasources"
	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/pages"
)

// ErrInvalidForm is returned after field errors have been printed.
var ErrInvalidForm = errors.New("data source is invalid")

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sources",
		Aliases: []string{"data-sources"},
		Short:   "Manage data sources (admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return opts.guard(cmd.Context(), cmd.OutOrStdout(), "/data-sources")
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List data sources",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sources, err := opts.app.API.ListDataSources(cmd.Context())
				writeLine(cmd.OutOrStdout(), pages.DataSourceList(sources, err))
				return err
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one data source with secrets masked",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ds, err := opts.app.API.GetDataSource(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), pages.DataSourceDetail(ds))
				return nil
			},
		},
		newSourceCreateCmd(opts),
		newSourceUpdateCmd(opts),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a data source",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rows := datasources.NewRowActions(opts.app.API)
				if err := rows.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), pages.Deleted(args[0]))
				return nil
			},
		},
		newSourceTestCmd(opts),
	)
	return cmd
}

func newSourceCreateCmd(opts *rootOptions) *cobra.Command {
	f := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := datasources.NewCreateForm(opts.app.API)
			if err := f.apply(cmd, form); err != nil {
				return err
			}
			ds, errs, err := form.Submit(cmd.Context())
			return reportSubmit(cmd, ds, errs, err, true)
		},
	}
	f.register(cmd, false)
	return cmd
}

func newSourceUpdateCmd(opts *rootOptions) *cobra.Command {
	f := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a data source; stored secrets are kept unless --update-secret names them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.app.API.GetDataSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			form := datasources.NewEditForm(opts.app.API, *ds)
			if err := f.apply(cmd, form); err != nil {
				return err
			}
			saved, errs, err := form.Submit(cmd.Context())
			return reportSubmit(cmd, saved, errs, err, false)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newSourceTestCmd(opts *rootOptions) *cobra.Command {
	f := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "test [id]",
		Short: "Test a stored data source, or an unsaved one described by flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				res, err := datasources.NewRowActions(opts.app.API).Test(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return reportTest(cmd, res)
			}

			form := datasources.NewCreateForm(opts.app.API)
			if err := f.apply(cmd, form); err != nil {
				return err
			}
			if form.Name == "" {
				// Unsaved tests still need a name for the request; it is not stored.
				form.Name = "connection test"
			}
			res, errs := form.Test(cmd.Context())
			if len(errs) > 0 {
				writeLine(cmd.OutOrStdout(), pages.FieldErrors(errs))
				return ErrInvalidForm
			}
			return reportTest(cmd, res)
		},
	}
	f.register(cmd, false)
	return cmd
}

func reportSubmit(cmd *cobra.Command, ds *models.DataSource, errs map[string]string, err error, created bool) error {
	out := cmd.OutOrStdout()
	switch {
	case len(errs) > 0:
		writeLine(out, pages.FieldErrors(errs))
		return ErrInvalidForm
	case err != nil:
		return err
	default:
		writeLine(out, pages.Saved(ds, created))
		return nil
	}
}

func reportTest(cmd *cobra.Command, res datasources.TestResult) error {
	writeLine(cmd.OutOrStdout(), pages.TestResult(res))
	if !res.Success {
		return errors.New("connection test failed")
	}
	return nil
}

// sourceFlags are the create/update/test flags. Only flags the user set are
// applied, so an update changes just what was named.
type sourceFlags struct {
	name string
	typ  string

	host     string
	port     int
	database string
	username string
	password string
	driver   string

	url     string
	apiKey  string
	token   string
	headers []string

	path     string
	encoding string

	updateSecrets []string
}

func (f *sourceFlags) register(cmd *cobra.Command, edit bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "display name")
	fs.StringVar(&f.typ, "type", "", "CSV, JSON, DATABASE or REST")

	fs.StringVar(&f.host, "host", "", "DATABASE: host")
	fs.IntVar(&f.port, "port", 0, "DATABASE: port")
	fs.StringVar(&f.database, "database", "", "DATABASE: database name")
	fs.StringVar(&f.username, "username", "", "DATABASE: user")
	fs.StringVar(&f.password, "password", "", "DATABASE: password (secret)")
	fs.StringVar(&f.driver, "driver", "", "DATABASE: postgres or sqlserver")

	fs.StringVar(&f.url, "url", "", "REST: endpoint URL")
	fs.StringVar(&f.apiKey, "api-key", "", "REST: API key (secret)")
	fs.StringVar(&f.token, "token", "", "REST: bearer token (secret)")
	fs.StringArrayVar(&f.headers, "header", nil, "REST: extra header as key=value (repeatable)")

	fs.StringVar(&f.path, "path", "", "CSV/JSON: file path or http(s) URL")
	fs.StringVar(&f.encoding, "encoding", "", "CSV/JSON: text encoding")

	if edit {
		fs.StringArrayVar(&f.updateSecrets, "update-secret", nil,
			"replace the stored secret with this key (password, apiKey, token; repeatable)")
	}
}

// secretFlags maps config secret keys to the flags that set them.
var secretFlags = map[string]string{
	"password": "password",
	"apiKey":   "api-key",
	"token":    "token",
}

// apply copies the set flags into form.
func (f *sourceFlags) apply(cmd *cobra.Command, form *datasources.Form) error {
	changed := cmd.Flags().Changed

	if changed("name") {
		form.Name = f.name
	}
	if changed("type") {
		t := models.DataSourceType(strings.ToUpper(strings.TrimSpace(f.typ)))
		if t != form.Type() {
			form.SetType(t)
		}
	}

	for _, key := range f.updateSecrets {
		if _, ok := secretFlags[key]; !ok {
			return fmt.Errorf("--update-secret: unknown secret %q (want one of %s)", key, strings.Join(sortedKeys(secretFlags), ", "))
		}
		form.SetUpdateSecret(key, true)
	}
	if form.IsEdit() {
		for key, flag := range secretFlags {
			if changed(flag) && !form.UpdatingSecret(key) {
				return fmt.Errorf("--%s replaces a stored secret; add --update-secret %s", flag, key)
			}
		}
	}

	switch c := form.Config.(type) {
	case *datasources.DatabaseConfig:
		setString(changed("host"), &c.Host, f.host)
		setString(changed("database"), &c.Database, f.database)
		setString(changed("username"), &c.Username, f.username)
		setString(changed("password"), &c.Password, f.password)
		setString(changed("driver"), &c.Driver, f.driver)
		if changed("port") {
			port := f.port
			c.Port = &port
		}
	case *datasources.RESTConfig:
		setString(changed("url"), &c.URL, f.url)
		setString(changed("api-key"), &c.APIKey, f.apiKey)
		setString(changed("token"), &c.Token, f.token)
		if changed("header") {
			headers, err := parseHeaders(f.headers)
			if err != nil {
				return err
			}
			c.Headers = headers
		}
	case *datasources.FileConfig:
		setString(changed("path"), &c.Path, f.path)
		setString(changed("encoding"), &c.Encoding, f.encoding)
	}
	return nil
}

func setString(changed bool, dst *string, v string) {
	if changed {
		*dst = v
	}
}

func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--header %q: want key=value", p)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
