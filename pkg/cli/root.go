package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/config"
	"github.com/datadrift/datadrift/pkg/logging"
)

// rootOptions are the persistent flags plus the app built from them.
type rootOptions struct {
	configPath string
	apiURL     string
	mockAuth   bool
	verbose    bool

	app *App
}

// newRootCmd returns the datadrift command tree and the options its
// commands share.
func newRootCmd(version string) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "datadrift",
		Short:         "DataDrift console for data sources, dashboards and reports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "client config file (default $XDG_CONFIG_HOME/datadrift/client.yaml)")
	pf.StringVar(&opts.apiURL, "api-url", "", "DataDrift server URL (overrides config)")
	pf.BoolVar(&opts.mockAuth, "mock-auth", false, "sign in locally without the server (development only)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newHealthCmd(opts),
		newOpenCmd(opts),
		newDashboardCmd(opts),
		newSourcesCmd(opts),
		newReportsCmd(opts),
		newExecutionsCmd(opts),
	)
	return root, opts
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClient(o.configPath)
	if err != nil {
		return err
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.mockAuth {
		cfg.MockAuth = true
	}

	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return err
	}

	app, err := NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	o.app = app
	logger.Debug("Client ready", zap.String("api_url", cfg.APIURL), zap.String("session_backend", cfg.Session.Backend))
	return nil
}

// execute runs root with ctx and then releases the app. Cobra skips post-run
// hooks when a command fails, so the release happens here.
func (o *rootOptions) execute(ctx context.Context, root *cobra.Command) error {
	defer o.close()
	return root.ExecuteContext(ctx)
}

func (o *rootOptions) close() {
	if o.app == nil {
		return
	}
	o.app.Close()
	_ = o.app.Logger.Sync()
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, version string) error {
	root, opts := newRootCmd(version)
	return opts.execute(ctx, root)
}
