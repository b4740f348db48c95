package main

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskflow/internal/api"
	"github.com/tgienger/taskflow/internal/auth"
	"github.com/tgienger/taskflow/internal/config"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/logging"
	"github.com/tgienger/taskflow/internal/session"
	"github.com/tgienger/taskflow/internal/ui"
)

type rootOptions struct {
	configPath string
	apiURL     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow - projects and tasks in your terminal",
		Long:          `TaskFlow is a terminal client for the TaskFlow project and task tracker.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskflow/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "backend API root, overrides config and environment")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// env is everything a command needs to talk to the backend
type env struct {
	cfg     *config.Config
	db      *db.DB
	client  *api.Client
	session *session.Store
	gateway *auth.Gateway
	logs    io.Closer
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	return cfg, nil
}

func bootstrap(opts *rootOptions) (*env, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		if dataDir, err = db.DefaultDataDir(); err != nil {
			return nil, err
		}
	}

	logs, err := logging.Init(dataDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	database, err := db.New(dataDir)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	client := api.New(cfg.APIURL, database, api.WithTimeout(cfg.RequestTimeout))
	store := session.NewStore()
	gateway := auth.NewGateway(client.Auth, database, store)

	slog.Info("started", "version", version, "api", client.BaseURL(), "data_dir", dataDir)

	return &env{
		cfg:     cfg,
		db:      database,
		client:  client,
		session: store,
		gateway: gateway,
		logs:    logs,
	}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
	e.logs.Close()
}

func runTUI(opts *rootOptions) error {
	e, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	app := ui.NewApp(ui.Options{
		Gateway:  e.gateway,
		Session:  e.session,
		Projects: e.client.Projects,
		Tasks:    e.client.Tasks,
		Settings: e.db,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskflow %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
