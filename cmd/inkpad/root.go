package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/inkpad/internal/config"
	"github.com/platinummonkey/inkpad/internal/logger"
	"github.com/platinummonkey/inkpad/internal/store"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "inkpad",
		Short: "Freehand drawing surfaces with ink, highlights and slides",
		Long: `inkpad keeps a local collection of drawing surfaces.

Features:
  - Replay recorded pointer input into pen, highlighter and eraser strokes
  - Smart highlighter that snaps near-horizontal swipes into straight bars
  - Import PDF slides and images as surface backgrounds
  - Render surfaces to PNG and export them to PDF
  - Summarize surfaces with a vision-capable LLM
  - Optional best-effort sync to a remote HTTP store`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	// Flag names match config keys so they bind directly
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.inkpad.yaml)")
	flags.String("store-file", "", "surface store file (default is $HOME/.inkpad/surfaces.json)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("remote-endpoint", "", "base URL of a remote surface store")

	rootCmd.AddCommand(
		newNewCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newMoveCmd(a),
		newDrawCmd(a),
		newRenderCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSummarizeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	log, err := logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	return nil
}

// openStore loads the surface store and attaches the remote syncer when one
// is configured
func (a *app) openStore() (*store.Manager, error) {
	m, err := store.LoadOrCreate(a.cfg.StoreFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	m.SetLogger(a.log)

	if a.cfg.Remote.Endpoint != "" {
		syncer, err := store.NewRemoteSyncer(&store.RemoteConfig{
			Endpoint: a.cfg.Remote.Endpoint,
			Timeout:  a.cfg.Remote.Timeout,
			Logger:   a.log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure remote sync: %w", err)
		}
		m.SetSyncer(syncer)
	}
	return m, nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.String())
			return nil
		},
	}
}
