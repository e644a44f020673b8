package main

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/audiotag"
	"github.com/simonhull/audiotag/internal/logging"
)

// app holds what the subcommands share.
type app struct {
	configPath string
	logLevel   string
	cfg        *audiotag.Config
	tagger     *audiotag.Tagger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "audiotag",
		Short:         "Read and write audio file tags",
		Version:       audiotag.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newReadCommand(a),
		newWriteCommand(a),
		newPropsCommand(a),
		newDumpCommand(a),
		newFormatsCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := audiotag.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg

	logger := logging.New(cmd.ErrOrStderr(), cfg.Logger)
	a.tagger, err = audiotag.New(audiotag.WithConfig(cfg), audiotag.WithLogger(logger))
	return err
}
