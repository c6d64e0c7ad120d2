package main

import (
	"github.com/spf13/cobra"

	"github.com/emotion-constellation/constellation-core/pkg/config"
)

var version = "0.3.0"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	dataDir    string
	locale     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "constellationd",
		Short:         "Emotion constellation frame daemon",
		Long:          "Runs the emotion constellation simulation and streams frames, overlays and events to clients.",
		Version:       version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate("constellationd {{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml or .toml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")
	flags.StringVar(&opts.dataDir, "data", "", "dataset directory")
	flags.StringVar(&opts.locale, "locale", "", "dataset locale")

	root.AddCommand(
		serveCmd(opts),
		validateCmd(opts),
		localesCmd(),
	)
	return root
}

// load reads the config file and applies flag overrides
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if o.dataDir != "" {
		cfg.Dataset.Dir = o.dataDir
	}
	if o.locale != "" {
		cfg.Dataset.Locale = o.locale
	}
	return cfg, nil
}
