package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shopassist/internal/config"
	"github.com/kailas-cloud/shopassist/internal/version"
)

type rootOptions struct {
	configPath string
	env        string
}

// load reads --config when given, otherwise config/<env>.yaml.
func (o *rootOptions) load() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load(o.env)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "shopassist-loader",
		Short: "Load shop and knowledge seed data into the shopassist record store",
		Long: `shopassist-loader embeds shop and knowledge records from a YAML seed file
and writes them, with their vectors, into the configured backend.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (overrides --env)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment name, selects config/<env>.yaml")

	cmd.AddCommand(newIngestCmd(opts))
	return cmd
}
