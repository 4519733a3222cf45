package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/shuldan/featurehub/pkg/config"
	"github.com/shuldan/featurehub/pkg/feature"
	"github.com/shuldan/featurehub/pkg/host"
)

type rootFlags struct {
	configs   []string
	envPrefix string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "apphost",
		Short: "Load, share services between and run feature apps",
		Long: `apphost loads feature app definitions from manifest sources (file,
redis, sql, plugin), registers their services and keeps one scope per
instance until shutdown.

Configuration is read from the first readable --config file and overlaid
by environment variables, e.g. APPHOST_SOURCES__FILE__ROOT=/srv/apps.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringSliceVarP(&flags.configs, "config", "c", []string{"apphost.yaml"}, "config files, the first readable one is used")
	root.PersistentFlags().StringVar(&flags.envPrefix, "env-prefix", "APPHOST_", "prefix of environment overrides")

	root.AddCommand(
		newRunCommand(flags),
		newInspectCommand(flags),
		newPutCommand(flags),
		newMigrateCommand(flags),
	)
	return root
}

func openHost(ctx context.Context, flags *rootFlags) (*host.Host, error) {
	cfg, err := config.Load(flags.envPrefix, flags.configs...)
	if err != nil {
		return nil, err
	}
	return host.New(ctx, cfg, builtinFactories())
}

func newRunCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Preload the configured apps and serve until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := openHost(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()
			return h.Run(cmd.Context())
		},
	}
}

type description struct {
	Location             string               `yaml:"location"`
	ID                   string               `yaml:"id"`
	Dependencies         feature.Dependencies `yaml:"dependencies,omitempty"`
	OptionalDependencies feature.Dependencies `yaml:"optional_dependencies,omitempty"`
	OwnServices          []string             `yaml:"own_services,omitempty"`
}

func describe(location string, d *feature.Definition) description {
	out := description{
		Location:             location,
		ID:                   d.ID,
		Dependencies:         d.Dependencies,
		OptionalDependencies: d.OptionalDependencies,
	}
	for _, s := range d.OwnServices {
		out.OwnServices = append(out.OwnServices, s.ID)
	}
	return out
}

func newInspectCommand(flags *rootFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "inspect <location>...",
		Short: "Load definitions and print their dependencies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			h, err := openHost(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			if err := h.Manager().PreloadAll(ctx, args...); err != nil {
				return err
			}

			descriptions := make([]description, 0, len(args))
			for _, location := range args {
				handle, err := h.Manager().AsyncDefinition(location)
				if err != nil {
					return err
				}
				descriptions = append(descriptions, describe(location, handle.Value()))
			}

			out, err := yaml.Marshal(descriptions)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the definitions")
	return cmd
}

func newPutCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "put <location> <manifest-file>",
		Short: "Store a manifest in the redis or sql source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			h, err := openHost(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			if err := h.Put(cmd.Context(), args[0], manifest); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			return err
		},
	}
}

func newMigrateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the manifest table of the sql source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := openHost(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			applied, err := h.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "manifest table is up to date")
				return err
			}
			for _, id := range applied {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
