package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vk/kubelower/internal/app"
)

type runFunc func(*app.App, context.Context) (*app.Result, error)

func newRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render PATH...",
		Short: "Rewrite the topology and print the Kubernetes manifests",
		Long: "Loads every .hcl file under the given paths, lowers Services, Deployments\n" +
			"and Containers into resource nodes and writes their manifests as one\n" +
			"multi-document YAML stream.",
		Args: requirePaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, args, (*app.App).Render)
		},
	}
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PATH...",
		Short: "Rewrite the topology and dump the resulting graph",
		Args:  requirePaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, args, (*app.App).Inspect)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "kubelower %s\n", Version)
			return err
		},
	}
}

// runApp loads the configuration and runs fn. When results go to a file the
// summary table is printed to stdout instead.
func runApp(cmd *cobra.Command, args []string, fn runFunc) error {
	cfg, err := Load(cmd.Flags(), args)
	if err != nil {
		return usageError(err)
	}

	a := app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
	res, err := fn(a, cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Output != app.StdoutOutput {
		printSummary(cmd.OutOrStdout(), res)
	}
	return nil
}
