package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vk/kubelower/internal/app"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

var headingColor = color.RGB(50, 108, 229)

// Execute builds the command tree and runs it against args.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	// Disable color output if NO_COLOR is set in the environment
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand returns the kubelower command with every subcommand attached.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kubelower",
		Short: "Lower a service topology into Kubernetes resources",
		Long: headingColor.Sprintf("Usage: kubelower [global options] <subcommand> [args]\n") + "\n" +
			"kubelower reads a topology of Services, Deployments and Containers from\n" +
			"HCL files and rewrites it into Kubernetes resource nodes, each carrying\n" +
			"its serialized manifest.\n",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	setUsageTemplate(cmd)

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, DefaultConfigFile, "Path to a TOML config file.")
	flags.StringP(flagOutput, "o", app.StdoutOutput, "Write results to this file. '-' is stdout.")
	flags.String(flagLogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String(flagLogFormat, "text", "Log output format. Options: 'text' or 'json'.")
	flags.String(flagMetricsFile, "", "Write pass counters to this file in Prometheus text format.")
	flags.String(flagTag, "", "Prefix of the provenance tags written on created elements.")

	cmd.AddCommand(
		newRenderCommand(),
		newInspectCommand(),
		newVersionCommand(),
	)
	return cmd
}

func setUsageTemplate(cmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", headingColor.SprintFunc())
	usageTemplate := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(cmd.UsageTemplate())
	cmd.SetUsageTemplate(usageTemplate)
}

func requirePaths(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError(errors.New("at least one path to .hcl files is required"))
	}
	return nil
}
