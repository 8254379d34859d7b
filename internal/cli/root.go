package cli

import (
	"context"
	"fmt"

	"resumatch/internal/app"
	"resumatch/internal/common"
	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumatch",
	Short: "Match a resume against a job description and tailor its bullets",
	Long: `Resumatch scores how well a resume fits a job description, lists the
skills the job asks for that the resume does not show, links matching
evidence between the two, and rewrites resume bullets for the role.

Inputs may be .txt, .pdf or .docx files, local or s3://bucket/key.
Without a Gemini API key, gaps fall back to keyword matching and rewrites
return the original bullet; scoring needs the embedding backend.`,
	SilenceUsage: true,
}

// Execute runs the root command with the config and logger attached to ctx
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("config not found in context")
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, fmt.Errorf("logger not found in context")
}

// newContainer builds the services for one command run
func newContainer(cmd *cobra.Command, observability bool) (*app.Container, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	return app.NewContainer(cmd.Context(), cfg, logger, app.Options{
		Version:       Version,
		Observability: observability,
	})
}

// addOutputFlags registers -o/--output and --format on cmd, with completion
func addOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveFormat is the PreRunE shared by commands with formatted output
func resolveFormat(cmdConfig *common.CommandConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		format, err := common.ResolveOutputFormat(cmdConfig.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
		if err != nil {
			return err
		}
		cmdConfig.OutputFormat = format
		return nil
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(bulletsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
