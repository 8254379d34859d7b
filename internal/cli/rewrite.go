package cli

import (
	"context"
	"fmt"
	"strings"

	"resumatch/internal/common"
	"resumatch/internal/errors"
	"resumatch/internal/textproc"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [bullet]",
	Short: "Rewrite resume bullets for a job description",
	Long: `Rewrite one resume bullet, or every line of a bullets file with --batch,
so it speaks to the target role without inventing experience.

Examples:
  resumatch rewrite "Built internal tools" --jd job.pdf
  resumatch rewrite --batch bullets.txt --jd job.txt --context resume.docx

Without a configured backend each bullet is returned unchanged.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if rewriteOpts.batchFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	PreRunE: resolveFormat(&rewriteConfig),
	RunE:    runRewrite,
}

var rewriteConfig common.CommandConfig

var rewriteOpts struct {
	jobFile     string
	contextFile string
	batchFile   string
}

func init() {
	addOutputFlags(rewriteCmd, &rewriteConfig)
	rewriteCmd.Flags().StringVar(&rewriteOpts.jobFile, "jd", "", "Job description file or s3:// URI")
	rewriteCmd.Flags().StringVar(&rewriteOpts.contextFile, "context", "", "Resume file used as extra context")
	rewriteCmd.Flags().StringVar(&rewriteOpts.batchFile, "batch", "", "File with one bullet per line")
}

// rewriteSources lists the documents to load, in the order createInput expects:
// job description, context, then the batch file
func rewriteSources() []string {
	var sources []string
	for _, source := range []string{rewriteOpts.jobFile, rewriteOpts.contextFile, rewriteOpts.batchFile} {
		if source != "" {
			sources = append(sources, source)
		}
	}
	return sources
}

// splitBatchBullets returns one bullet per non-blank line, without marker glyphs
func splitBatchBullets(text string) []string {
	var bullets []string
	for line := range strings.SplitSeq(text, "\n") {
		if bullet := textproc.StripMarker(strings.TrimSpace(line)); bullet != "" {
			bullets = append(bullets, bullet)
		}
	}
	return bullets
}

func runRewrite(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer container.Close(context.WithoutCancel(cmd.Context()))
	logger := container.Logger
	sources := rewriteSources()

	if rewriteOpts.batchFile != "" {
		if rewriteOpts.jobFile == "" {
			return errors.NewValidationError(errors.ErrCodeMissingField,
				"--jd is required with --batch", nil)
		}

		createInput := func(contents []string) (types.BatchRewriteInput, error) {
			if len(contents) != len(sources) {
				return types.BatchRewriteInput{}, fmt.Errorf("expected %d documents, got %d", len(sources), len(contents))
			}
			input := types.BatchRewriteInput{
				JobDescription: contents[0],
				Bullets:        splitBatchBullets(contents[len(contents)-1]),
			}
			if rewriteOpts.contextFile != "" {
				input.Context = contents[1]
			}
			return input, nil
		}
		logDetails := func(input types.BatchRewriteInput, cfg common.CommandConfig) {
			logger.Info("Starting batch rewrite",
				"batch_file", rewriteOpts.batchFile,
				"bullets", len(input.Bullets),
				"output_format", cfg.OutputFormat)
		}
		return common.RunDocumentCommand(cmd.Context(), logger, container.Loader, rewriteConfig, sources,
			createInput, container.Analyzer.RewriteBatch, logDetails)
	}

	createInput := func(contents []string) (types.RewriteInput, error) {
		if len(contents) != len(sources) {
			return types.RewriteInput{}, fmt.Errorf("expected %d documents, got %d", len(sources), len(contents))
		}
		input := types.RewriteInput{Original: args[0]}
		i := 0
		if rewriteOpts.jobFile != "" {
			input.JobDescription = contents[i]
			i++
		}
		if rewriteOpts.contextFile != "" {
			input.Context = contents[i]
		}
		return input, nil
	}
	logDetails := func(input types.RewriteInput, cfg common.CommandConfig) {
		logger.Info("Starting bullet rewrite",
			"bullet_length", len(input.Original),
			"has_job_description", input.JobDescription != "",
			"output_format", cfg.OutputFormat)
	}
	return common.RunDocumentCommand(cmd.Context(), logger, container.Loader, rewriteConfig, sources,
		createInput, container.Analyzer.Rewrite, logDetails)
}
