package cli

import (
	"context"
	"fmt"

	"resumatch/internal/common"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Score a resume against a job description",
	Long: `Analyze a resume against a job description. The report includes:
- a 0-100 match score from text embeddings and its band
- skills the job asks for that the resume does not show
- resume and job description sentences that share a key term
- the bullets found in the resume

Either argument may be a local .txt, .pdf or .docx file or an s3://bucket/key URI.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: resolveFormat(&analyzeConfig),
	RunE:    runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer container.Close(context.WithoutCancel(cmd.Context()))
	logger := container.Logger

	createInput := func(contents []string) (types.AnalyzeInput, error) {
		if len(contents) != 2 {
			return types.AnalyzeInput{}, fmt.Errorf("expected 2 documents, got %d", len(contents))
		}
		return types.AnalyzeInput{ResumeText: contents[0], JobDescription: contents[1]}, nil
	}

	logDetails := func(input types.AnalyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_file", args[0],
			"job_file", args[1],
			"resume_length", len(input.ResumeText),
			"job_length", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	return common.RunDocumentCommand(cmd.Context(), logger, container.Loader, analyzeConfig, args,
		createInput, container.Analyzer.Analyze, logDetails)
}
