package cli

import (
	"context"
	"fmt"

	"resumatch/internal/common"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var bulletsCmd = &cobra.Command{
	Use:   "bullets [resume-file]",
	Short: "List the bullets found in a resume",
	Long: `Extract the bullets from a resume: lines that start with a marker
glyph (-, * or •) and long lines that start in lowercase, which are usually
wrapped bullets. No AI backend is needed.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: resolveFormat(&bulletsConfig),
	RunE:    runBullets,
}

var bulletsConfig common.CommandConfig

func init() {
	addOutputFlags(bulletsCmd, &bulletsConfig)
}

func runBullets(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer container.Close(context.WithoutCancel(cmd.Context()))

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 document, got %d", len(contents))
		}
		return contents[0], nil
	}

	extract := func(_ context.Context, text string) (*types.BulletList, error) {
		return container.Analyzer.ExtractBullets(text), nil
	}

	return common.RunDocumentCommand(cmd.Context(), container.Logger, container.Loader, bulletsConfig, args,
		createInput, extract, nil)
}
