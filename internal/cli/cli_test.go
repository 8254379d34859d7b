package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/config"
	"resumatch/internal/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{Provider: "gemini", Model: config.DefaultGenerationModel, Timeout: time.Second},
		App: config.AppConfig{
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return Execute(context.Background(), testConfig(), errors.NewDiscardLogger())
}

// saveRewriteFlags restores the rewrite flag variables, which cobra keeps
// between executions
func saveRewriteFlags(t *testing.T) {
	t.Helper()
	savedOpts, savedConfig := rewriteOpts, rewriteConfig
	t.Cleanup(func() {
		rewriteOpts = savedOpts
		rewriteConfig = savedConfig
	})
}

func TestSplitBatchBullets(t *testing.T) {
	text := "- Led a team of five\n\n• Shipped billing\r\n   plain line  \n*\n"
	assert.Equal(t, []string{"Led a team of five", "Shipped billing", "plain line"}, splitBatchBullets(text))
}

func TestRewriteSourcesOrder(t *testing.T) {
	saveRewriteFlags(t)

	rewriteOpts.jobFile = "jd.txt"
	rewriteOpts.contextFile = ""
	rewriteOpts.batchFile = "bullets.txt"
	assert.Equal(t, []string{"jd.txt", "bullets.txt"}, rewriteSources())

	rewriteOpts.contextFile = "resume.pdf"
	assert.Equal(t, []string{"jd.txt", "resume.pdf", "bullets.txt"}, rewriteSources())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	require.NoError(t, runCLI(t, "version"))
	assert.Contains(t, out.String(), "resumatch version dev")
}

func TestBulletsCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte(
		"Jane Doe\n- Built a deployment pipeline for twelve services\n- Led migration to Kubernetes clusters\n"), 0600))
	out := filepath.Join(dir, "bullets.md")

	require.NoError(t, runCLI(t, "bullets", resume, "-o", out, "--format", "markdown"))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Resume Bullets\n\n- Built a deployment pipeline for twelve services\n- Led migration to Kubernetes clusters\n",
		string(written))
}

func TestRewriteCommandPassesThroughWithoutBackend(t *testing.T) {
	saveRewriteFlags(t)

	dir := t.TempDir()
	batch := filepath.Join(dir, "bullets.txt")
	require.NoError(t, os.WriteFile(batch, []byte("- Improved query latency by half\n- Wrote docs\n"), 0600))
	jd := filepath.Join(dir, "jd.txt")
	require.NoError(t, os.WriteFile(jd, []byte("Backend engineer with Go and SQL"), 0600))
	out := filepath.Join(dir, "rewrites.json")

	require.NoError(t, runCLI(t, "rewrite", "--batch", batch, "--jd", jd, "-o", out, "--format", "json"))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"revised": "Improved query latency by half"`)
	assert.Contains(t, string(written), `"revised": "Wrote docs"`)
}

func TestRewriteBatchRequiresJobDescription(t *testing.T) {
	saveRewriteFlags(t)

	batch := filepath.Join(t.TempDir(), "bullets.txt")
	require.NoError(t, os.WriteFile(batch, []byte("- Improved query latency\n"), 0600))
	rewriteOpts.jobFile = ""

	err := runCLI(t, "rewrite", "--batch", batch)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
