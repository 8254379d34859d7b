package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry is the registry used by the CLI output handler
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalyzeOutput", &AnalyzeTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeOutput", &AnalyzeMarkdownFormatter{})
	registry.RegisterFormatter("text", "RewriteOutput", &RewriteTextFormatter{})
	registry.RegisterFormatter("markdown", "RewriteOutput", &RewriteMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchRewriteOutput", &BatchRewriteTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchRewriteOutput", &BatchRewriteMarkdownFormatter{})
	registry.RegisterFormatter("text", "BulletList", &BulletListTextFormatter{})
	registry.RegisterFormatter("markdown", "BulletList", &BulletListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter. Pointers to the
// known result types are formatted like their values.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func deref(data any) any {
	switch v := data.(type) {
	case *types.AnalyzeOutput:
		if v != nil {
			return *v
		}
	case *types.RewriteOutput:
		if v != nil {
			return *v
		}
	case *types.BatchRewriteOutput:
		if v != nil {
			return *v
		}
	case *types.BulletList:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalyzeOutput:
		return "AnalyzeOutput"
	case types.RewriteOutput:
		return "RewriteOutput"
	case types.BatchRewriteOutput:
		return "BatchRewriteOutput"
	case types.BulletList:
		return "BulletList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalyzeTextFormatter handles text formatting for analysis results
type AnalyzeTextFormatter struct{}

func (atf *AnalyzeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== MATCH SCORE ===\n")
	fmt.Fprintf(&output, "Score: %d/100 (%s)\n\n", result.Score, result.ScoreBand)

	fmt.Fprintf(&output, "=== GAPS (%s) ===\n", result.GapSource)
	if len(result.Gaps) == 0 {
		output.WriteString("No gaps found.\n")
	}
	for _, gap := range result.Gaps {
		fmt.Fprintf(&output, "- %s: %s\n", gap.Skill, gap.Reason)
	}
	output.WriteString("\n")

	output.WriteString("=== EVIDENCE ===\n")
	if len(result.Evidence) == 0 {
		output.WriteString("No shared evidence found.\n")
	}
	for i, pair := range result.Evidence {
		fmt.Fprintf(&output, "%d. Resume: %s\n   Job:    %s\n", i+1, pair.ResumeSnippet, pair.JDSnippet)
	}
	output.WriteString("\n")

	output.WriteString("=== BULLETS ===\n")
	output.WriteString(renderBullets(result.Bullets, "• "))

	return output.String(), nil
}

func (atf *AnalyzeTextFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// AnalyzeMarkdownFormatter handles markdown formatting for analysis results
type AnalyzeMarkdownFormatter struct{}

func (amf *AnalyzeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Match Report\n\n")
	fmt.Fprintf(&output, "**Score:** %d/100 (%s)\n\n", result.Score, result.ScoreBand)

	output.WriteString("## Gaps\n\n")
	if len(result.Gaps) == 0 {
		output.WriteString("_No gaps found._\n")
	}
	for _, gap := range result.Gaps {
		fmt.Fprintf(&output, "- **%s**: %s\n", gap.Skill, gap.Reason)
	}
	output.WriteString("\n")

	output.WriteString("## Evidence\n\n")
	if len(result.Evidence) > 0 {
		output.WriteString("| Resume | Job description |\n|---|---|\n")
	} else {
		output.WriteString("_No shared evidence found._\n")
	}
	for _, pair := range result.Evidence {
		fmt.Fprintf(&output, "| %s | %s |\n", escapeCell(pair.ResumeSnippet), escapeCell(pair.JDSnippet))
	}
	output.WriteString("\n")

	output.WriteString("## Bullets\n\n")
	output.WriteString(renderBullets(result.Bullets, "- "))

	return output.String(), nil
}

func (amf *AnalyzeMarkdownFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// RewriteTextFormatter handles text formatting for a single rewrite
type RewriteTextFormatter struct{}

func (rtf *RewriteTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RewriteOutput)
	if !ok {
		return "", fmt.Errorf("expected RewriteOutput, got %T", data)
	}
	return rewriteText(result), nil
}

func (rtf *RewriteTextFormatter) SupportedType() string {
	return "RewriteOutput"
}

// RewriteMarkdownFormatter handles markdown formatting for a single rewrite
type RewriteMarkdownFormatter struct{}

func (rmf *RewriteMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RewriteOutput)
	if !ok {
		return "", fmt.Errorf("expected RewriteOutput, got %T", data)
	}
	return "# Bullet Rewrite\n\n" + rewriteMarkdown(result), nil
}

func (rmf *RewriteMarkdownFormatter) SupportedType() string {
	return "RewriteOutput"
}

// BatchRewriteTextFormatter handles text formatting for batch rewrites
type BatchRewriteTextFormatter struct{}

func (btf *BatchRewriteTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchRewriteOutput)
	if !ok {
		return "", fmt.Errorf("expected BatchRewriteOutput, got %T", data)
	}

	var output strings.Builder
	for i, rewrite := range result.Results {
		fmt.Fprintf(&output, "=== BULLET %d ===\n", i+1)
		output.WriteString(rewriteText(rewrite))
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (btf *BatchRewriteTextFormatter) SupportedType() string {
	return "BatchRewriteOutput"
}

// BatchRewriteMarkdownFormatter handles markdown formatting for batch rewrites
type BatchRewriteMarkdownFormatter struct{}

func (bmf *BatchRewriteMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchRewriteOutput)
	if !ok {
		return "", fmt.Errorf("expected BatchRewriteOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Bullet Rewrites\n\n")
	for i, rewrite := range result.Results {
		fmt.Fprintf(&output, "## Bullet %d\n\n", i+1)
		output.WriteString(rewriteMarkdown(rewrite))
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (bmf *BatchRewriteMarkdownFormatter) SupportedType() string {
	return "BatchRewriteOutput"
}

// BulletListTextFormatter renders bullets one per line
type BulletListTextFormatter struct{}

func (blt *BulletListTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BulletList)
	if !ok {
		return "", fmt.Errorf("expected BulletList, got %T", data)
	}
	return renderBullets(result.Bullets, "• "), nil
}

func (blt *BulletListTextFormatter) SupportedType() string {
	return "BulletList"
}

// BulletListMarkdownFormatter renders bullets as a markdown list
type BulletListMarkdownFormatter struct{}

func (blm *BulletListMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BulletList)
	if !ok {
		return "", fmt.Errorf("expected BulletList, got %T", data)
	}
	return "# Resume Bullets\n\n" + renderBullets(result.Bullets, "- "), nil
}

func (blm *BulletListMarkdownFormatter) SupportedType() string {
	return "BulletList"
}

func rewriteText(result types.RewriteOutput) string {
	var output strings.Builder
	output.WriteString("Original:\n")
	output.WriteString(result.Original)
	output.WriteString("\n\nRevised:\n")
	output.WriteString(result.Revised)
	output.WriteString("\n\nRationale:\n")
	output.WriteString(result.Rationale)
	output.WriteString("\n")
	return output.String()
}

func rewriteMarkdown(result types.RewriteOutput) string {
	var output strings.Builder
	fmt.Fprintf(&output, "**Original:** %s\n\n", result.Original)
	fmt.Fprintf(&output, "**Revised:** %s\n\n", result.Revised)
	fmt.Fprintf(&output, "**Rationale:** %s\n", result.Rationale)
	return output.String()
}

// renderBullets writes one prefixed line per non-blank bullet
func renderBullets(bullets []string, prefix string) string {
	if len(bullets) == 0 {
		return "(none)\n"
	}
	var output strings.Builder
	for _, bullet := range bullets {
		if bullet = strings.TrimSpace(bullet); bullet == "" {
			continue
		}
		output.WriteString(prefix)
		output.WriteString(bullet)
		output.WriteString("\n")
	}
	return output.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
