package ai

import (
	"fmt"
	"strings"
	"text/template"

	"resumatch/internal/config"
	"resumatch/internal/errors"
)

// PromptTemplate is the pair of templates used for one operation
type PromptTemplate struct {
	System string
	User   string
}

// GapPromptData is rendered into the gap analysis templates
type GapPromptData struct {
	Resume         string
	JobDescription string
}

// RewritePromptData is rendered into the rewrite templates
type RewritePromptData struct {
	Original       string
	JobDescription string
	Context        string
}

// DefaultPrompts provides the built-in templates per operation
var DefaultPrompts = map[string]PromptTemplate{
	config.OperationGapAnalysis: {
		System: `You are a resume expert and technical recruiter. You compare resumes with job descriptions and report only requirements that are genuinely absent from the resume. Never invent experience the candidate does not have.`,
		User: `You are a resume expert. Compare the resume and job description below.

Identify 3-10 critical gaps where the resume is missing important skills, tools, technologies, certifications, or experience mentioned in the job description.

For each gap, provide:
1. The missing skill/requirement
2. A brief reason why it's important for this role

Format your response as a bulleted list. Each bullet should be on its own line starting with a dash.
Each bullet should have the format: "Skill Name: Reason why it's needed"

Resume:
{{.Resume}}

Job Description:
{{.JobDescription}}
`,
	},
	config.OperationRewrite: {
		System: `You are an expert resume writer. You rewrite single resume bullet points so they match a target job while staying truthful to the original achievement.`,
		User: `Rewrite this resume bullet point to better match the job description.

Requirements:
- Use strong action verbs (e.g., "Led", "Designed", "Implemented", "Optimized")
- Include quantifiable metrics when possible (numbers, percentages, timeframes)
- Mirror language and terminology from the job description
- Keep it concise (under 120 characters if possible)
- Make it ATS-friendly (avoid special characters, use standard formatting)

Original Bullet:
{{.Original}}

Job Description:
{{.JobDescription}}{{if .Context}}

Context (full resume):
{{.Context}}{{end}}

Provide:
1. The rewritten bullet point
2. A brief rationale explaining the improvements (1-2 sentences)

Format:
Rewritten: [your rewritten bullet]
Rationale: [explanation]
`,
	},
}

// BuildPrompt renders the prompt for an operation. Custom prompts from the
// operation config replace the built-in templates field by field.
func BuildPrompt(operation string, custom config.PromptConfig, data any) (Prompt, error) {
	defaults, ok := DefaultPrompts[operation]
	if !ok {
		return Prompt{}, errors.NewInternalError(errors.ErrCodeInternalError,
			fmt.Sprintf("no prompt templates for operation %q", operation), nil)
	}

	system, err := renderTemplate(operation+".system", resolvePrompt(custom.System, defaults.System), data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := renderTemplate(operation+".user", resolvePrompt(custom.User, defaults.User), data)
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{Operation: operation, System: system, User: user}, nil
}

func renderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid prompt template %s", name), err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("failed to render prompt template %s", name), err)
	}
	return b.String(), nil
}

// resolvePrompt prefers the configured prompt (inline or loaded from file)
// over the built-in default.
func resolvePrompt(fromConfig, fromDefault string) string {
	if strings.TrimSpace(fromConfig) != "" {
		return fromConfig
	}
	return fromDefault
}
