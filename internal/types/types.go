package types

// AnalyzeInput represents the input for matching a resume against a job description
type AnalyzeInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// Gap is a skill or qualification the job asks for that the resume does not show
type Gap struct {
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

// EvidencePair links a resume sentence to a job description sentence sharing a key term
type EvidencePair struct {
	ResumeSnippet string `json:"resumeText"`
	JDSnippet     string `json:"jdText"`
}

// GapSource records which path produced the gaps of an analysis
type GapSource string

const (
	GapSourceModel    GapSource = "model"
	GapSourceKeywords GapSource = "keywords"
	GapSourceError    GapSource = "error"
)

// AnalyzeOutput is the assembled result of one analysis request
type AnalyzeOutput struct {
	ID        string         `json:"id"`
	Score     int            `json:"score"`     // 0-100
	ScoreBand string         `json:"scoreBand"` // human readable label for Score
	Gaps      []Gap          `json:"gaps"`
	GapSource GapSource      `json:"gapSource"`
	Evidence  []EvidencePair `json:"evidence"`
	Bullets   []string       `json:"bullets"`
}

// RewriteInput represents the input for rewriting a single resume bullet
type RewriteInput struct {
	Original       string `json:"original"`
	JobDescription string `json:"jobDescription,omitempty"`
	Context        string `json:"context,omitempty"`
}

// RewriteOutput is the result of rewriting one bullet
type RewriteOutput struct {
	Original  string `json:"original"`
	Revised   string `json:"revised"`
	Rationale string `json:"rationale"`
}

// BatchRewriteInput rewrites several bullets against the same job description
type BatchRewriteInput struct {
	Bullets        []string `json:"bullets"`
	JobDescription string   `json:"jobDescription"`
	Context        string   `json:"context,omitempty"`
}

// BatchRewriteOutput holds per-bullet results in input order
type BatchRewriteOutput struct {
	Results []RewriteOutput `json:"results"`
}

// BulletList is a plain list of bullets, used for extraction and download output
type BulletList struct {
	Bullets []string `json:"bullets"`
}
