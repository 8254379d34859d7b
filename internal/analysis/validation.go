package analysis

import (
	"fmt"
	"strings"

	"resumatch/internal/errors"
	"resumatch/internal/textproc"
	"resumatch/internal/types"
)

const (
	minAnalyzeInputLength = 10
	minBulletInputLength  = 5
)

// ValidateAnalyzeInput checks both texts are at least 10 characters after normalization
func ValidateAnalyzeInput(input types.AnalyzeInput) error {
	if err := requireLength("resumeText", textproc.Normalize(input.ResumeText), minAnalyzeInputLength); err != nil {
		return err
	}
	return requireLength("jobDescription", textproc.Normalize(input.JobDescription), minAnalyzeInputLength)
}

// ValidateRewriteInput checks the bullet is at least 5 characters after trimming
func ValidateRewriteInput(input types.RewriteInput) error {
	return requireLength("original", strings.TrimSpace(input.Original), minBulletInputLength)
}

// ValidateBatchRewriteInput requires a job description and at least one usable bullet
func ValidateBatchRewriteInput(input types.BatchRewriteInput) error {
	if strings.TrimSpace(input.JobDescription) == "" {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			"jobDescription is required for batch rewrites", nil).
			WithContext("field", "jobDescription")
	}
	if len(usableBullets(input.Bullets)) == 0 {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			fmt.Sprintf("bullets must contain at least one entry of %d or more characters", minBulletInputLength), nil).
			WithContext("field", "bullets")
	}
	return nil
}

func requireLength(field, value string, minLength int) error {
	if textproc.Length(value) < minLength {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			fmt.Sprintf("%s must be at least %d characters", field, minLength), nil).
			WithContext("field", field).
			WithContext("length", textproc.Length(value))
	}
	return nil
}

// usableBullets drops bullets that are blank or too short to rewrite
func usableBullets(bullets []string) []string {
	kept := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if b = strings.TrimSpace(b); textproc.Length(b) >= minBulletInputLength {
			kept = append(kept, b)
		}
	}
	return kept
}
