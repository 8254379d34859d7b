package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptTarget names one loadable prompt slot
type promptTarget struct {
	operation string
	kind      string // "system" or "user"
	file      string
	content   *string
}

// promptTargets lists every prompt slot that can be loaded from a file
func (c *Config) promptTargets() []promptTarget {
	return []promptTarget{
		{OperationGapAnalysis, "system", c.AI.GapAnalysis.Prompts.SystemFile, &c.AI.GapAnalysis.Prompts.System},
		{OperationGapAnalysis, "user", c.AI.GapAnalysis.Prompts.UserFile, &c.AI.GapAnalysis.Prompts.User},
		{OperationRewrite, "system", c.AI.Rewrite.Prompts.SystemFile, &c.AI.Rewrite.Prompts.System},
		{OperationRewrite, "user", c.AI.Rewrite.Prompts.UserFile, &c.AI.Rewrite.Prompts.User},
	}
}

// loadPromptsFromFiles replaces inline prompts with file contents where a file is configured
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	loaded := 0
	for _, target := range c.promptTargets() {
		if target.file == "" {
			continue
		}
		content, err := loadPromptFromFile(target.file, target.kind, target.operation)
		if err != nil {
			return err
		}
		*target.content = content
		loaded++
	}

	if loaded == 0 {
		log.Println("[CONFIG] No custom prompt files configured - using inline or built-in prompts")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded from files: %d", loaded)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading, reporting all problems at once
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, target := range c.promptTargets() {
		if target.file == "" {
			continue
		}
		absPath, err := filepath.Abs(target.file)
		if err != nil {
			validationErrors = append(validationErrors,
				fmt.Sprintf("invalid path for %s %s prompt: %s", target.operation, target.kind, target.file))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors,
				fmt.Sprintf("%s %s prompt file not found: %s", target.operation, target.kind, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}
