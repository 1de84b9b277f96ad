package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/evaluation"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

var extensionLanguages = map[string]string{
	".js":   "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".py":   "python",
	".java": "java",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cs":   "csharp",
	".go":   "go",
	".rs":   "rust",
	".php":  "php",
	".rb":   "ruby",
}

// LanguageFromPath guesses the language of a source file by extension.
func LanguageFromPath(path string) string {
	return extensionLanguages[strings.ToLower(filepath.Ext(path))]
}

// EvaluateFile grades the code in path. An empty language is inferred from
// the file extension; an unknown extension uses the structural grader.
func EvaluateFile(ctx context.Context, path, language string, minPassing int, log logger.Logger) (model.EvaluationResult, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	if language == "" {
		language = LanguageFromPath(path)
	}
	opts := []evaluation.Option{evaluation.WithMinPassingScore(minPassing)}
	if log != nil {
		opts = append(opts, evaluation.WithLogger(log))
	}
	return evaluation.New(opts...).Evaluate(ctx, model.CodeSubmission{Code: string(code), Language: language})
}
