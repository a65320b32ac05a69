package aiproxy

import (
	"context"
	"fmt"
)

const summaryPreview = 50

// Simulated is the Backend used when no upstream is configured. It answers
// locally with canned content so the helpers stay usable in development.
type Simulated struct{}

func (Simulated) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	preview := []rune(text)
	if len(preview) > summaryPreview {
		preview = preview[:summaryPreview]
	}
	return fmt.Sprintf("This is a simulated AI summary for the provided text, which starts with: %q... The full text has been processed.", string(preview)), nil
}

func (Simulated) AnalyzeDocument(ctx context.Context, _ string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]any{
		"Student Name":    "Alex Johnson (Simulated)",
		"GPA":             "3.8/4.0",
		"Major":           "Software Engineering",
		"Graduation Date": "May 2024",
		"Key Courses":     []any{"Data Structures (A)", "Web Development (B+)"},
	}, nil
}

func (Simulated) DraftEmail(ctx context.Context, prompt, subjectName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("Dear %s,\n\nThis is a simulated email draft based on your prompt: %q.\n\nPlease review and edit this content as needed before sending.\n\nBest regards,\nThe Lyceum Academy Team", subjectName, prompt), nil
}
