package application

import (
	"fmt"
	"strings"

	"mediasort/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "runID" -> "run ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"runID":     "run ID",
		"fileID":    "file ID",
		"root":      "media root",
		"category":  "category",
		"mode":      "run mode",
		"batchSize": "batch size",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ParseRunMode accepts "dry-run"/"dryrun" and "commit". There is no default:
// an empty mode is rejected so commits are never implicit.
func ParseRunMode(s string) (domain.RunMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dry-run", "dryrun", "dry_run":
		return domain.RunModeDryRun, nil
	case "commit":
		return domain.RunModeCommit, nil
	case "":
		return "", fmt.Errorf("%w: mode is required (dry-run or commit)", ErrInvalidMode)
	default:
		return "", fmt.Errorf("%w: %q (want dry-run or commit)", ErrInvalidMode, s)
	}
}

// ValidateFileID checks that a file ID is a clean root-relative slash path
func ValidateFileID(fieldName, id string) error {
	if err := ValidateRequired(fieldName, id); err != nil {
		return err
	}
	if strings.HasPrefix(id, "/") || strings.Contains(id, "\\") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected a root-relative slash path, got: %s", id),
		}
	}
	for _, seg := range strings.Split(id, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("invalid path segment in: %s", id),
			}
		}
	}
	return nil
}

// ValidateThreshold checks a review threshold is within [0, 1]
func ValidateThreshold(fieldName string, v float64) error {
	if v < 0 || v > 1 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("must be between 0 and 1, got: %v", v),
		}
	}
	return nil
}
