package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxGoalTitleLength       = 200
	MaxGoalDescriptionLength = 5000
	MaxMilestoneTitleLength  = 200
	MaxMilestones            = 50
)

// NormalizeText trims whitespace and converts to NFC so visually equal
// titles compare and count the same.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateGoalTitle expects a normalized title.
func ValidateGoalTitle(title string) error {
	if title == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > MaxGoalTitleLength {
		return fmt.Errorf("title is too long (max %d characters)", MaxGoalTitleLength)
	}
	return nil
}

func ValidateGoalDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxGoalDescriptionLength {
		return fmt.Errorf("description is too long (max %d characters)", MaxGoalDescriptionLength)
	}
	return nil
}

func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", progress)
	}
	return nil
}

func ValidateMilestoneTitles(titles []string) error {
	if len(titles) > MaxMilestones {
		return fmt.Errorf("too many milestones (max %d)", MaxMilestones)
	}
	for i, title := range titles {
		if title == "" {
			return fmt.Errorf("milestone %d: title is required", i+1)
		}
		if utf8.RuneCountInString(title) > MaxMilestoneTitleLength {
			return fmt.Errorf("milestone %d: title is too long (max %d characters)", i+1, MaxMilestoneTitleLength)
		}
	}
	return nil
}
