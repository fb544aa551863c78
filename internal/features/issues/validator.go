package issues

import (
	"fmt"
	"strings"

	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

var validCategories = map[string]bool{
	CategoryPothole:     true,
	CategoryTraffic:     true,
	CategoryWaterSupply: true,
	CategoryGarbage:     true,
	CategoryStreetlight: true,
}

var validStatuses = map[string]bool{
	StatusSubmitted:  true,
	StatusInProgress: true,
	StatusResolved:   true,
}

// ValidateCategory checks the category against the allowed enum.
func ValidateCategory(category string) error {
	if !validCategories[category] {
		return fmt.Errorf("%w: invalid category %q", apperrors.ErrValidation, category)
	}
	return nil
}

// ValidateStatus checks a status transition target against the allowed enum.
func ValidateStatus(status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: invalid status %q", apperrors.ErrValidation, status)
	}
	return nil
}

// ValidateSubmission checks the required submission fields before any
// network or storage work happens.
func ValidateSubmission(req *SubmitRequest) error {
	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.Category) == "" ||
		strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: missing required fields", apperrors.ErrValidation)
	}
	if err := ValidateCategory(req.Category); err != nil {
		return err
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", apperrors.ErrValidation)
	}
	return nil
}
