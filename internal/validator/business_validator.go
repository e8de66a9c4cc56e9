package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gdgoc-itb/lms-service/internal/models"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// registerBusinessRules registers the domain validation tags.
func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("access_level", func(fl validator.FieldLevel) bool {
		return models.AccessLevel(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("admin_access", func(fl validator.FieldLevel) bool {
		return models.AccessLevel(fl.Field().String()).IsAdmin()
	})

	// Lectures and problem sets are gated at Member or Buddy only
	v.validate.RegisterValidation("content_access", func(fl validator.FieldLevel) bool {
		level := models.AccessLevel(fl.Field().String())
		return level == models.AccessMember || level == models.AccessBuddy
	})

	v.validate.RegisterValidation("submission_type", func(fl validator.FieldLevel) bool {
		return models.SubmissionType(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("event_access", func(fl validator.FieldLevel) bool {
		return models.EventAccess(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
}

// ValidateGradeThresholds checks that the passing grade fits under the max grade.
func (v *Validator) ValidateGradeThresholds(maxGrade, passingGrade int) ValidationErrors {
	var errs ValidationErrors
	if maxGrade <= 0 {
		errs = append(errs, ValidationError{
			Field:   "maxGrade",
			Message: "must be greater than 0",
			Value:   maxGrade,
			Rule:    "business_logic",
		})
	}
	if passingGrade < 0 || passingGrade > maxGrade {
		errs = append(errs, ValidationError{
			Field:   "passingGrade",
			Message: "must be between 0 and maxGrade",
			Value:   passingGrade,
			Rule:    "business_logic",
		})
	}
	return errs
}

// ValidateGrade checks a grade against the problem set it belongs to.
func (v *Validator) ValidateGrade(grade int, ps *models.ProblemSet) ValidationErrors {
	if grade < 0 || grade > ps.MaxGrade {
		return ValidationErrors{{
			Field:   "grade",
			Message: "must be between 0 and maxGrade",
			Value:   grade,
			Rule:    "business_logic",
		}}
	}
	return nil
}

// ValidateEventCategory checks the category is allowed for the kind of event.
func (v *Validator) ValidateEventCategory(kind models.EventKind, category string) ValidationErrors {
	for _, allowed := range models.EventCategories[kind] {
		if category == allowed {
			return nil
		}
	}
	return ValidationErrors{{
		Field:   "category",
		Message: "is not allowed for this kind of event",
		Value:   category,
		Rule:    "business_logic",
	}}
}

// ValidateEventSchedule checks that an event ends after it starts.
func (v *Validator) ValidateEventSchedule(start, end string) ValidationErrors {
	s, errStart := time.Parse("15:04", start)
	e, errEnd := time.Parse("15:04", end)
	if errStart != nil || errEnd != nil || !e.After(s) {
		return ValidationErrors{{
			Field:   "time.end",
			Message: "must be after time.start",
			Value:   end,
			Rule:    "business_logic",
		}}
	}
	return nil
}
