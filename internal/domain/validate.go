package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Column limits from the schema. Inputs over them are rejected before they
// reach storage.
const (
	MaxEmailLength = 120
	MaxTitleLength = 200
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ruleErrors maps a failed field and rule to the error callers see. The ""
// rule is the fallback for that field.
var ruleErrors = map[string]map[string]error{
	"Email":  {"": ErrInvalidEmail},
	"Code":   {"": ErrCodeRequired},
	"Title":  {"required": ErrTitleRequired, "max": ErrTitleTooLong},
	"Artist": {"required": ErrArtistRequired, "max": ErrArtistTooLong},
	"Year":   {"": ErrInvalidYear},
}

// Validate checks v against its validate tags and returns the domain error
// for the first rule that fails.
func Validate(v any) error {
	return translate("", validate.Struct(v))
}

// validateValue checks one value against rules, reporting failures as field.
func validateValue(field string, value any, rules string) error {
	return translate(field, validate.Var(value, rules))
}

func translate(field string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrInvalidInput
	}

	first := fieldErrs[0]
	if field == "" {
		field = first.StructField()
	}
	rules, ok := ruleErrors[field]
	if !ok {
		return ErrInvalidInput
	}
	if mapped, ok := rules[first.Tag()]; ok {
		return mapped
	}
	if mapped, ok := rules[""]; ok {
		return mapped
	}
	return ErrInvalidInput
}
