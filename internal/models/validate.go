package models

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/travelrec/internal/apperr"
)

var phonePattern = regexp.MustCompile(`^[0-9+()\-. ]{5,25}$`)

// asValidationError converts ozzo field errors into an apperr.ValidationError
// with fields sorted by name. Other errors pass through unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	keys := make([]string, 0, len(errs))
	for k, v := range errs {
		if v != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	ve := &apperr.ValidationError{Fields: make([]apperr.FieldError, 0, len(keys))}
	for _, k := range keys {
		ve.Fields = append(ve.Fields, apperr.FieldError{Field: k, Message: errs[k].Error()})
	}
	return ve
}

// notBlank rejects strings that are only whitespace; validation.Required
// accepts them.
var notBlank = validation.By(func(v interface{}) error {
	s, _ := v.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 or the "YYYY-MM-DD HH:MM[:SS]" form used by
// input forms, interpreted in local time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("must be a date like 2025-03-15 19:04")
}

// FormatTimestamp renders t in local time in the form accepted by
// ParseTimestamp. Seconds and fractions are kept so a formatted value parses
// back to the same instant.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05.999999999")
}
