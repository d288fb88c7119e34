package validate

import "unicode/utf8"

// MinFieldLength is the minimum length of the title and description fields.
// Length is measured on the raw value; surrounding whitespace counts.
const MinFieldLength = 2

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// Form checks the user-entered podcast fields. It returns nil when the form
// is valid; otherwise a message per offending field.
func Form(title, description string) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(title) < MinFieldLength {
		errs["title"] = "Title must be at least 2 characters"
	}
	if utf8.RuneCountInString(description) < MinFieldLength {
		errs["description"] = "Description must be at least 2 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
