package formcheck

import "sort"

// Kind names the reason a field was rejected.
type Kind string

const (
	KindMissingForm      Kind = "missing_form"
	KindMissingField     Kind = "missing_field"
	KindTooShort         Kind = "too_short"
	KindOutOfRange       Kind = "out_of_range"
	KindInvalidType      Kind = "invalid_type"
	KindMissingComposite Kind = "missing_composite"
)

// FieldErrors maps a field name to its message, or for "location" to a
// map[string]string of sub-field messages.
type FieldErrors map[string]any

// Violation is the typed form of one entry in FieldErrors. Field is a dotted
// path such as "location.latitude".
type Violation struct {
	Field   string
	Kind    Kind
	Message string
}

// ValidationResult is the outcome of ValidateIssueForm.
// IsValid is true exactly when Errors is empty.
type ValidationResult struct {
	IsValid    bool        `json:"isValid"`
	Errors     FieldErrors `json:"errors"`
	Violations []Violation `json:"-"`
}

// Message returns the top-level message for field, if it holds a string.
func (e FieldErrors) Message(field string) (string, bool) {
	msg, ok := e[field].(string)
	return msg, ok
}

// Nested returns the sub-field messages stored under field.
func (e FieldErrors) Nested(field string) map[string]string {
	nested, _ := e[field].(map[string]string)
	return nested
}

// Fields lists the top-level keys in sorted order.
func (e FieldErrors) Fields() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Kinds returns the violation kinds of the result, one entry per violation.
func (r ValidationResult) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.Violations))
	for _, v := range r.Violations {
		kinds = append(kinds, v.Kind)
	}
	return kinds
}

type resultBuilder struct {
	errors     FieldErrors
	violations []Violation
}

func (b *resultBuilder) add(field string, kind Kind, msg string) {
	if b.errors == nil {
		b.errors = FieldErrors{}
	}
	b.errors[field] = msg
	b.violations = append(b.violations, Violation{Field: field, Kind: kind, Message: msg})
}

func (b *resultBuilder) addNested(field, sub string, kind Kind, msg string) {
	if b.errors == nil {
		b.errors = FieldErrors{}
	}
	nested, ok := b.errors[field].(map[string]string)
	if !ok {
		nested = map[string]string{}
		b.errors[field] = nested
	}
	nested[sub] = msg
	b.violations = append(b.violations, Violation{Field: field + "." + sub, Kind: kind, Message: msg})
}

func (b *resultBuilder) result() ValidationResult {
	errs := b.errors
	if errs == nil {
		errs = FieldErrors{}
	}
	return ValidationResult{
		IsValid:    len(errs) == 0,
		Errors:     errs,
		Violations: b.violations,
	}
}
