// Package forms implements declarative validation schemas for the
// multi-step record forms: per-field constraints, cross-field equality,
// and conditional requirements driven by a discriminator field.
//
// Validation never returns Go errors for bad input; it always produces a
// Result carrying stable, field-keyed messages so the UI and tests can
// assert on them deterministically.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Values maps field names to their current values. Permitted value kinds
// are string, bool, int64, and float64.
type Values map[string]any

// FieldError is one validation failure, keyed by field path.
type FieldError struct {
	Path    string
	Message string
}

// Result is the outcome of a validation pass. It is produced fresh on
// every call and never mutated.
type Result struct {
	OK     bool
	Errors []FieldError
}

// ErrorsFor returns the messages recorded against one field path.
func (r Result) ErrorsFor(path string) []string {
	var msgs []string
	for _, e := range r.Errors {
		if e.Path == path {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// NormalizeFunc rewrites a field value before validation and storage.
// Implementations must be idempotent.
type NormalizeFunc func(any) any

// Field declares the constraints for a single field.
type Field struct {
	Name     string
	Required bool
	// RequiredMessage overrides the stock "is required" message.
	RequiredMessage string
	// Tag is a validator/v10 tag expression applied when a value is
	// present, e.g. "email" or "min=0,max=100000000".
	Tag string
	// Messages maps a validator tag name (e.g. "max") to the message
	// reported when that tag fails. Unlisted tags fall back to a
	// generic message naming the tag.
	Messages map[string]string
	// EqualsField requires the value to equal another field's value.
	EqualsField   string
	EqualsMessage string
	Normalize     NormalizeFunc
}

// ConditionalRule is a decision table: when the discriminator field holds
// one of the listed values, the mapped fields become required.
type ConditionalRule struct {
	Discriminator string
	RequiredWhen  map[string][]string
}

// requiredFieldsFor evaluates the decision table for the discriminator's
// current value.
func (c ConditionalRule) requiredFieldsFor(values Values) []string {
	disc, _ := values[c.Discriminator].(string)
	return c.RequiredWhen[disc]
}

// Refinement is an object-level rule evaluated over the whole candidate.
type Refinement func(Values) []FieldError

// Schema is an ordered collection of field constraints plus object-level
// refinements. Build one with NewSchema; it is immutable afterwards.
type Schema struct {
	fields       []Field
	byName       map[string]Field
	conditionals []ConditionalRule
	refinements  []Refinement
	validate     *validator.Validate
}

// NewSchema builds a schema. Field order determines error order.
func NewSchema(fields []Field, conditionals []ConditionalRule, refinements ...Refinement) *Schema {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Schema{
		fields:       fields,
		byName:       byName,
		conditionals: conditionals,
		refinements:  refinements,
		validate:     validator.New(),
	}
}

// FieldNames returns the declared field names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// HasField reports whether the schema declares the named field.
func (s *Schema) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// NormalizeValue applies the field's normalizer, if any. Safe to call for
// unknown fields.
func (s *Schema) NormalizeValue(name string, value any) any {
	f, ok := s.byName[name]
	if !ok || f.Normalize == nil {
		return value
	}
	return f.Normalize(value)
}

// Validate checks the whole candidate: every declared field, every
// conditional rule, and every refinement.
func (s *Schema) Validate(values Values) Result {
	return s.run(values, nil)
}

// ValidateFields checks exactly the named fields and ignores all others,
// even if those others are currently invalid. Conditional rules fire only
// when their discriminator is among the validated fields. Refinements run
// only on full validation.
func (s *Schema) ValidateFields(values Values, fieldNames []string) Result {
	scope := make(map[string]struct{}, len(fieldNames))
	for _, n := range fieldNames {
		scope[n] = struct{}{}
	}
	return s.run(values, scope)
}

func (s *Schema) run(values Values, scope map[string]struct{}) Result {
	inScope := func(name string) bool {
		if scope == nil {
			return true
		}
		_, ok := scope[name]
		return ok
	}

	// Conditionally required fields for this pass. Rules always read
	// the discriminator's current value, even when the discriminator is
	// outside the scope: scoping limits which fields get errors, not
	// which values decide requiredness.
	condRequired := make(map[string]struct{})
	for _, rule := range s.conditionals {
		for _, name := range rule.requiredFieldsFor(values) {
			condRequired[name] = struct{}{}
		}
	}

	var errs []FieldError
	for _, f := range s.fields {
		if !inScope(f.Name) {
			continue
		}
		_, condReq := condRequired[f.Name]

		value := values[f.Name]
		if f.Normalize != nil {
			value = f.Normalize(value)
		}

		if isEmpty(value) {
			if f.Required || condReq {
				msg := f.RequiredMessage
				if msg == "" {
					msg = "is required"
				}
				errs = append(errs, FieldError{Path: f.Name, Message: msg})
			}
			// Absent optional values are not re-validated.
			continue
		}

		if f.Tag != "" {
			if fe := s.checkTag(f, value); fe != nil {
				errs = append(errs, *fe)
			}
		}

		if f.EqualsField != "" {
			other := values[f.EqualsField]
			if peer, ok := s.byName[f.EqualsField]; ok && peer.Normalize != nil {
				other = peer.Normalize(other)
			}
			if value != other {
				msg := f.EqualsMessage
				if msg == "" {
					msg = fmt.Sprintf("must match %s", f.EqualsField)
				}
				errs = append(errs, FieldError{Path: f.Name, Message: msg})
			}
		}
	}

	if scope == nil {
		for _, refine := range s.refinements {
			errs = append(errs, refine(values)...)
		}
	}

	return Result{OK: len(errs) == 0, Errors: errs}
}

func (s *Schema) checkTag(f Field, value any) (fe *FieldError) {
	// The library panics on tag/kind mismatches; validation must always
	// return a result, so report those as a plain failure instead.
	defer func() {
		if r := recover(); r != nil {
			fe = &FieldError{Path: f.Name, Message: "has an unsupported value"}
		}
	}()

	err := s.validate.Var(value, f.Tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		// validator.Var panics are recovered into InvalidValidationError
		// for unsupported kinds; report as a plain format failure.
		return &FieldError{Path: f.Name, Message: "has an unsupported value"}
	}

	tag := verrs[0].Tag()
	if msg, ok := f.Messages[tag]; ok {
		return &FieldError{Path: f.Name, Message: msg}
	}
	return &FieldError{Path: f.Name, Message: fmt.Sprintf("failed %s validation", tag)}
}

// isEmpty treats the zero value of every permitted kind as absent.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int64:
		return t == 0
	case float64:
		return t == 0
	default:
		return false
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Idempotent: NormalizeEmail(NormalizeEmail(x)) == NormalizeEmail(x).
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailNormalizer adapts NormalizeEmail to the Field.Normalize signature.
func EmailNormalizer(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return NormalizeEmail(s)
}
