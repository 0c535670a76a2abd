package forms

// FormState holds the working copy of a record while a wizard is open:
// current values, per-field error messages, and touched flags. It is
// owned by exactly one wizard instance and is not safe for concurrent
// use; all access happens on the UI event loop.
type FormState struct {
	schema  *Schema
	values  Values
	errors  map[string][]string
	touched map[string]bool
}

// NewFormState creates state seeded with defaults (an existing record in
// edit mode, or empty values in create mode). Defaults are normalized but
// do not mark fields as touched.
func NewFormState(schema *Schema, defaults Values) *FormState {
	values := make(Values, len(defaults))
	for name, v := range defaults {
		values[name] = schema.NormalizeValue(name, v)
	}
	return &FormState{
		schema:  schema,
		values:  values,
		errors:  make(map[string][]string),
		touched: make(map[string]bool),
	}
}

// Set records a field value, normalizing it and marking the field
// touched. Setting a discriminator field never clears dependent fields;
// previously entered values are retained so re-selecting the same
// discriminator restores them.
func (f *FormState) Set(name string, value any) {
	f.values[name] = f.schema.NormalizeValue(name, value)
	f.touched[name] = true
	delete(f.errors, name)
}

// Get returns the current value of a field (nil when never set).
func (f *FormState) Get(name string) any {
	return f.values[name]
}

// GetString returns a field value coerced to string, or "".
func (f *FormState) GetString(name string) string {
	s, _ := f.values[name].(string)
	return s
}

// GetBool returns a field value coerced to bool, or false.
func (f *FormState) GetBool(name string) bool {
	b, _ := f.values[name].(bool)
	return b
}

// GetInt64 returns a field value coerced to int64, or 0.
func (f *FormState) GetInt64(name string) int64 {
	n, _ := f.values[name].(int64)
	return n
}

// Touched reports whether the user has written the field at least once.
func (f *FormState) Touched(name string) bool {
	return f.touched[name]
}

// Values returns a copy of the current values.
func (f *FormState) Values() Values {
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// RecordResult replaces the stored errors for the fields covered by a
// validation pass. Fields outside the pass keep their messages.
func (f *FormState) RecordResult(fieldNames []string, r Result) {
	for _, name := range fieldNames {
		delete(f.errors, name)
	}
	for _, e := range r.Errors {
		f.errors[e.Path] = append(f.errors[e.Path], e.Message)
	}
}

// FieldErrors returns the messages currently recorded against a field.
func (f *FormState) FieldErrors(name string) []string {
	return f.errors[name]
}

// Schema returns the schema this state validates against.
func (f *FormState) Schema() *Schema {
	return f.schema
}

// Validate runs a full-record validation against the schema.
func (f *FormState) Validate() Result {
	return f.schema.Validate(f.values)
}

// ValidateFields runs a partial validation over the named fields only.
func (f *FormState) ValidateFields(fieldNames []string) Result {
	return f.schema.ValidateFields(f.values, fieldNames)
}
