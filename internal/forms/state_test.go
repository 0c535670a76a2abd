package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormState_DefaultsAreNormalizedNotTouched(t *testing.T) {
	state := NewFormState(RegistrationSchema(), Values{
		FieldEmail:     "  ADA@Example.COM ",
		FieldFirstName: "Ada",
	})

	assert.Equal(t, "ada@example.com", state.GetString(FieldEmail))
	assert.False(t, state.Touched(FieldEmail))
	assert.False(t, state.Touched(FieldFirstName))
}

func TestFormState_SetNormalizesAndMarksTouched(t *testing.T) {
	state := NewFormState(RegistrationSchema(), nil)

	state.Set(FieldEmail, "USER@EXAMPLE.COM")
	assert.Equal(t, "user@example.com", state.GetString(FieldEmail))
	assert.True(t, state.Touched(FieldEmail))
}

func TestFormState_DiscriminatorChangeRetainsDependentValues(t *testing.T) {
	state := NewFormState(RegistrationSchema(), nil)

	state.Set(FieldRole, "agent")
	state.Set(FieldOrganizationName, "Acme")
	state.Set(FieldOrganizationType, "estate_agency")

	// Switching to a role that no longer needs the organization group
	// must not wipe the entered values.
	state.Set(FieldRole, "buyer")
	assert.Equal(t, "Acme", state.GetString(FieldOrganizationName))
	assert.Equal(t, "estate_agency", state.GetString(FieldOrganizationType))

	// Re-selecting the original role restores the previous entries.
	state.Set(FieldRole, "agent")
	assert.Equal(t, "Acme", state.GetString(FieldOrganizationName))
}

func TestFormState_RecordResultReplacesScopedErrorsOnly(t *testing.T) {
	schema := RegistrationSchema()
	state := NewFormState(schema, nil)

	full := state.Validate()
	state.RecordResult(schema.FieldNames(), full)
	assert.NotEmpty(t, state.FieldErrors(FieldFirstName))
	assert.NotEmpty(t, state.FieldErrors(FieldTermsAccepted))

	// Re-validating just the personal fields clears their messages but
	// leaves the terms error in place.
	state.Set(FieldFirstName, "Ada")
	state.Set(FieldLastName, "Lovelace")
	state.Set(FieldEmail, "ada@example.com")
	state.Set(FieldPassword, "correct-horse-9")
	state.Set(FieldPasswordConfirm, "correct-horse-9")

	personal := []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldPassword, FieldPasswordConfirm}
	state.RecordResult(personal, state.ValidateFields(personal))

	assert.Empty(t, state.FieldErrors(FieldFirstName))
	assert.NotEmpty(t, state.FieldErrors(FieldTermsAccepted))
}

func TestScorePassword(t *testing.T) {
	tests := []struct {
		password string
		want     StrengthLevel
	}{
		{"short", StrengthWeak},
		{"password123", StrengthWeak},
		{"aaaaaaaaaa", StrengthWeak},
		{"aaaaaaaa1", StrengthFair},
		{"Abcdefgh12", StrengthGood},
		{"Abcdefgh12!xyz", StrengthStrong},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ScorePassword(tt.password))
		})
	}
}

func TestStrengthMeter_RateLimits(t *testing.T) {
	meter := NewStrengthMeter(100 * time.Millisecond)

	now := time.Unix(1000, 0)
	meter.now = func() time.Time { return now }

	assert.Equal(t, StrengthWeak, meter.Recompute("abc"))

	// Within the cooldown the cached level is returned even though the
	// input is now strong.
	now = now.Add(10 * time.Millisecond)
	assert.Equal(t, StrengthWeak, meter.Recompute("Abcdefgh12!xyz"))

	// After the cooldown the meter rescores.
	now = now.Add(200 * time.Millisecond)
	assert.Equal(t, StrengthStrong, meter.Recompute("Abcdefgh12!xyz"))

	// Force bypasses the cooldown.
	meter.Force("abc")
	assert.Equal(t, StrengthWeak, meter.Level())
}

func TestStrengthMeter_SameInputUsesCache(t *testing.T) {
	meter := NewStrengthMeter(time.Hour)
	level := meter.Recompute("Abcdefgh12!xyz")
	assert.Equal(t, StrengthStrong, level)
	assert.Equal(t, level, meter.Recompute("Abcdefgh12!xyz"))
}
