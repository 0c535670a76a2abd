package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Values {
	return Values{
		FieldFirstName:       "Ada",
		FieldLastName:        "Lovelace",
		FieldEmail:           "ada@example.com",
		FieldPassword:        "correct-horse-9",
		FieldPasswordConfirm: "correct-horse-9",
		FieldRole:            "owner",
		FieldTermsAccepted:   true,
	}
}

func TestRegistrationSchema_ValidRecord(t *testing.T) {
	res := RegistrationSchema().Validate(validRegistration())
	assert.True(t, res.OK, "expected no errors, got %v", res.Errors)
}

func TestRegistrationSchema_RequiredFields(t *testing.T) {
	res := RegistrationSchema().Validate(Values{})
	require.False(t, res.OK)

	assert.Contains(t, res.ErrorsFor(FieldFirstName), "is required")
	assert.Contains(t, res.ErrorsFor(FieldEmail), "is required")
	assert.Contains(t, res.ErrorsFor(FieldTermsAccepted), "must be accepted")
	// Optional fields stay silent when absent.
	assert.Empty(t, res.ErrorsFor(FieldPhone))
	assert.Empty(t, res.ErrorsFor(FieldOrganizationName))
}

func TestRegistrationSchema_EmailFormat(t *testing.T) {
	values := validRegistration()
	values[FieldEmail] = "not-an-email"

	res := RegistrationSchema().Validate(values)
	require.False(t, res.OK)
	assert.Equal(t, []string{"must be a valid email address"}, res.ErrorsFor(FieldEmail))
}

func TestRegistrationSchema_PasswordConfirmMustMatch(t *testing.T) {
	values := validRegistration()
	values[FieldPasswordConfirm] = "something-else-9"

	res := RegistrationSchema().Validate(values)
	require.False(t, res.OK)
	assert.Equal(t, []string{"must match the password"}, res.ErrorsFor(FieldPasswordConfirm))
}

func TestRegistrationSchema_ConditionalOrganizationRequirement(t *testing.T) {
	schema := RegistrationSchema()
	termsFields := []string{FieldRole, FieldOrganizationName, FieldOrganizationType, FieldTermsAccepted}

	values := validRegistration()
	values[FieldRole] = "agent"
	values[FieldOrganizationName] = ""

	res := schema.ValidateFields(values, termsFields)
	require.False(t, res.OK)
	assert.Contains(t, res.ErrorsFor(FieldOrganizationName), "is required for the selected role")
	assert.Contains(t, res.ErrorsFor(FieldOrganizationType), "is required for the selected role")

	values[FieldOrganizationName] = "Acme"
	values[FieldOrganizationType] = "estate_agency"
	res = schema.ValidateFields(values, termsFields)
	assert.True(t, res.OK, "expected no errors, got %v", res.Errors)

	// A buyer never needs organization details.
	values[FieldRole] = "buyer"
	values[FieldOrganizationName] = ""
	values[FieldOrganizationType] = ""
	res = schema.ValidateFields(values, termsFields)
	assert.True(t, res.OK, "expected no errors, got %v", res.Errors)
}

func TestValidateFields_ConditionalAppliesWithDiscriminatorOutOfScope(t *testing.T) {
	schema := RegistrationSchema()
	organization := []string{FieldOrganizationName, FieldOrganizationType}

	// Validating only the organization fields must still consult the
	// role chosen on an earlier step.
	values := validRegistration()
	values[FieldRole] = "agent"
	values[FieldOrganizationName] = ""
	values[FieldOrganizationType] = ""

	res := schema.ValidateFields(values, organization)
	require.False(t, res.OK)
	assert.Contains(t, res.ErrorsFor(FieldOrganizationName), "is required for the selected role")

	values[FieldRole] = "buyer"
	res = schema.ValidateFields(values, organization)
	assert.True(t, res.OK, "expected no errors, got %v", res.Errors)
}

func TestValidateFields_IgnoresOutOfScopeFields(t *testing.T) {
	schema := RegistrationSchema()
	personal := []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldPassword, FieldPasswordConfirm}

	// Everything outside the personal step is invalid or missing; the
	// personal step must still validate on its own fields alone.
	values := Values{
		FieldFirstName:       "Ada",
		FieldLastName:        "Lovelace",
		FieldEmail:           "ada@example.com",
		FieldPassword:        "correct-horse-9",
		FieldPasswordConfirm: "correct-horse-9",
		FieldRole:            "astronaut",
	}
	res := schema.ValidateFields(values, personal)
	assert.True(t, res.OK, "expected no errors, got %v", res.Errors)

	// Mutating a field outside the step never changes its validity.
	values[FieldTermsAccepted] = false
	res2 := schema.ValidateFields(values, personal)
	assert.Equal(t, res.OK, res2.OK)
}

func TestPropertyFileSchema_BoundMessagesNameTheBound(t *testing.T) {
	schema := PropertyFileSchema()

	values := Values{
		FieldTitle:        "2 Mill Lane",
		FieldAddressLine1: "2 Mill Lane",
		FieldCity:         "Norwich",
		FieldPostcode:     "NR1 1AA",
		FieldAskingPrice:  int64(200_000_000),
		FieldPropertyType: "terraced",
		FieldOwnerName:    "Joan Clarke",
		FieldOwnerEmail:   "joan@example.com",
	}

	res := schema.Validate(values)
	require.False(t, res.OK)
	assert.Equal(t, []string{"must be at most 100000000"}, res.ErrorsFor(FieldAskingPrice))

	values[FieldAskingPrice] = int64(-5)
	res = schema.Validate(values)
	require.False(t, res.OK)
	assert.Equal(t, []string{"must be at least 1"}, res.ErrorsFor(FieldAskingPrice))

	values[FieldAskingPrice] = int64(350_000)
	res = schema.Validate(values)
	assert.True(t, res.OK, "expected no errors, got %v", res.Errors)
}

func TestPropertyFileSchema_Postcode(t *testing.T) {
	schema := PropertyFileSchema()
	res := schema.ValidateFields(Values{FieldPostcode: "not a postcode"}, []string{FieldPostcode})
	require.False(t, res.OK)
	assert.Equal(t, []string{"must be a valid UK postcode"}, res.ErrorsFor(FieldPostcode))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("USER@EXAMPLE.COM"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  user@Example.Com "))

	// Idempotence
	for _, input := range []string{"USER@EXAMPLE.COM", " x@Y.z ", "already@lower.com", ""} {
		once := NormalizeEmail(input)
		assert.Equal(t, once, NormalizeEmail(once))
	}
}

func TestValidationNeverPanics(t *testing.T) {
	schema := RegistrationSchema()
	weird := Values{
		FieldEmail:    12345,
		FieldPassword: []string{"not", "a", "string"},
		FieldRole:     nil,
	}
	assert.NotPanics(t, func() {
		res := schema.Validate(weird)
		assert.False(t, res.OK)
	})
}
