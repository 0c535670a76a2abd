package forms

import (
	"github.com/conveydesk/convey-cli/internal/access"
)

// Field names used by the account-registration form.
const (
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldPassword         = "password"
	FieldPasswordConfirm  = "password_confirm"
	FieldRole             = "role"
	FieldOrganizationName = "organization_name"
	FieldOrganizationType = "organization_type"
	FieldTermsAccepted    = "terms_accepted"
)

// Field names used by the property-file form.
const (
	FieldTitle          = "title"
	FieldAddressLine1   = "address_line1"
	FieldAddressLine2   = "address_line2"
	FieldCity           = "city"
	FieldPostcode       = "postcode"
	FieldAskingPrice    = "asking_price"
	FieldPropertyType   = "property_type"
	FieldBedrooms       = "bedrooms"
	FieldOwnerName      = "owner_name"
	FieldOwnerEmail     = "owner_email"
	FieldSolicitorEmail = "solicitor_email"
	FieldNotes          = "notes"
)

const (
	msgOrgRequired = "is required for the selected role"
	msgInvalidRole = "must be one of buyer, owner, agent, solicitor"
)

// OrganizationTypes is the closed set accepted by the registration form.
var OrganizationTypes = []string{"estate_agency", "law_firm", "conveyancing_firm", "brokerage"}

// RegistrationSchema describes the account-registration record. The
// organization fields are required only when the role discriminator is
// agent or solicitor; otherwise they are optional and, when present, not
// re-validated.
func RegistrationSchema() *Schema {
	fields := []Field{
		{Name: FieldFirstName, Required: true, Tag: "max=60", Messages: map[string]string{"max": "must be at most 60 characters"}},
		{Name: FieldLastName, Required: true, Tag: "max=60", Messages: map[string]string{"max": "must be at most 60 characters"}},
		{
			Name: FieldEmail, Required: true, Tag: "email",
			Messages:  map[string]string{"email": "must be a valid email address"},
			Normalize: EmailNormalizer,
		},
		{
			Name: FieldPhone, Tag: "e164",
			Messages: map[string]string{"e164": "must be a valid phone number in international format"},
		},
		{
			Name: FieldPassword, Required: true, Tag: "min=8",
			Messages: map[string]string{"min": "must be at least 8 characters"},
		},
		{
			Name: FieldPasswordConfirm, Required: true,
			EqualsField: FieldPassword, EqualsMessage: "must match the password",
		},
		{
			Name: FieldRole, Required: true,
			Tag:      "oneof=buyer owner agent solicitor",
			Messages: map[string]string{"oneof": msgInvalidRole},
		},
		{
			Name: FieldOrganizationName, RequiredMessage: msgOrgRequired,
			Tag:      "max=100",
			Messages: map[string]string{"max": "must be at most 100 characters"},
		},
		{
			Name: FieldOrganizationType, RequiredMessage: msgOrgRequired,
			Tag:      "oneof=estate_agency law_firm conveyancing_firm brokerage",
			Messages: map[string]string{"oneof": "must be a recognised organization type"},
		},
		{
			Name: FieldTermsAccepted, Required: true,
			RequiredMessage: "must be accepted",
		},
	}

	conditionals := []ConditionalRule{
		{
			Discriminator: FieldRole,
			RequiredWhen: map[string][]string{
				string(access.RoleAgent):     {FieldOrganizationName, FieldOrganizationType},
				string(access.RoleSolicitor): {FieldOrganizationName, FieldOrganizationType},
			},
		},
	}

	return NewSchema(fields, conditionals)
}

// PropertyFileSchema describes the property-file record created and
// edited through the property wizard.
func PropertyFileSchema() *Schema {
	fields := []Field{
		{
			Name: FieldTitle, Required: true, Tag: "max=120",
			Messages: map[string]string{"max": "must be at most 120 characters"},
		},
		{Name: FieldAddressLine1, Required: true, Tag: "max=200", Messages: map[string]string{"max": "must be at most 200 characters"}},
		{Name: FieldAddressLine2, Tag: "max=200", Messages: map[string]string{"max": "must be at most 200 characters"}},
		{Name: FieldCity, Required: true, Tag: "max=100", Messages: map[string]string{"max": "must be at most 100 characters"}},
		{
			Name: FieldPostcode, Required: true, Tag: "postcode_iso3166_alpha2=GB",
			Messages: map[string]string{"postcode_iso3166_alpha2": "must be a valid UK postcode"},
		},
		{
			Name: FieldAskingPrice, Required: true, Tag: "min=1,max=100000000",
			Messages: map[string]string{
				"min": "must be at least 1",
				"max": "must be at most 100000000",
			},
		},
		{
			Name: FieldPropertyType, Required: true,
			Tag:      "oneof=detached semi_detached terraced flat bungalow land",
			Messages: map[string]string{"oneof": "must be a recognised property type"},
		},
		{
			Name: FieldBedrooms, Tag: "min=0,max=50",
			Messages: map[string]string{
				"min": "must be at least 0",
				"max": "must be at most 50",
			},
		},
		{Name: FieldOwnerName, Required: true, Tag: "max=120", Messages: map[string]string{"max": "must be at most 120 characters"}},
		{
			Name: FieldOwnerEmail, Required: true, Tag: "email",
			Messages:  map[string]string{"email": "must be a valid email address"},
			Normalize: EmailNormalizer,
		},
		{
			Name: FieldSolicitorEmail, Tag: "email",
			Messages:  map[string]string{"email": "must be a valid email address"},
			Normalize: EmailNormalizer,
		},
		{Name: FieldNotes, Tag: "max=2000", Messages: map[string]string{"max": "must be at most 2000 characters"}},
	}

	return NewSchema(fields, nil)
}

// PropertyTypes is the closed set accepted by the property form.
var PropertyTypes = []string{"detached", "semi_detached", "terraced", "flat", "bungalow", "land"}
