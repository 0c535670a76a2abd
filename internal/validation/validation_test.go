package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_Success(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.NotNil(t, v.validate)
	assert.NotNil(t, v.trans)
}

func TestValidator_StructWithDomainTags(t *testing.T) {
	type listInputs struct {
		Reference string `validate:"omitempty,property_reference" cli:"--reference"`
		SortBy    string `validate:"omitempty,sort_field" cli:"--sort-by"`
		Role      string `validate:"omitempty,role_name" cli:"--role"`
		Postcode  string `validate:"omitempty,uk_postcode" cli:"--postcode"`
		OrgType   string `validate:"omitempty,organization_type"`
	}

	tests := []struct {
		name          string
		input         listInputs
		wantError     bool
		wantErrorKeys []string
	}{
		{
			name: "all valid",
			input: listInputs{
				Reference: "PF-123456",
				SortBy:    "asking_price",
				Role:      "solicitor",
				Postcode:  "NR1 1AA",
				OrgType:   "law_firm",
			},
		},
		{
			name:  "empty optional fields pass",
			input: listInputs{},
		},
		{
			name:          "bad reference",
			input:         listInputs{Reference: "PF-12"},
			wantError:     true,
			wantErrorKeys: []string{"listInputs.--reference"},
		},
		{
			name:          "bad sort field",
			input:         listInputs{SortBy: "colour"},
			wantError:     true,
			wantErrorKeys: []string{"listInputs.--sort-by"},
		},
		{
			name:          "bad role",
			input:         listInputs{Role: "astronaut"},
			wantError:     true,
			wantErrorKeys: []string{"listInputs.--role"},
		},
		{
			name:          "bad postcode",
			input:         listInputs{Postcode: "12345"},
			wantError:     true,
			wantErrorKeys: []string{"listInputs.--postcode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewValidator()
			require.NoError(t, err)

			err = v.Struct(tt.input)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			ves := v.ParseValidationErrors(err)
			var keys []string
			for _, ve := range ves {
				keys = append(keys, ve.Field)
			}
			assert.Equal(t, tt.wantErrorKeys, keys)
		})
	}
}

func TestValidator_TranslatedMessages(t *testing.T) {
	type form struct {
		Email string `validate:"required,email" cli:"--email"`
	}

	v, err := NewValidator()
	require.NoError(t, err)

	err = v.Struct(form{Email: "not-an-email"})
	require.Error(t, err)

	ves := v.ParseValidationErrors(err)
	require.Len(t, ves, 1)
	assert.Equal(t, "--email must be a valid email address: not-an-email", ves[0].Detail)
}

func TestRegisterCustomTranslation(t *testing.T) {
	type form struct {
		Name string `validate:"required"`
	}

	v, err := NewValidator()
	require.NoError(t, err)
	require.NoError(t, v.RegisterCustomTranslation("required", "{0} is mandatory!"))

	err = v.Struct(form{})
	require.Error(t, err)

	ves := v.ParseValidationErrors(err)
	require.Len(t, ves, 1)
	assert.Equal(t, "Name is mandatory!", ves[0].Detail)
}

func TestUKPostcodeShapes(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	type pc struct {
		Code string `validate:"uk_postcode"`
	}

	for _, valid := range []string{"NR1 1AA", "SW1A 2AA", "m1 1ae", "B33 8TH", "CR26XH"} {
		assert.NoError(t, v.Struct(pc{Code: valid}), valid)
	}
	for _, invalid := range []string{"", "1234", "ABCD 123", "NR1-1AA"} {
		assert.Error(t, v.Struct(pc{Code: invalid}), invalid)
	}
}
