package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/conveydesk/convey-cli/internal/access"
)

var (
	propertyReferenceRe = regexp.MustCompile(`^PF-[0-9]{6}$`)
	// Standard UK postcode shapes, outward + inward code, case-insensitive.
	ukPostcodeRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][A-Z0-9]?\s?[0-9][A-Z]{2}$`)
)

var sortFields = map[string]struct{}{
	"created_at":   {},
	"updated_at":   {},
	"asking_price": {},
	"title":        {},
}

var organizationTypes = map[string]struct{}{
	"estate_agency":     {},
	"law_firm":          {},
	"conveyancing_firm": {},
	"brokerage":         {},
}

func isPropertyReference(fl validator.FieldLevel) bool {
	return propertyReferenceRe.MatchString(fl.Field().String())
}

func isUKPostcode(fl validator.FieldLevel) bool {
	return ukPostcodeRe.MatchString(fl.Field().String())
}

func isRoleName(fl validator.FieldLevel) bool {
	_, err := access.ParseRole(fl.Field().String())
	return err == nil
}

func isOrganizationType(fl validator.FieldLevel) bool {
	_, ok := organizationTypes[fl.Field().String()]
	return ok
}

func isSortField(fl validator.FieldLevel) bool {
	_, ok := sortFields[fl.Field().String()]
	return ok
}
