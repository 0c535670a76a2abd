package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/propertyclient"
	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/session"
	"github.com/conveydesk/convey-cli/internal/validation"
)

type Inputs struct {
	ID     string `validate:"required"`
	Status string `validate:"omitempty,oneof=draft listed under_offer sold withdrawn"`
}

// flagFields maps the editable flags onto their form schema fields.
// Numeric flags are resolved with GetInt64 so bounds are checked on the
// number, not on its text.
var flagFields = map[string]string{
	"title":           forms.FieldTitle,
	"address-line1":   forms.FieldAddressLine1,
	"address-line2":   forms.FieldAddressLine2,
	"city":            forms.FieldCity,
	"postcode":        forms.FieldPostcode,
	"property-type":   forms.FieldPropertyType,
	"bedrooms":        forms.FieldBedrooms,
	"asking-price":    forms.FieldAskingPrice,
	"owner-name":      forms.FieldOwnerName,
	"owner-email":     forms.FieldOwnerEmail,
	"solicitor-email": forms.FieldSolicitorEmail,
	"notes":           forms.FieldNotes,
}

var numericFlags = map[string]bool{
	"bedrooms":     true,
	"asking-price": true,
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update <property-file-id>",
		Short: "Updates fields of a property file",
		Long:  "Fetches the property file, applies the given flag values on top of it, revalidates the whole record, and saves it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := newHandler(runtimeContext)

			inputs, err := handler.ResolveInputs(runtimeContext.Viper, args)
			if err != nil {
				return err
			}
			handler.inputs = inputs
			handler.edits = resolveEdits(cmd, runtimeContext.Viper)
			handler.statusChanged = cmd.Flags().Changed("status")

			if err := handler.ValidateInputs(); err != nil {
				return err
			}
			return handler.Execute(cmd.Context())
		},
	}

	updateCmd.Flags().String("title", "", "Listing title")
	updateCmd.Flags().String("address-line1", "", "First address line")
	updateCmd.Flags().String("address-line2", "", "Second address line")
	updateCmd.Flags().String("city", "", "City or town")
	updateCmd.Flags().String("postcode", "", "UK postcode")
	updateCmd.Flags().String("property-type", "", "Property type (detached, semi_detached, terraced, flat, bungalow, land)")
	updateCmd.Flags().Int64("bedrooms", 0, "Number of bedrooms")
	updateCmd.Flags().Int64("asking-price", 0, "Asking price in whole pounds")
	updateCmd.Flags().String("owner-name", "", "Owner's full name")
	updateCmd.Flags().String("owner-email", "", "Owner's email address")
	updateCmd.Flags().String("solicitor-email", "", "Solicitor's email address")
	updateCmd.Flags().String("notes", "", "Free-form notes")
	updateCmd.Flags().String("status", "", "Lifecycle status (draft, listed, under_offer, sold, withdrawn)")

	return updateCmd
}

// resolveEdits collects only the flags the user actually set, keyed by
// form field name. Untouched fields keep their stored values.
func resolveEdits(cmd *cobra.Command, v *viper.Viper) forms.Values {
	edits := forms.Values{}
	for flag, field := range flagFields {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		if numericFlags[flag] {
			edits[field] = v.GetInt64(flag)
		} else {
			edits[field] = v.GetString(flag)
		}
	}
	return edits
}

type handler struct {
	log           *zerolog.Logger
	client        *propertyclient.Client
	session       *session.Session
	inputs        Inputs
	edits         forms.Values
	statusChanged bool
	validated     bool
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:     ctx.Logger,
		client:  ctx.PropertyClient(),
		session: ctx.Session,
	}
}

func (h *handler) ResolveInputs(v *viper.Viper, args []string) (Inputs, error) {
	return Inputs{
		ID:     args[0],
		Status: v.GetString("status"),
	}, nil
}

func (h *handler) ValidateInputs() error {
	validate, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}

	if err := validate.Struct(h.inputs); err != nil {
		return validate.ParseValidationErrors(err)
	}

	h.validated = true
	return nil
}

func (h *handler) Execute(ctx context.Context) error {
	if err := h.session.Require(access.PermPropertyUpdate); err != nil {
		return err
	}

	if len(h.edits) == 0 && !h.statusChanged {
		return fmt.Errorf("nothing to update, pass at least one field flag")
	}

	pf, err := h.client.Get(ctx, h.inputs.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch property file: %w", err)
	}

	state := forms.NewFormState(forms.PropertyFileSchema(), recordValues(pf))
	for field, value := range h.edits {
		state.Set(field, value)
	}

	res := state.Validate()
	if !res.OK {
		return validationError(res)
	}

	applyValues(pf, state.Values())
	if h.statusChanged {
		pf.Status = h.inputs.Status
	}

	updated, err := h.client.Update(ctx, pf.ID, pf)
	if err != nil {
		return fmt.Errorf("failed to update property file: %w", err)
	}

	h.log.Info().Msgf("Updated property file %s (%s)", updated.Reference, updated.Title)
	return nil
}

// recordValues converts a stored record into form values keyed by schema
// field names.
func recordValues(pf *propertyclient.PropertyFile) forms.Values {
	return forms.Values{
		forms.FieldTitle:          pf.Title,
		forms.FieldAddressLine1:   pf.AddressLine1,
		forms.FieldAddressLine2:   pf.AddressLine2,
		forms.FieldCity:           pf.City,
		forms.FieldPostcode:       pf.Postcode,
		forms.FieldPropertyType:   pf.PropertyType,
		forms.FieldBedrooms:       int64(pf.Bedrooms),
		forms.FieldAskingPrice:    pf.AskingPrice,
		forms.FieldOwnerName:      pf.SellerName,
		forms.FieldOwnerEmail:     pf.SellerEmail,
		forms.FieldSolicitorEmail: pf.SolicitorEmail,
		forms.FieldNotes:          pf.Notes,
	}
}

// applyValues writes the validated form values back onto the record.
func applyValues(pf *propertyclient.PropertyFile, values forms.Values) {
	pf.Title, _ = values[forms.FieldTitle].(string)
	pf.AddressLine1, _ = values[forms.FieldAddressLine1].(string)
	pf.AddressLine2, _ = values[forms.FieldAddressLine2].(string)
	pf.City, _ = values[forms.FieldCity].(string)
	pf.Postcode, _ = values[forms.FieldPostcode].(string)
	pf.PropertyType, _ = values[forms.FieldPropertyType].(string)
	if v, ok := values[forms.FieldBedrooms].(int64); ok {
		pf.Bedrooms = int(v)
	}
	if v, ok := values[forms.FieldAskingPrice].(int64); ok {
		pf.AskingPrice = v
	}
	pf.SellerName, _ = values[forms.FieldOwnerName].(string)
	pf.SellerEmail, _ = values[forms.FieldOwnerEmail].(string)
	pf.SolicitorEmail, _ = values[forms.FieldSolicitorEmail].(string)
	pf.Notes, _ = values[forms.FieldNotes].(string)
}

func validationError(res forms.Result) error {
	var b strings.Builder
	b.WriteString("the updated record is invalid:\n")
	for _, fe := range res.Errors {
		fmt.Fprintf(&b, "  %s %s\n", fe.Path, fe.Message)
	}
	return fmt.Errorf("%s", strings.TrimRight(b.String(), "\n"))
}
