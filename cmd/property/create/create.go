package create

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/propertyclient"
	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/session"
	"github.com/conveydesk/convey-cli/internal/settings"
	"github.com/conveydesk/convey-cli/internal/ui"
	"github.com/conveydesk/convey-cli/internal/wizard"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Creates a property file through an interactive wizard",
		Long:  "Walks through the property file form step by step and submits the record as a draft.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := newHandler(runtimeContext)
			return handler.execute(cmd.Context())
		},
	}

	return createCmd
}

type handler struct {
	log      *zerolog.Logger
	client   *propertyclient.Client
	session  *session.Session
	settings *settings.Settings
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:      ctx.Logger,
		client:   ctx.PropertyClient(),
		session:  ctx.Session,
		settings: ctx.Settings,
	}
}

func (h *handler) execute(ctx context.Context) error {
	if err := h.session.Require(access.PermPropertyCreate); err != nil {
		return err
	}

	submitter := wizard.NewSubmitter(h.submitPropertyFile, wizard.WithSubmitLogger(h.log))

	model, err := newWizardModel(ctx, submitter, h.defaults())
	if err != nil {
		return fmt.Errorf("failed to build property wizard: %w", err)
	}

	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("property wizard failed: %w", err)
	}

	final, ok := finalModel.(wizardModel)
	if !ok {
		return fmt.Errorf("unexpected wizard model type")
	}

	if final.cancelled {
		ui.Warning("Property file creation cancelled")
		return nil
	}
	if !final.completed {
		return nil
	}

	pf, ok := submitter.Result().(*propertyclient.PropertyFile)
	if !ok {
		return fmt.Errorf("unexpected submit result type")
	}

	ui.Success(fmt.Sprintf("Property file %s created as a draft.", pf.Reference))
	ui.Dim("View it with: " + ui.RenderCommand("convey property get "+pf.ID))
	return nil
}

// defaults seeds the form with project-level settings so repeat users
// don't retype their locale.
func (h *handler) defaults() forms.Values {
	defaults := forms.Values{}
	if h.settings == nil {
		return defaults
	}
	if h.settings.Project.DefaultCity != "" {
		defaults[forms.FieldCity] = h.settings.Project.DefaultCity
	}
	if h.settings.Project.DefaultPropertyType != "" {
		defaults[forms.FieldPropertyType] = h.settings.Project.DefaultPropertyType
	}
	return defaults
}

// submitPropertyFile maps the validated form record onto the API shape
// and creates it. New records always start life as drafts.
func (h *handler) submitPropertyFile(ctx context.Context, record forms.Values) (any, error) {
	pf := &propertyclient.PropertyFile{
		Title:        stringValue(record, forms.FieldTitle),
		AddressLine1: stringValue(record, forms.FieldAddressLine1),
		AddressLine2: stringValue(record, forms.FieldAddressLine2),
		City:         stringValue(record, forms.FieldCity),
		Postcode:     stringValue(record, forms.FieldPostcode),
		PropertyType: stringValue(record, forms.FieldPropertyType),
		SellerName:   stringValue(record, forms.FieldOwnerName),
		SellerEmail:  stringValue(record, forms.FieldOwnerEmail),
		Notes:        stringValue(record, forms.FieldNotes),
		Status:       propertyclient.StatusDraft,
	}
	if v, ok := record[forms.FieldBedrooms].(int64); ok {
		pf.Bedrooms = int(v)
	}
	if v, ok := record[forms.FieldAskingPrice].(int64); ok {
		pf.AskingPrice = v
	}
	if email := stringValue(record, forms.FieldSolicitorEmail); email != "" {
		pf.SolicitorEmail = email
		if h.settings != nil {
			pf.SolicitorName = h.settings.Project.SolicitorName
		}
	}

	return h.client.Create(ctx, pf)
}

func stringValue(record forms.Values, name string) string {
	s, _ := record[name].(string)
	return s
}
