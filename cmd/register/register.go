package register

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/environments"
	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/ui"
	"github.com/conveydesk/convey-cli/internal/wizard"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new ConveyDesk account",
		Long:  "Walks through account registration: personal details, role, organization and terms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx)
			return h.execute(cmd.Context())
		},
	}
	return cmd
}

type handler struct {
	log            *zerolog.Logger
	environmentSet *environments.EnvironmentSet
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:            ctx.Logger,
		environmentSet: ctx.EnvironmentSet,
	}
}

func (h *handler) execute(ctx context.Context) error {
	submitter := wizard.NewSubmitter(h.submitRegistration, wizard.WithSubmitLogger(h.log))

	model, err := newWizardModel(ctx, submitter)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("registration wizard failed: %w", err)
	}

	final := finalModel.(wizardModel)
	if final.cancelled {
		ui.Warning("Registration cancelled")
		return nil
	}
	if !final.completed {
		return nil
	}

	fmt.Println()
	ui.Success("Account created!")
	fmt.Printf("Sign in with: %s\n", ui.RenderCommand("convey login"))
	return nil
}

// registrationInput is the wire shape of the registerAccount mutation input.
type registrationInput struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	EmailAddress     string `json:"emailAddress"`
	Phone            string `json:"phone,omitempty"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	OrganizationName string `json:"organizationName,omitempty"`
	OrganizationType string `json:"organizationType,omitempty"`
	TermsAccepted    bool   `json:"termsAccepted"`
}

// buildRegistrationInput maps the validated form record onto the mutation
// input. Organization fields are sent only for roles that require them;
// retained-but-inapplicable values stay local.
func buildRegistrationInput(record forms.Values) registrationInput {
	str := func(name string) string {
		s, _ := record[name].(string)
		return s
	}
	accepted, _ := record[forms.FieldTermsAccepted].(bool)

	input := registrationInput{
		FirstName:     str(forms.FieldFirstName),
		LastName:      str(forms.FieldLastName),
		EmailAddress:  str(forms.FieldEmail),
		Phone:         str(forms.FieldPhone),
		Password:      str(forms.FieldPassword),
		Role:          str(forms.FieldRole),
		TermsAccepted: accepted,
	}

	if roleRequiresOrganization(input.Role) {
		input.OrganizationName = str(forms.FieldOrganizationName)
		input.OrganizationType = str(forms.FieldOrganizationType)
	}

	return input
}

func (h *handler) submitRegistration(ctx context.Context, record forms.Values) (any, error) {
	client := graphql.NewClient(h.environmentSet.GraphQLURL)

	req := graphql.NewRequest(`
	mutation RegisterAccount($input: RegisterAccountInput!) {
		registerAccount(input: $input) {
			accountId
		}
	}`)
	req.Var("input", buildRegistrationInput(record))

	var respEnvelope struct {
		RegisterAccount struct {
			AccountID string `json:"accountId"`
		} `json:"registerAccount"`
	}

	if err := client.Run(ctx, req, &respEnvelope); err != nil {
		return nil, err
	}

	h.log.Debug().Str("accountId", respEnvelope.RegisterAccount.AccountID).Msg("account registered")
	return respEnvelope.RegisterAccount.AccountID, nil
}
