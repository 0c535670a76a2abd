package delete

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/propertyclient"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/session"
	"github.com/conveydesk/convey-cli/internal/settings"
	"github.com/conveydesk/convey-cli/internal/validation"
)

type Inputs struct {
	ID               string `validate:"required"`
	SkipConfirmation bool
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete <property-file-id>",
		Short: "Deletes a property file",
		Long:  "Deletes a property file by ID. Asks for confirmation unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := newHandler(runtimeContext, cmd.InOrStdin())

			inputs, err := handler.ResolveInputs(runtimeContext.Viper, args)
			if err != nil {
				return err
			}
			handler.inputs = inputs
			if err := handler.ValidateInputs(); err != nil {
				return err
			}
			return handler.Execute(cmd.Context())
		},
	}

	settings.AddSkipConfirmation(deleteCmd)

	return deleteCmd
}

type handler struct {
	log       *zerolog.Logger
	client    *propertyclient.Client
	session   *session.Session
	stdin     io.Reader
	inputs    Inputs
	validated bool
}

func newHandler(ctx *runtime.Context, stdin io.Reader) *handler {
	return &handler{
		log:     ctx.Logger,
		client:  ctx.PropertyClient(),
		session: ctx.Session,
		stdin:   stdin,
	}
}

func (h *handler) ResolveInputs(v *viper.Viper, args []string) (Inputs, error) {
	return Inputs{
		ID:               args[0],
		SkipConfirmation: v.GetBool(settings.Flags.SkipConfirmation.Name),
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
	if err := h.session.Require(access.PermPropertyDelete); err != nil {
		return err
	}

	pf, err := h.client.Get(ctx, h.inputs.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch property file: %w", err)
	}

	confirmed, err := h.shouldDelete(pf)
	if err != nil {
		return err
	}
	if !confirmed {
		h.log.Info().Msg("Property file deletion canceled")
		return nil
	}

	if err := h.client.Delete(ctx, pf.ID); err != nil {
		return fmt.Errorf("failed to delete property file: %w", err)
	}

	h.log.Info().Msgf("Deleted property file %s (%s)", pf.Reference, pf.Title)
	return nil
}

func (h *handler) shouldDelete(pf *propertyclient.PropertyFile) (bool, error) {
	if h.inputs.SkipConfirmation {
		return true, nil
	}

	h.log.Info().Msgf("About to delete property file %s: %s, %s %s", pf.Reference, pf.Title, pf.City, pf.Postcode)
	h.log.Info().Msg(text.FgRed.Sprint("This action cannot be undone."))
	h.log.Info().Msgf("To confirm, type the reference: %s", pf.Reference)

	typed, err := h.readLine()
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return typed == pf.Reference, nil
}

func (h *handler) readLine() (string, error) {
	line, err := bufio.NewReader(h.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
