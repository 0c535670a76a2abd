package get

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/propertyclient"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/session"
	"github.com/conveydesk/convey-cli/internal/settings"
	"github.com/conveydesk/convey-cli/internal/ui"
	"github.com/conveydesk/convey-cli/internal/validation"
)

type Inputs struct {
	ID     string `validate:"required"`
	Output string `validate:"oneof=table json"`
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <property-file-id>",
		Short: "Shows a single property file",
		Long:  "Fetches one property file by ID and prints its details.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := newHandler(runtimeContext, cmd.OutOrStdout())

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

	settings.AddOutputFlag(getCmd)

	return getCmd
}

type handler struct {
	log       *zerolog.Logger
	client    *propertyclient.Client
	session   *session.Session
	out       io.Writer
	inputs    Inputs
	validated bool
}

func newHandler(ctx *runtime.Context, out io.Writer) *handler {
	return &handler{
		log:     ctx.Logger,
		client:  ctx.PropertyClient(),
		session: ctx.Session,
		out:     out,
	}
}

func (h *handler) ResolveInputs(v *viper.Viper, args []string) (Inputs, error) {
	return Inputs{
		ID:     args[0],
		Output: v.GetString(settings.Flags.Output.Name),
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
	if err := h.session.Require(access.PermPropertyRead); err != nil {
		return err
	}

	pf, err := h.client.Get(ctx, h.inputs.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch property file: %w", err)
	}

	if h.inputs.Output == settings.OutputFormatJSON {
		enc := json.NewEncoder(h.out)
		enc.SetIndent("", "  ")
		return enc.Encode(pf)
	}

	fmt.Fprintln(h.out, ui.RenderTitle("Property File "+pf.Reference))
	fmt.Fprintln(h.out, formatDetails(pf))
	return nil
}

func formatDetails(pf *propertyclient.PropertyFile) string {
	address := pf.AddressLine1
	if pf.AddressLine2 != "" {
		address += ", " + pf.AddressLine2
	}

	rows := []struct{ label, value string }{
		{"Title", pf.Title},
		{"Address", address},
		{"City", pf.City},
		{"Postcode", pf.Postcode},
		{"Type", pf.PropertyType},
		{"Bedrooms", fmt.Sprintf("%d", pf.Bedrooms)},
		{"Asking price", fmt.Sprintf("£%d", pf.AskingPrice)},
		{"Owner", pf.SellerName},
		{"Owner email", pf.SellerEmail},
		{"Solicitor", pf.SolicitorName},
		{"Solicitor email", pf.SolicitorEmail},
		{"Status", pf.Status},
		{"Created", pf.CreatedAt},
		{"Updated", pf.UpdatedAt},
	}

	var b strings.Builder
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%-16s %s\n", r.label+":", r.value)
	}
	if pf.Notes != "" {
		b.WriteString("\nNotes:\n")
		b.WriteString(pf.Notes)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
