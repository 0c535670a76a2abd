package list

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
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
	Search   string `validate:"omitempty,max=200"`
	Status   string `validate:"omitempty,oneof=draft listed under_offer sold withdrawn"`
	SortBy   string `validate:"omitempty,sort_field"`
	SortDir  string `validate:"omitempty,oneof=asc desc"`
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=100"`
	Output   string `validate:"oneof=table json"`
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists property files",
		Long:  "Lists property files visible to the signed-in account, with optional filtering and sorting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := newHandler(runtimeContext, cmd.OutOrStdout())
			handler.outputFlagSet = cmd.Flags().Changed(settings.Flags.Output.Name)

			inputs, err := handler.ResolveInputs(runtimeContext.Viper)
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

	listCmd.Flags().String("search", "", "Free-text search over title, address, and reference")
	listCmd.Flags().String("status", "", "Filter by lifecycle status (draft, listed, under_offer, sold, withdrawn)")
	listCmd.Flags().String("sort-by", "", "Sort field, one of created_at, updated_at, asking_price, title")
	listCmd.Flags().String("sort-dir", "asc", "Sort direction, asc or desc")
	listCmd.Flags().Int("page", 1, "Page number to fetch")
	listCmd.Flags().Int("page-size", 0, "Records per page (defaults to the project setting)")
	settings.AddOutputFlag(listCmd)

	return listCmd
}

type handler struct {
	log           *zerolog.Logger
	client        *propertyclient.Client
	session       *session.Session
	settings      *settings.Settings
	out           io.Writer
	inputs        Inputs
	outputFlagSet bool
	validated     bool
}

func newHandler(ctx *runtime.Context, out io.Writer) *handler {
	return &handler{
		log:      ctx.Logger,
		client:   ctx.PropertyClient(),
		session:  ctx.Session,
		settings: ctx.Settings,
		out:      out,
	}
}

func (h *handler) ResolveInputs(v *viper.Viper) (Inputs, error) {
	pageSize := v.GetInt("page-size")
	if pageSize == 0 {
		pageSize = h.settings.Project.DefaultPageSize
	}
	if pageSize == 0 {
		pageSize = 20
	}

	output := v.GetString(settings.Flags.Output.Name)
	if !h.outputFlagSet && h.settings.Project.OutputFormat != "" {
		output = h.settings.Project.OutputFormat
	}

	return Inputs{
		Search:   v.GetString("search"),
		Status:   v.GetString("status"),
		SortBy:   v.GetString("sort-by"),
		SortDir:  v.GetString("sort-dir"),
		Page:     v.GetInt("page"),
		PageSize: pageSize,
		Output:   output,
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

	resp, err := h.client.List(ctx, propertyclient.ListQuery{
		Search:   h.inputs.Search,
		Status:   h.inputs.Status,
		SortBy:   h.inputs.SortBy,
		SortDir:  h.inputs.SortDir,
		Page:     h.inputs.Page,
		PageSize: h.inputs.PageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list property files: %w", err)
	}

	if h.inputs.Output == settings.OutputFormatJSON {
		return h.writeJSON(resp)
	}
	h.writeTable(resp)
	return nil
}

func (h *handler) writeJSON(resp *propertyclient.ListResponse) error {
	enc := json.NewEncoder(h.out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func (h *handler) writeTable(resp *propertyclient.ListResponse) {
	if len(resp.Items) == 0 {
		fmt.Fprintln(h.out, "No property files found.")
		return
	}

	t := ui.NewTable(h.out, table.Row{"Reference", "Title", "City", "Status", "Asking Price", "Updated"})
	for _, pf := range resp.Items {
		t.AppendRow(table.Row{
			pf.Reference,
			pf.Title,
			pf.City,
			pf.Status,
			formatPrice(pf.AskingPrice),
			pf.UpdatedAt,
		})
	}
	t.Render()

	totalPages := (resp.TotalCount + resp.PageSize - 1) / resp.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	fmt.Fprintf(h.out, "Page %d of %d (%d records)\n", resp.Page, totalPages, resp.TotalCount)
}

// formatPrice renders pence-free whole pounds with thousands separators.
func formatPrice(p int64) string {
	s := fmt.Sprintf("%d", p)
	if len(s) <= 3 {
		return "£" + s
	}
	var out []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return "£" + string(out)
}
