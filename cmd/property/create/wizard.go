package create

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/ui"
	"github.com/conveydesk/convey-cli/internal/wizard"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindSelect
)

// fieldSpec pairs a schema field with how the wizard renders it.
type fieldSpec struct {
	name        string
	label       string
	desc        string
	placeholder string
	kind        fieldKind
	options     []string
}

type stepSpec struct {
	id     string
	title  string
	fields []fieldSpec
}

const reviewStepID = "review"

func propertySteps() []stepSpec {
	return []stepSpec{
		{
			id:    "address",
			title: "Property address",
			fields: []fieldSpec{
				{name: forms.FieldTitle, label: "Listing title", placeholder: "2 Rose Lane, Leeds", kind: kindText},
				{name: forms.FieldAddressLine1, label: "Address line 1", kind: kindText},
				{name: forms.FieldAddressLine2, label: "Address line 2 (optional)", kind: kindText},
				{name: forms.FieldCity, label: "City or town", kind: kindText},
				{name: forms.FieldPostcode, label: "Postcode", placeholder: "LS1 4AP", kind: kindText},
			},
		},
		{
			id:    "details",
			title: "Property details",
			fields: []fieldSpec{
				{name: forms.FieldPropertyType, label: "Property type", kind: kindSelect, options: forms.PropertyTypes},
				{name: forms.FieldBedrooms, label: "Bedrooms (optional)", kind: kindInt},
				{name: forms.FieldAskingPrice, label: "Asking price", desc: "Whole pounds, no separators", placeholder: "275000", kind: kindInt},
				{name: forms.FieldNotes, label: "Notes (optional)", kind: kindText},
			},
		},
		{
			id:    "parties",
			title: "Owner and solicitor",
			fields: []fieldSpec{
				{name: forms.FieldOwnerName, label: "Owner's full name", kind: kindText},
				{name: forms.FieldOwnerEmail, label: "Owner's email", placeholder: "owner@example.com", kind: kindText},
				{name: forms.FieldSolicitorEmail, label: "Solicitor's email (optional)", kind: kindText},
			},
		},
		{
			id:    reviewStepID,
			title: "Review and submit",
		},
	}
}

type submitDoneMsg struct {
	outcome wizard.Outcome
	res     forms.Result
}

// wizardModel is the Bubble Tea model for the property file wizard.
type wizardModel struct {
	ctx        context.Context
	controller *wizard.Controller
	submitter  *wizard.Submitter
	steps      []stepSpec

	fieldCursor  int
	inputs       map[string]textinput.Model
	selectCursor int

	errs       []string
	submitting bool
	completed  bool
	cancelled  bool

	titleStyle    lipgloss.Style
	dimStyle      lipgloss.Style
	promptStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	cursorStyle   lipgloss.Style
	helpStyle     lipgloss.Style
	errorStyle    lipgloss.Style
}

func newWizardModel(ctx context.Context, submitter *wizard.Submitter, defaults forms.Values) (wizardModel, error) {
	steps := propertySteps()

	wizardSteps := make([]wizard.Step, len(steps))
	for i, s := range steps {
		fields := make([]string, len(s.fields))
		for j, f := range s.fields {
			fields[j] = f.name
		}
		wizardSteps[i] = wizard.Step{ID: s.id, Fields: fields}
	}

	state := forms.NewFormState(forms.PropertyFileSchema(), defaults)
	controller, err := wizard.New(wizardSteps, state)
	if err != nil {
		return wizardModel{}, err
	}

	inputs := make(map[string]textinput.Model)
	for _, s := range steps {
		for _, f := range s.fields {
			if f.kind == kindSelect {
				continue
			}
			ti := textinput.New()
			ti.Placeholder = f.placeholder
			ti.CharLimit = 200
			ti.Width = 40
			inputs[f.name] = ti
		}
	}

	m := wizardModel{
		ctx:        ctx,
		controller: controller,
		submitter:  submitter,
		steps:      steps,
		inputs:     inputs,

		titleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ui.ColorTeal500)),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray500)),
		promptStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ui.ColorTeal400)),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorTeal500)),
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorTeal500)),
		helpStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray500)),
		errorStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorRed400)),
	}

	m.enterField()
	return m, nil
}

func (m *wizardModel) currentStepSpec() stepSpec {
	return m.steps[m.controller.CurrentStepIndex()]
}

// onReviewStep reports whether the active step carries no fields of its
// own.
func (m *wizardModel) onReviewStep() bool {
	return len(m.currentStepSpec().fields) == 0
}

func (m *wizardModel) currentField() (fieldSpec, bool) {
	step := m.currentStepSpec()
	if len(step.fields) == 0 {
		return fieldSpec{}, false
	}
	return step.fields[m.fieldCursor], true
}

// enterField prepares the active field for editing, restoring any value
// already held in the form state.
func (m *wizardModel) enterField() {
	f, ok := m.currentField()
	if !ok {
		return
	}
	state := m.controller.State()

	switch f.kind {
	case kindText, kindInt:
		ti := m.inputs[f.name]
		ti.SetValue(restoreText(f, state.Get(f.name)))
		ti.Focus()
		ti.CursorEnd()
		m.inputs[f.name] = ti
	case kindSelect:
		m.selectCursor = 0
		current := state.GetString(f.name)
		for i, opt := range f.options {
			if opt == current {
				m.selectCursor = i
				break
			}
		}
	}
}

// restoreText renders a stored value back into editable text. Unset
// numeric fields come back blank, not "0".
func restoreText(f fieldSpec, v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		if f.kind == kindInt && t == 0 {
			return ""
		}
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (m wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case tea.KeyMsg:
		if m.submitting {
			// Repeat submits while one is in flight are dropped by the
			// submitter; swallowing keys here keeps the view stable.
			if msg.String() == "ctrl+c" {
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}

		m.errs = nil

		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "shift+tab":
			m.goBack()
			return m, nil

		case "up", "down":
			if f, ok := m.currentField(); ok && f.kind == kindSelect {
				if msg.String() == "up" && m.selectCursor > 0 {
					m.selectCursor--
				}
				if msg.String() == "down" && m.selectCursor < len(f.options)-1 {
					m.selectCursor++
				}
				return m, nil
			}
		}
	}

	// Route remaining messages to the active text input.
	f, ok := m.currentField()
	if ok && (f.kind == kindText || f.kind == kindInt) {
		ti := m.inputs[f.name]
		var cmd tea.Cmd
		ti, cmd = ti.Update(msg)
		m.inputs[f.name] = ti
		return m, cmd
	}

	return m, nil
}

// commitCurrentField writes the active field's edited value into the
// form state. Integer fields that do not parse report an error and leave
// the state untouched.
func (m *wizardModel) commitCurrentField() bool {
	f, ok := m.currentField()
	if !ok {
		return true
	}
	switch f.kind {
	case kindText:
		m.controller.SetField(f.name, m.inputs[f.name].Value())
	case kindInt:
		raw := strings.TrimSpace(m.inputs[f.name].Value())
		if raw == "" {
			m.controller.SetField(f.name, nil)
			return true
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			m.errs = []string{f.label + " must be a whole number"}
			return false
		}
		m.controller.SetField(f.name, n)
	case kindSelect:
		m.controller.SetField(f.name, f.options[m.selectCursor])
	}
	return true
}

func (m wizardModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.onReviewStep() {
		// The review step revalidates everything through the submitter.
		m.submitting = true
		return m, m.submitCmd()
	}

	if !m.commitCurrentField() {
		return m, nil
	}

	step := m.currentStepSpec()
	if m.fieldCursor < len(step.fields)-1 {
		m.fieldCursor++
		m.enterField()
		return m, nil
	}

	ok, res := m.controller.NextStep()
	if !ok {
		m.showStepErrors(step, res)
		return m, nil
	}
	m.fieldCursor = 0
	m.enterField()
	return m, nil
}

func (m *wizardModel) submitCmd() tea.Cmd {
	ctx := m.ctx
	submitter := m.submitter
	state := m.controller.State()
	return func() tea.Msg {
		outcome, res := submitter.Submit(ctx, state)
		return submitDoneMsg{outcome: outcome, res: res}
	}
}

func (m wizardModel) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false

	switch msg.outcome {
	case wizard.OutcomeSucceeded:
		m.completed = true
		return m, tea.Quit

	case wizard.OutcomeFailed:
		m.errs = []string{m.submitter.SubmitError()}
		return m, nil

	case wizard.OutcomeInvalid:
		// A backward edit regressed an earlier step; jump to the first
		// step holding an error. Backward jumps are never gated.
		for i, s := range m.steps {
			for j, f := range s.fields {
				if len(msg.res.ErrorsFor(f.name)) > 0 {
					m.controller.GoToStep(i)
					m.fieldCursor = j
					m.enterField()
					m.showStepErrors(s, msg.res)
					return m, nil
				}
			}
		}
		return m, nil
	}

	return m, nil
}

func (m *wizardModel) showStepErrors(step stepSpec, res forms.Result) {
	m.errs = nil
	firstBad := -1
	for i, f := range step.fields {
		for _, msg := range res.ErrorsFor(f.name) {
			m.errs = append(m.errs, fmt.Sprintf("%s %s", f.label, msg))
			if firstBad < 0 {
				firstBad = i
			}
		}
	}
	if firstBad >= 0 {
		m.fieldCursor = firstBad
		m.enterField()
	}
}

func (m *wizardModel) goBack() {
	if m.fieldCursor > 0 {
		m.fieldCursor--
		m.enterField()
		return
	}
	if !m.controller.PrevStep() {
		return
	}
	m.fieldCursor = 0
	if n := len(m.currentStepSpec().fields); n > 0 {
		m.fieldCursor = n - 1
	}
	m.enterField()
}

func (m wizardModel) View() string {
	if m.cancelled || m.completed {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Create a property file"))
	b.WriteString("\n\n")

	step := m.currentStepSpec()
	b.WriteString(m.promptStyle.Render("  " + step.title))
	b.WriteString("\n\n")

	if m.onReviewStep() {
		m.viewReview(&b)
	} else {
		m.viewFields(&b, step)
	}

	if m.submitting {
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render("  Creating the property file..."))
		b.WriteString("\n")
	}

	for _, e := range m.errs {
		b.WriteString("\n")
		b.WriteString(m.errorStyle.Render("  " + e))
	}
	if len(m.errs) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.onReviewStep():
		b.WriteString(m.helpStyle.Render("  enter submit • shift+tab back • esc cancel"))
	default:
		f, _ := m.currentField()
		if f.kind == kindSelect {
			b.WriteString(m.helpStyle.Render("  ↑/↓ navigate • enter select • shift+tab back • esc cancel"))
		} else {
			b.WriteString(m.helpStyle.Render("  enter confirm • shift+tab back • esc cancel"))
		}
	}
	b.WriteString("\n")

	return b.String()
}

func (m wizardModel) viewFields(b *strings.Builder, step stepSpec) {
	state := m.controller.State()
	for i, f := range step.fields {
		switch {
		case i < m.fieldCursor:
			b.WriteString(m.dimStyle.Render("  " + f.label + ": " + displayValue(state.Get(f.name))))
			b.WriteString("\n")

		case i == m.fieldCursor:
			m.viewActiveField(b, f)

		default:
			b.WriteString(m.dimStyle.Render("  " + f.label))
			b.WriteString("\n")
		}
	}
}

func (m wizardModel) viewActiveField(b *strings.Builder, f fieldSpec) {
	switch f.kind {
	case kindText, kindInt:
		b.WriteString("  " + f.label)
		b.WriteString("\n")
		if f.desc != "" {
			b.WriteString(m.dimStyle.Render("  " + f.desc))
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(m.inputs[f.name].View())
		b.WriteString("\n")

	case kindSelect:
		b.WriteString("  " + f.label)
		b.WriteString("\n")
		for i, opt := range f.options {
			if i == m.selectCursor {
				b.WriteString(m.cursorStyle.Render("  > "))
				b.WriteString(m.selectedStyle.Render(opt))
			} else {
				b.WriteString("    " + opt)
			}
			b.WriteString("\n")
		}
	}
}

func (m wizardModel) viewReview(b *strings.Builder) {
	state := m.controller.State()
	for _, s := range m.steps {
		for _, f := range s.fields {
			v := state.Get(f.name)
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok && str == "" {
				continue
			}
			b.WriteString(m.dimStyle.Render(fmt.Sprintf("  %-24s %s", trimOptional(f.label)+":", displayValue(v))))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString("  Press enter to create the property file.")
	b.WriteString("\n")
}

func trimOptional(label string) string {
	return strings.TrimSuffix(label, " (optional)")
}

func displayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "(blank)"
	case string:
		if t == "" {
			return "(blank)"
		}
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}
