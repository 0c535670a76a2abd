package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/ui"
	"github.com/conveydesk/convey-cli/internal/wizard"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindSecret
	kindSelect
	kindConfirm
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

const strengthMeterCooldown = 250 * time.Millisecond

func registrationSteps() []stepSpec {
	return []stepSpec{
		{
			id:    "personal",
			title: "About you",
			fields: []fieldSpec{
				{name: forms.FieldFirstName, label: "First name", kind: kindText},
				{name: forms.FieldLastName, label: "Last name", kind: kindText},
				{name: forms.FieldEmail, label: "Email address", placeholder: "you@example.com", kind: kindText},
				{name: forms.FieldPhone, label: "Phone (optional)", desc: "International format, e.g. +447700900123", placeholder: "+44", kind: kindText},
				{name: forms.FieldPassword, label: "Password", desc: "At least 8 characters", kind: kindSecret},
				{name: forms.FieldPasswordConfirm, label: "Confirm password", kind: kindSecret},
			},
		},
		{
			id:    "role",
			title: "Your role",
			fields: []fieldSpec{
				{
					name: forms.FieldRole, label: "How will you use ConveyDesk?", kind: kindSelect,
					options: []string{
						string(access.RoleBuyer),
						string(access.RoleOwner),
						string(access.RoleAgent),
						string(access.RoleSolicitor),
					},
				},
			},
		},
		{
			id:    "organization",
			title: "Your organization",
			fields: []fieldSpec{
				{name: forms.FieldOrganizationName, label: "Organization name", kind: kindText},
				{name: forms.FieldOrganizationType, label: "Organization type", kind: kindSelect, options: forms.OrganizationTypes},
			},
		},
		{
			id:    "terms",
			title: "Terms of service",
			fields: []fieldSpec{
				{name: forms.FieldTermsAccepted, label: "I accept the ConveyDesk terms of service", kind: kindConfirm},
			},
		},
	}
}

// roleRequiresOrganization reports whether the organization step applies.
func roleRequiresOrganization(role string) bool {
	return role == string(access.RoleAgent) || role == string(access.RoleSolicitor)
}

type submitDoneMsg struct {
	outcome wizard.Outcome
	res     forms.Result
}

// wizardModel is the Bubble Tea model for the registration wizard.
type wizardModel struct {
	ctx        context.Context
	controller *wizard.Controller
	submitter  *wizard.Submitter
	steps      []stepSpec

	fieldCursor  int
	inputs       map[string]textinput.Model
	selectCursor int
	confirmValue bool
	meter        *forms.StrengthMeter

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

func newWizardModel(ctx context.Context, submitter *wizard.Submitter) (wizardModel, error) {
	steps := registrationSteps()

	wizardSteps := make([]wizard.Step, len(steps))
	for i, s := range steps {
		fields := make([]string, len(s.fields))
		for j, f := range s.fields {
			fields[j] = f.name
		}
		wizardSteps[i] = wizard.Step{ID: s.id, Fields: fields}
	}

	state := forms.NewFormState(forms.RegistrationSchema(), nil)
	controller, err := wizard.New(wizardSteps, state)
	if err != nil {
		return wizardModel{}, err
	}

	inputs := make(map[string]textinput.Model)
	for _, s := range steps {
		for _, f := range s.fields {
			if f.kind != kindText && f.kind != kindSecret {
				continue
			}
			ti := textinput.New()
			ti.Placeholder = f.placeholder
			ti.CharLimit = 200
			ti.Width = 40
			if f.kind == kindSecret {
				ti.EchoMode = textinput.EchoPassword
				ti.EchoCharacter = '•'
			}
			inputs[f.name] = ti
		}
	}

	m := wizardModel{
		ctx:        ctx,
		controller: controller,
		submitter:  submitter,
		steps:      steps,
		inputs:     inputs,
		meter:      forms.NewStrengthMeter(strengthMeterCooldown),

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

func (m *wizardModel) currentField() fieldSpec {
	return m.currentStepSpec().fields[m.fieldCursor]
}

// enterField prepares the active field for editing, restoring any value
// already held in the form state.
func (m *wizardModel) enterField() {
	f := m.currentField()
	state := m.controller.State()

	switch f.kind {
	case kindText, kindSecret:
		ti := m.inputs[f.name]
		ti.SetValue(state.GetString(f.name))
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
	case kindConfirm:
		m.confirmValue = state.GetBool(f.name)
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
			f := m.currentField()
			switch f.kind {
			case kindSelect:
				if msg.String() == "up" && m.selectCursor > 0 {
					m.selectCursor--
				}
				if msg.String() == "down" && m.selectCursor < len(f.options)-1 {
					m.selectCursor++
				}
				return m, nil
			case kindConfirm:
				m.confirmValue = !m.confirmValue
				return m, nil
			}

		case "y", "n":
			if m.currentField().kind == kindConfirm {
				m.confirmValue = msg.String() == "y"
				return m, nil
			}
		}
	}

	// Route remaining messages to the active text input.
	f := m.currentField()
	if f.kind == kindText || f.kind == kindSecret {
		ti := m.inputs[f.name]
		var cmd tea.Cmd
		ti, cmd = ti.Update(msg)
		m.inputs[f.name] = ti
		if f.name == forms.FieldPassword {
			m.meter.Recompute(ti.Value())
		}
		return m, cmd
	}

	return m, nil
}

// commitCurrentField writes the active field's edited value into the
// form state.
func (m *wizardModel) commitCurrentField() {
	f := m.currentField()
	switch f.kind {
	case kindText, kindSecret:
		m.controller.SetField(f.name, m.inputs[f.name].Value())
	case kindSelect:
		m.controller.SetField(f.name, f.options[m.selectCursor])
	case kindConfirm:
		m.controller.SetField(f.name, m.confirmValue)
	}
}

func (m wizardModel) handleEnter() (tea.Model, tea.Cmd) {
	m.commitCurrentField()

	step := m.currentStepSpec()
	if m.fieldCursor < len(step.fields)-1 {
		m.fieldCursor++
		m.enterField()
		return m, nil
	}

	if !m.controller.IsLastStep() {
		ok, res := m.controller.NextStep()
		if !ok {
			m.showStepErrors(step, res)
			return m, nil
		}
		m.skipOrganizationIfInapplicable()
		m.fieldCursor = 0
		m.enterField()
		return m, nil
	}

	// Final step: gate on its own validity, then hand off to the
	// submitter, which revalidates the whole record.
	res := m.controller.ValidateCurrentStep()
	if !res.OK {
		m.showStepErrors(step, res)
		return m, nil
	}

	m.submitting = true
	return m, m.submitCmd()
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

// skipOrganizationIfInapplicable advances past the organization step when
// the chosen role does not require one. Entered organization values are
// kept either way.
func (m *wizardModel) skipOrganizationIfInapplicable() {
	if m.currentStepSpec().id != "organization" {
		return
	}
	if roleRequiresOrganization(m.controller.State().GetString(forms.FieldRole)) {
		return
	}
	m.controller.NextStep()
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
	// Walking back over an inapplicable organization step lands on the
	// role step instead.
	if m.currentStepSpec().id == "organization" &&
		!roleRequiresOrganization(m.controller.State().GetString(forms.FieldRole)) {
		m.controller.PrevStep()
	}
	m.fieldCursor = len(m.currentStepSpec().fields) - 1
	m.enterField()
}

func (m wizardModel) View() string {
	if m.cancelled || m.completed {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Create your ConveyDesk account"))
	b.WriteString("\n\n")

	m.viewHistory(&b)

	step := m.currentStepSpec()
	b.WriteString(m.promptStyle.Render("  " + step.title))
	b.WriteString("\n\n")

	state := m.controller.State()
	for i, f := range step.fields {
		switch {
		case i < m.fieldCursor:
			b.WriteString(m.dimStyle.Render("  " + f.label + ": " + displayValue(f, state.Get(f.name))))
			b.WriteString("\n")

		case i == m.fieldCursor:
			m.viewActiveField(&b, f)

		default:
			b.WriteString(m.dimStyle.Render("  " + f.label))
			b.WriteString("\n")
		}
	}

	if m.submitting {
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render("  Creating your account..."))
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
	switch m.currentField().kind {
	case kindSelect:
		b.WriteString(m.helpStyle.Render("  ↑/↓ navigate • enter select • shift+tab back • esc cancel"))
	case kindConfirm:
		b.WriteString(m.helpStyle.Render("  y/n toggle • enter confirm • shift+tab back • esc cancel"))
	default:
		b.WriteString(m.helpStyle.Render("  enter confirm • shift+tab back • esc cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m wizardModel) viewHistory(b *strings.Builder) {
	state := m.controller.State()
	idx := m.controller.CurrentStepIndex()

	if idx > 0 {
		name := strings.TrimSpace(state.GetString(forms.FieldFirstName) + " " + state.GetString(forms.FieldLastName))
		b.WriteString(m.dimStyle.Render("  Name:  " + name))
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render("  Email: " + state.GetString(forms.FieldEmail)))
		b.WriteString("\n")
	}
	if idx > 1 {
		b.WriteString(m.dimStyle.Render("  Role:  " + state.GetString(forms.FieldRole)))
		b.WriteString("\n")
	}
	if idx > 2 && roleRequiresOrganization(state.GetString(forms.FieldRole)) {
		b.WriteString(m.dimStyle.Render("  Organization: " + state.GetString(forms.FieldOrganizationName)))
		b.WriteString("\n")
	}
	if idx > 0 {
		b.WriteString("\n")
	}
}

func (m wizardModel) viewActiveField(b *strings.Builder, f fieldSpec) {
	switch f.kind {
	case kindText, kindSecret:
		b.WriteString("  " + f.label)
		b.WriteString("\n")
		if f.desc != "" {
			b.WriteString(m.dimStyle.Render("  " + f.desc))
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(m.inputs[f.name].View())
		b.WriteString("\n")
		if f.name == forms.FieldPassword {
			b.WriteString(m.dimStyle.Render("  Strength: " + m.meter.Level().String()))
			b.WriteString("\n")
		}

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

	case kindConfirm:
		mark := "[ ]"
		if m.confirmValue {
			mark = "[x]"
		}
		b.WriteString(fmt.Sprintf("  %s %s", mark, f.label))
		b.WriteString("\n")
	}
}

func displayValue(f fieldSpec, v any) string {
	s, _ := v.(string)
	if f.kind == kindSecret {
		return strings.Repeat("•", len(s))
	}
	if f.kind == kindConfirm {
		if b, _ := v.(bool); b {
			return "yes"
		}
		return "no"
	}
	if s == "" {
		return "(blank)"
	}
	return s
}
