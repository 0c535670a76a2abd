package register

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/wizard"
)

func newTestModel(t *testing.T, submit wizard.SubmitFunc) wizardModel {
	t.Helper()
	if submit == nil {
		submit = func(ctx context.Context, record forms.Values) (any, error) {
			return "acct-1", nil
		}
	}
	m, err := newWizardModel(context.Background(), wizard.NewSubmitter(submit))
	require.NoError(t, err)
	return m
}

// typeField sets the active text input's value directly and presses enter.
func typeField(t *testing.T, m wizardModel, value string) wizardModel {
	t.Helper()
	f := m.currentField()
	require.Contains(t, []fieldKind{kindText, kindSecret}, f.kind, "field %s is not a text field", f.name)
	ti := m.inputs[f.name]
	ti.SetValue(value)
	m.inputs[f.name] = ti
	return pressEnter(t, m)
}

func pressEnter(t *testing.T, m wizardModel) wizardModel {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(wizardModel)
}

func pressKey(t *testing.T, m wizardModel, key tea.KeyMsg) wizardModel {
	t.Helper()
	next, _ := m.Update(key)
	return next.(wizardModel)
}

func fillPersonalStep(t *testing.T, m wizardModel) wizardModel {
	t.Helper()
	m = typeField(t, m, "Jane")
	m = typeField(t, m, "Doe")
	m = typeField(t, m, "Jane.Doe@Example.com")
	m = typeField(t, m, "") // phone optional
	m = typeField(t, m, "correct-horse-9")
	m = typeField(t, m, "correct-horse-9")
	return m
}

func TestWizard_PersonalStepGatesOnValidity(t *testing.T) {
	m := newTestModel(t, nil)

	m = typeField(t, m, "Jane")
	m = typeField(t, m, "Doe")
	m = typeField(t, m, "not-an-email")
	m = typeField(t, m, "")
	m = typeField(t, m, "correct-horse-9")
	m = typeField(t, m, "correct-horse-9")

	assert.Equal(t, 0, m.controller.CurrentStepIndex(), "invalid email must not pass the step gate")
	assert.NotEmpty(t, m.errs)
	assert.Equal(t, forms.FieldEmail, m.currentField().name, "cursor should land on the failing field")

	// Fix the email; everything else was retained.
	m = typeField(t, m, "jane@example.com")
	for m.controller.CurrentStepIndex() == 0 {
		m = pressEnter(t, m)
	}
	assert.Equal(t, 1, m.controller.CurrentStepIndex())
	assert.Equal(t, "correct-horse-9", m.controller.State().GetString(forms.FieldPassword))
}

func TestWizard_EmailNormalizedOnCommit(t *testing.T) {
	m := newTestModel(t, nil)
	m = fillPersonalStep(t, m)

	assert.Equal(t, "jane.doe@example.com", m.controller.State().GetString(forms.FieldEmail))
}

func TestWizard_OrganizationStepSkippedForBuyer(t *testing.T) {
	m := newTestModel(t, nil)
	m = fillPersonalStep(t, m)

	require.Equal(t, "role", m.currentStepSpec().id)
	// Default cursor is buyer; select it.
	m = pressEnter(t, m)

	assert.Equal(t, "terms", m.currentStepSpec().id, "buyer should skip the organization step")
}

func TestWizard_OrganizationRequiredForAgent(t *testing.T) {
	m := newTestModel(t, nil)
	m = fillPersonalStep(t, m)

	require.Equal(t, "role", m.currentStepSpec().id)
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyDown}) // owner
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyDown}) // agent
	m = pressEnter(t, m)

	require.Equal(t, "organization", m.currentStepSpec().id)

	// Leaving organization fields empty must fail the gate.
	m = typeField(t, m, "")
	m = pressEnter(t, m)
	assert.Equal(t, "organization", m.currentStepSpec().id)
	assert.NotEmpty(t, m.errs)

	m = typeField(t, m, "Doe & Partners")
	m = pressEnter(t, m) // organization type select, first option
	assert.Equal(t, "terms", m.currentStepSpec().id)
}

func TestWizard_RetainsOrganizationValuesWhenRoleChanges(t *testing.T) {
	m := newTestModel(t, nil)
	m = fillPersonalStep(t, m)
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyDown}) // agent
	m = pressEnter(t, m)

	m = typeField(t, m, "Doe & Partners")
	m = pressEnter(t, m)
	require.Equal(t, "terms", m.currentStepSpec().id)

	// Walk back to the role step and switch to buyer.
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}) // org type
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}) // org name
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}) // role
	require.Equal(t, "role", m.currentStepSpec().id)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyUp}) // buyer
	m = pressEnter(t, m)
	require.Equal(t, "terms", m.currentStepSpec().id)

	// The organization value survives the discriminator change.
	assert.Equal(t, "Doe & Partners", m.controller.State().GetString(forms.FieldOrganizationName))
}

func TestWizard_SubmitFailureShowsMessageAndKeepsValues(t *testing.T) {
	m := newTestModel(t, func(ctx context.Context, record forms.Values) (any, error) {
		return nil, errors.New("email already registered")
	})
	m = fillPersonalStep(t, m)
	m = pressEnter(t, m) // role: buyer
	require.Equal(t, "terms", m.currentStepSpec().id)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(wizardModel)
	require.NotNil(t, cmd, "final enter should produce a submit command")
	require.True(t, m.submitting)

	msg := cmd()
	next, _ = m.Update(msg)
	m = next.(wizardModel)

	assert.False(t, m.completed)
	assert.Equal(t, []string{"email already registered"}, m.errs)
	assert.Equal(t, "Jane", m.controller.State().GetString(forms.FieldFirstName))
}

func TestWizard_SubmitSuccessCompletes(t *testing.T) {
	var got forms.Values
	m := newTestModel(t, func(ctx context.Context, record forms.Values) (any, error) {
		got = record
		return "acct-1", nil
	})
	m = fillPersonalStep(t, m)
	m = pressEnter(t, m) // role: buyer
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(wizardModel)
	require.NotNil(t, cmd)

	msg := cmd()
	next, _ = m.Update(msg)
	m = next.(wizardModel)

	assert.True(t, m.completed)
	assert.Equal(t, "jane.doe@example.com", got[forms.FieldEmail])
	assert.Equal(t, true, got[forms.FieldTermsAccepted])
}

func TestWizard_TermsMustBeAccepted(t *testing.T) {
	m := newTestModel(t, nil)
	m = fillPersonalStep(t, m)
	m = pressEnter(t, m) // role: buyer
	require.Equal(t, "terms", m.currentStepSpec().id)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(wizardModel)
	assert.Nil(t, cmd, "unaccepted terms must not submit")
	assert.False(t, m.submitting)
	assert.NotEmpty(t, m.errs)
}

func TestBuildRegistrationInput_OmitsOrganizationForBuyer(t *testing.T) {
	record := forms.Values{
		forms.FieldFirstName:        "Jane",
		forms.FieldLastName:         "Doe",
		forms.FieldEmail:            "jane@example.com",
		forms.FieldPassword:         "correct-horse-9",
		forms.FieldRole:             "buyer",
		forms.FieldOrganizationName: "Stale Org",
		forms.FieldOrganizationType: "law_firm",
		forms.FieldTermsAccepted:    true,
	}

	input := buildRegistrationInput(record)

	assert.Equal(t, "buyer", input.Role)
	assert.Empty(t, input.OrganizationName)
	assert.Empty(t, input.OrganizationType)
	assert.True(t, input.TermsAccepted)
}

func TestBuildRegistrationInput_IncludesOrganizationForSolicitor(t *testing.T) {
	record := forms.Values{
		forms.FieldRole:             "solicitor",
		forms.FieldOrganizationName: "Doe & Partners",
		forms.FieldOrganizationType: "law_firm",
	}

	input := buildRegistrationInput(record)

	assert.Equal(t, "Doe & Partners", input.OrganizationName)
	assert.Equal(t, "law_firm", input.OrganizationType)
}
