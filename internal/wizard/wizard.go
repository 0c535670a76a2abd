// Package wizard sequences a fixed, ordered list of form steps. Forward
// navigation is gated on validity of the departing step only; moving
// backward is never gated, and entered values are preserved in both
// directions.
package wizard

import (
	"fmt"

	"github.com/conveydesk/convey-cli/internal/forms"
)

// Step names an ordered subset of the form's fields that are validated
// together. Steps are immutable once the controller is constructed.
type Step struct {
	ID     string
	Fields []string
}

// Controller holds the cursor over the step list and the form state it
// navigates. Not safe for concurrent use; navigation happens on the UI
// event loop, one call at a time.
type Controller struct {
	steps  []Step
	cursor int
	state  *forms.FormState
}

// New builds a controller positioned on the first step.
func New(steps []Step, state *forms.FormState) (*Controller, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard needs at least one step")
	}
	seen := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("wizard step with empty id")
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate wizard step %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		for _, f := range s.Fields {
			if !state.Schema().HasField(f) {
				return nil, fmt.Errorf("step %q references unknown field %q", s.ID, f)
			}
		}
	}
	return &Controller{steps: steps, state: state}, nil
}

// Steps returns the step list in order.
func (c *Controller) Steps() []Step {
	return c.steps
}

// State returns the form state owned by this wizard instance.
func (c *Controller) State() *forms.FormState {
	return c.state
}

// CurrentStep returns the active step. Derived from the cursor; never
// independently settable.
func (c *Controller) CurrentStep() Step {
	return c.steps[c.cursor]
}

func (c *Controller) CurrentStepIndex() int {
	return c.cursor
}

func (c *Controller) IsFirstStep() bool {
	return c.cursor == 0
}

func (c *Controller) IsLastStep() bool {
	return c.cursor == len(c.steps)-1
}

// ValidateCurrentStep validates exactly the active step's declared fields
// and records the outcome on the form state.
func (c *Controller) ValidateCurrentStep() forms.Result {
	step := c.CurrentStep()
	res := c.state.ValidateFields(step.Fields)
	c.state.RecordResult(step.Fields, res)
	return res
}

// NextStep validates the departing step and advances the cursor by one
// when it is valid. On failure, or on the last step, the cursor does not
// move and no entered value is cleared or reset.
func (c *Controller) NextStep() (bool, forms.Result) {
	if c.IsLastStep() {
		return false, forms.Result{OK: false}
	}
	res := c.ValidateCurrentStep()
	if !res.OK {
		return false, res
	}
	c.cursor++
	return true, res
}

// PrevStep unconditionally moves back one step. No-op on the first step.
func (c *Controller) PrevStep() bool {
	if c.IsFirstStep() {
		return false
	}
	c.cursor--
	return true
}

// GoToStep jumps to the target index. Backward jumps are unconditional;
// jumps at or past the current step are gated on the current step's
// validity, like NextStep. Out-of-range targets are refused.
func (c *Controller) GoToStep(target int) (bool, forms.Result) {
	if target < 0 || target >= len(c.steps) {
		return false, forms.Result{OK: false}
	}
	if target < c.cursor {
		c.cursor = target
		return true, forms.Result{OK: true}
	}
	res := c.ValidateCurrentStep()
	if !res.OK {
		return false, res
	}
	c.cursor = target
	return true, res
}

// SetField writes a field value through to the form state. Writes are
// applied in call order; validation always observes the latest write.
func (c *Controller) SetField(name string, value any) {
	c.state.Set(name, value)
}
