package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/wizard"
)

func completeRegistrationState() *forms.FormState {
	return forms.NewFormState(forms.RegistrationSchema(), forms.Values{
		forms.FieldFirstName:       "Ada",
		forms.FieldLastName:        "Lovelace",
		forms.FieldEmail:           "ada@example.com",
		forms.FieldPassword:        "correct-horse-9",
		forms.FieldPasswordConfirm: "correct-horse-9",
		forms.FieldRole:            "owner",
		forms.FieldTermsAccepted:   true,
	})
}

func TestSubmit_Success(t *testing.T) {
	var got forms.Values
	s := wizard.NewSubmitter(func(ctx context.Context, record forms.Values) (any, error) {
		got = record
		return "record-123", nil
	})

	outcome, res := s.Submit(context.Background(), completeRegistrationState())

	assert.Equal(t, wizard.OutcomeSucceeded, outcome)
	assert.True(t, res.OK)
	assert.True(t, s.Succeeded())
	assert.Equal(t, "record-123", s.Result())
	assert.Empty(t, s.SubmitError())
	assert.Equal(t, 0, s.Attempts())
	require.NotNil(t, got)
	assert.Equal(t, "ada@example.com", got[forms.FieldEmail])
}

func TestSubmit_FullRecordRevalidation(t *testing.T) {
	calls := 0
	s := wizard.NewSubmitter(func(ctx context.Context, record forms.Values) (any, error) {
		calls++
		return nil, nil
	})

	// State was valid once, then a backward edit broke a personal field.
	state := completeRegistrationState()
	state.Set(forms.FieldEmail, "broken")

	outcome, res := s.Submit(context.Background(), state)

	assert.Equal(t, wizard.OutcomeInvalid, outcome)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.ErrorsFor(forms.FieldEmail))
	assert.Zero(t, calls, "transport must not be invoked for an invalid record")
}

func TestSubmit_FailureCapturesMessageAndKeepsValues(t *testing.T) {
	s := wizard.NewSubmitter(func(ctx context.Context, record forms.Values) (any, error) {
		return nil, errors.New("title deed reference already registered")
	})

	state := completeRegistrationState()
	outcome, _ := s.Submit(context.Background(), state)

	assert.Equal(t, wizard.OutcomeFailed, outcome)
	assert.Equal(t, "title deed reference already registered", s.SubmitError())
	assert.Equal(t, 1, s.Attempts())
	assert.False(t, s.Succeeded())
	// entered values stay intact for retry
	assert.Equal(t, "ada@example.com", state.GetString(forms.FieldEmail))

	outcome, _ = s.Submit(context.Background(), state)
	assert.Equal(t, wizard.OutcomeFailed, outcome)
	assert.Equal(t, 2, s.Attempts())
}

func TestSubmit_EmptyErrorMessageGetsFallback(t *testing.T) {
	s := wizard.NewSubmitter(func(ctx context.Context, record forms.Values) (any, error) {
		return nil, errors.New("")
	})

	outcome, _ := s.Submit(context.Background(), completeRegistrationState())
	assert.Equal(t, wizard.OutcomeFailed, outcome)
	assert.Equal(t, "submission failed, please try again", s.SubmitError())
}

func TestSubmit_AtMostOneInFlight(t *testing.T) {
	release := make(chan struct{})
	var invocations int
	var mu sync.Mutex

	s := wizard.NewSubmitter(func(ctx context.Context, record forms.Values) (any, error) {
		mu.Lock()
		invocations++
		mu.Unlock()
		<-release
		return "ok", nil
	})

	state := completeRegistrationState()

	var wg sync.WaitGroup
	wg.Add(1)
	first := make(chan wizard.Outcome, 1)
	go func() {
		defer wg.Done()
		outcome, _ := s.Submit(context.Background(), state)
		first <- outcome
	}()

	// Wait until the first submission is inside the transport call.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return invocations == 1
	}, time.Second, time.Millisecond)

	// A repeat submit while in flight is dropped, not queued.
	outcome, _ := s.Submit(context.Background(), state)
	assert.Equal(t, wizard.OutcomeDropped, outcome)

	close(release)
	wg.Wait()
	assert.Equal(t, wizard.OutcomeSucceeded, <-first)

	mu.Lock()
	assert.Equal(t, 1, invocations, "exactly one invocation of the injected submit function")
	mu.Unlock()
}

func TestSubmit_NavigatesAfterSuccess(t *testing.T) {
	var target string
	s := wizard.NewSubmitter(
		func(ctx context.Context, record forms.Values) (any, error) { return "id", nil },
		wizard.WithNavigator(func(loc string) { target = loc }, "/property-files", 0),
	)

	outcome, _ := s.Submit(context.Background(), completeRegistrationState())
	assert.Equal(t, wizard.OutcomeSucceeded, outcome)
	assert.Equal(t, "/property-files", target)
}

func TestSubmit_NoNavigationOnFailure(t *testing.T) {
	var navigated bool
	s := wizard.NewSubmitter(
		func(ctx context.Context, record forms.Values) (any, error) { return nil, errors.New("nope") },
		wizard.WithNavigator(func(string) { navigated = true }, "/property-files", 0),
	)

	s.Submit(context.Background(), completeRegistrationState())
	assert.False(t, navigated)
}
