package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/conveydesk/convey-cli/internal/forms"
)

// SubmitFunc is the injected transport collaborator. It receives the
// fully validated record and returns the created/updated resource. The
// submitter has no opinion on retries or timeouts; those belong to the
// transport.
type SubmitFunc func(ctx context.Context, record forms.Values) (any, error)

// NavigateFunc receives a target location after a successful submission.
type NavigateFunc func(target string)

// fallback when the transport error carries no message
const genericSubmitError = "submission failed, please try again"

// Outcome classifies one Submit call.
type Outcome int

const (
	// OutcomeDropped: a submission was already in flight; this request
	// was ignored (not queued, not an error).
	OutcomeDropped Outcome = iota
	// OutcomeInvalid: full-record validation failed; nothing was sent.
	OutcomeInvalid
	// OutcomeFailed: the transport call returned an error.
	OutcomeFailed
	// OutcomeSucceeded: the record was accepted.
	OutcomeSucceeded
)

// Submitter performs the final full-record validation and hands the
// record to the injected submit function at most once concurrently.
type Submitter struct {
	submit SubmitFunc
	log    *zerolog.Logger

	navigate      NavigateFunc
	redirectTo    string
	redirectDelay time.Duration
	sleep         func(time.Duration)

	mu        sync.Mutex
	inFlight  bool
	attempts  int
	submitErr string
	succeeded bool
	result    any
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithNavigator installs a redirect issued after a successful submission,
// following the given delay.
func WithNavigator(nav NavigateFunc, target string, delay time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.navigate = nav
		s.redirectTo = target
		s.redirectDelay = delay
	}
}

// WithSubmitLogger attaches a logger for debug traces.
func WithSubmitLogger(log *zerolog.Logger) SubmitterOption {
	return func(s *Submitter) {
		s.log = log
	}
}

// NewSubmitter wraps the injected transport function.
func NewSubmitter(submit SubmitFunc, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		submit: submit,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit re-validates the entire record (all steps' fields, catching
// regressions introduced by backward navigation) and invokes the
// transport exactly once. While a submission is in flight, repeated calls
// are dropped until it resolves.
//
// On transport failure the error message is captured (or a generic
// fallback when empty), the attempt counter is incremented, and no
// navigation happens; entered values stay intact for retry.
func (s *Submitter) Submit(ctx context.Context, state *forms.FormState) (Outcome, forms.Result) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		if s.log != nil {
			s.log.Debug().Msg("submission already in flight, dropping repeat request")
		}
		return OutcomeDropped, forms.Result{OK: false}
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	res := state.Validate()
	state.RecordResult(state.Schema().FieldNames(), res)
	if !res.OK {
		return OutcomeInvalid, res
	}

	result, err := s.submit(ctx, state.Values())
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = genericSubmitError
		}
		s.mu.Lock()
		s.submitErr = msg
		s.attempts++
		s.mu.Unlock()
		if s.log != nil {
			s.log.Debug().Err(err).Msg("submission rejected by transport")
		}
		return OutcomeFailed, res
	}

	s.mu.Lock()
	s.succeeded = true
	s.submitErr = ""
	s.result = result
	s.mu.Unlock()

	if s.navigate != nil && s.redirectTo != "" {
		if s.redirectDelay > 0 {
			s.sleep(s.redirectDelay)
		}
		s.navigate(s.redirectTo)
	}

	return OutcomeSucceeded, res
}

// Attempts counts failed submission attempts.
func (s *Submitter) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// SubmitError returns the last captured transport error message, or ""
// after a success.
func (s *Submitter) SubmitError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitErr
}

// Succeeded reports whether a submission has completed successfully.
func (s *Submitter) Succeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.succeeded
}

// Result returns the value produced by the transport on success.
func (s *Submitter) Result() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
