package federation

import "time"

// Default retry settings.
const (
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
)

// ErrorHandling configures reconnection after transport errors.
type ErrorHandling struct {
	// Retries is the maximum number of consecutive reconnection attempts.
	// Zero disables reconnection.
	Retries int
	// RetryDelay is the fixed delay before each attempt.
	RetryDelay time.Duration
}

// DefaultErrorHandling returns the default retry settings.
func DefaultErrorHandling() ErrorHandling {
	return ErrorHandling{
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// RetryPolicy bounds reconnection attempts.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
}

// NewRetryPolicy builds a policy from cfg. A nil cfg uses the defaults.
func NewRetryPolicy(cfg *ErrorHandling) RetryPolicy {
	eh := DefaultErrorHandling()
	if cfg != nil {
		eh = *cfg
	}
	if eh.Retries < 0 {
		eh.Retries = 0
	}
	if eh.RetryDelay < 0 {
		eh.RetryDelay = 0
	}
	return RetryPolicy{Retries: eh.Retries, Delay: eh.RetryDelay}
}

// Next returns the delay before retry number attempt (1-based) and whether a
// retry should happen at all.
func (p RetryPolicy) Next(attempt int) (time.Duration, bool) {
	if attempt < 1 || attempt > p.Retries {
		return 0, false
	}
	return p.Delay, true
}

// afterError returns the phase a protocol enters after its attempt-th
// consecutive failure.
func (p RetryPolicy) afterError(attempt int) Phase {
	if _, ok := p.Next(attempt); ok {
		return PhaseRetrying
	}
	return PhaseGivenUp
}
