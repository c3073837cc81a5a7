package auth

import "time"

// SetClock overrides the token clock in tests.
func (t *Tokens) SetClock(now func() time.Time) {
	t.now = now
}
