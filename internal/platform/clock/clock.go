// Package clock provides an injectable time source so that date-dependent
// rules (coupon expiration, order code prefixes) are testable.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// Today returns the current date truncated to midnight UTC.
	Today() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New returns a Clock backed by the system time.
func New() Clock { return realClock{} }

// Fixed returns a Clock pinned to t, for tests.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func (f fixedClock) Today() time.Time {
	y, m, d := f.t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
