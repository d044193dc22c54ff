package services

import "time"

// Clock supplies the wall-clock samples the processor ranks against. The
// processor takes one sample per user iteration on purpose; tests substitute
// a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}
