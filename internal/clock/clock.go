package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the reference instant for time-windowed computations.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a wall clock reporting time in the given location.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return NewSystemClock(time.Local) }),
)
