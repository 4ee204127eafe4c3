// Package exec implements the Executor (a priority-banded cooperative
// task scheduler), the Task lifecycle state machine, and the
// WaitRegistry (WaitUntil/WaitNext/WaitQuote): matched handlers run as
// Tasks grouped by priority band, and a running Task can park itself
// awaiting a future matching Event with a deadline.
package exec

import "github.com/chatroute-io/chatroute/priority"

// Priority re-exports priority.Priority so callers of exec need not
// import the priority package separately; routing.Terminal carries the
// same type directly.
type Priority = priority.Priority

// Band constants, re-exported from package priority.
const (
	Wakeup  = priority.Wakeup
	Highest = priority.Highest
	High    = priority.High
	Normal  = priority.Normal
	Low     = priority.Low
	Lowest  = priority.Lowest
	Never   = priority.Never
)

// bandOrder lists the bands an Executor tick processes, in order.
// Never is excluded: it is never scheduled.
var bandOrder = priority.BandOrder
