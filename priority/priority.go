// Package priority defines the dispatch priority band enumeration
// shared by routing.Terminal (which band a handler is annotated with)
// and exec.Executor (which order bands run in). It is split out from
// both so that routing, which Terminals live in, and exec, which
// schedules them, can each depend on the enum without depending on one
// another.
package priority

// Priority is a dispatch priority band. Lower values run earlier.
type Priority int

const (
	Wakeup Priority = iota
	Highest
	High
	Normal
	Low
	Lowest
	Never
)

func (p Priority) String() string {
	switch p {
	case Wakeup:
		return "wakeup"
	case Highest:
		return "highest"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	case Lowest:
		return "lowest"
	case Never:
		return "never"
	default:
		return "unknown"
	}
}

// BandOrder lists the bands an Executor tick processes, in order.
// Never is excluded: it is reserved for ephemeral wait terminals and is
// never scheduled.
var BandOrder = []Priority{Wakeup, Highest, High, Normal, Low, Lowest}
