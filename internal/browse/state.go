package browse

import "time"

// State groups the mutable run state shared by the Fetcher, Engine and
// reporting: traffic totals, the growing blacklist and the current pause
// range. One State belongs to one run.
type State struct {
	Meter     *Meter
	Blacklist *Blacklist
	Waits     *WaitBounds
}

// NewState creates the state for a new run.
func NewState(blacklist []string, minWait, maxWait time.Duration) *State {
	return &State{
		Meter:     &Meter{},
		Blacklist: NewBlacklist(blacklist),
		Waits:     NewWaitBounds(minWait, maxWait),
	}
}
