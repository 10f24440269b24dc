package buffer

// The diff oracle decides whether an applied message justifies a new history
// milestone. Plain typing is batched until enough characters accumulate or
// enough time passes; everything that isn't typing is a boundary of its own.

import (
	"time"

	"quill/cursor"
	"quill/edit"
)

const (
	milestoneMinChars    = 10
	milestoneMinDuration = 3 * time.Second
)

type Oracle struct {
	lastMilestone      time.Time
	accumulatedChanges int

	// Now is swappable for tests.
	Now func() time.Time
}

func NewOracle() *Oracle {
	return &Oracle{
		lastMilestone: time.Now(),
		Now:           time.Now,
	}
}

// ShouldMilestone updates the oracle with one applied message and reports
// whether a milestone is due. Motions never trigger; block operations always
// do; typed characters count against the char and time thresholds.
func (o *Oracle) ShouldMilestone(msg edit.Msg, cs *cursor.Set) bool {
	switch msg.(type) {
	case edit.Char:
		o.accumulatedChanges += cs.Len()
		return o.trigger(false)
	case edit.Block, edit.Paste, edit.Backspace, edit.Delete,
		edit.Tab, edit.ShiftTab,
		edit.DeleteBlock, edit.InsertBlock, edit.SubstituteBlock:
		return o.trigger(true)
	}
	return false
}

// Reset marks a boundary created elsewhere (save, undo, redo).
func (o *Oracle) Reset() {
	o.accumulatedChanges = 0
	o.lastMilestone = o.Now()
}

func (o *Oracle) trigger(force bool) bool {
	due := force || o.accumulatedChanges >= milestoneMinChars
	now := o.Now()
	if now.Sub(o.lastMilestone) >= milestoneMinDuration {
		due = true
	}
	if due {
		o.accumulatedChanges = 0
		if now.After(o.lastMilestone) {
			o.lastMilestone = now
		}
	}
	return due
}
