// Package workflow enforces the sample lifecycle.
package workflow

import (
	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

type set map[constants.SampleStatus]struct{}

// transitions is the complete allowed-move table. A status with an empty set is terminal.
var transitions = map[constants.SampleStatus]set{
	constants.SampleSubmitted:   {constants.SamplePrep: {}, constants.SampleCancelled: {}},
	constants.SamplePrep:        {constants.SampleSequencing: {}, constants.SampleFailed: {}},
	constants.SampleSequencing:  {constants.SampleAnalysis: {}, constants.SampleFailed: {}},
	constants.SampleAnalysis:    {constants.SampleCompleted: {}, constants.SampleFailed: {}},
	constants.SampleCompleted:   {constants.SampleDistributed: {}},
	constants.SampleDistributed: {constants.SampleArchived: {}},
	constants.SampleFailed:      {constants.SamplePrep: {}},
	constants.SampleArchived:    {},
	constants.SampleCancelled:   {},
}

// CanTransition reports whether a sample in from may move to to.
func CanTransition(from, to constants.SampleStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// Allowed lists the statuses reachable from from in lifecycle order.
func Allowed(from constants.SampleStatus) []constants.SampleStatus {
	var out []constants.SampleStatus
	for _, st := range constants.SampleStatuses() {
		if CanTransition(from, st) {
			out = append(out, st)
		}
	}
	return out
}

// IsTerminal reports whether no transition leaves st.
func IsTerminal(st constants.SampleStatus) bool {
	next, ok := transitions[st]
	return ok && len(next) == 0
}
