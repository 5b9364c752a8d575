// Package domain holds the lead pipeline rules: the stage graph, the
// cumulative required-field policy and the transition validator. It has no
// dependencies on storage or transport.
package domain

import "slices"

// Stage is one node of the lead lifecycle.
type Stage string

const (
	StageNew                   Stage = "new"
	StageQualified             Stage = "qualified"
	StageRequirementDiscussion Stage = "requirement_discussion"
	StageProposalDiscussion    Stage = "proposal_discussion"
	StageWon                   Stage = "won"
	StageLost                  Stage = "lost"
	StageDisqualified          Stage = "disqualified"
)

// progressionOrder is the forward path every lead walks until it exits.
var progressionOrder = []Stage{
	StageNew,
	StageQualified,
	StageRequirementDiscussion,
	StageProposalDiscussion,
	StageWon,
}

var terminalStages = map[Stage]bool{
	StageWon:          true,
	StageLost:         true,
	StageDisqualified: true,
}

// transitions lists the legal edges. Each open stage may step to the next
// stage in progressionOrder or exit to lost/disqualified.
var transitions = map[Stage][]Stage{
	StageNew:                   {StageQualified, StageLost, StageDisqualified},
	StageQualified:             {StageRequirementDiscussion, StageLost, StageDisqualified},
	StageRequirementDiscussion: {StageProposalDiscussion, StageLost, StageDisqualified},
	StageProposalDiscussion:    {StageWon, StageLost, StageDisqualified},
	StageWon:                   {},
	StageLost:                  {},
	StageDisqualified:          {},
}

// ParseStage returns the stage for a raw value and whether it is known.
func ParseStage(raw string) (Stage, bool) {
	s := Stage(raw)
	_, ok := transitions[s]
	return s, ok
}

// AllStages returns every stage in display order.
func AllStages() []Stage {
	return []Stage{
		StageNew, StageQualified, StageRequirementDiscussion, StageProposalDiscussion,
		StageWon, StageLost, StageDisqualified,
	}
}

// IsTerminal reports whether no transition leaves s.
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// CanTransition reports whether (from, to) is an edge of the stage graph.
func CanTransition(from, to Stage) bool {
	return slices.Contains(transitions[from], to)
}

// NextStages returns the stages reachable from s in one step.
func NextStages(s Stage) []Stage {
	return slices.Clone(transitions[s])
}
