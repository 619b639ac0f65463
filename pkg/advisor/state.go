package advisor

import (
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/scoring"
)

// State is the shared record threaded through the advisory pipeline.
// Metadata, Scores and Framework are read-only inputs; each derived field
// is written exactly once, by exactly one stage, in pipeline order.
type State struct {
	Metadata  *dataset.Metadata
	Scores    *scoring.Scores
	Framework string

	PrivacyCheck string
	DatasetType  string
	Insights     string
	Analysis     *RemediationPlan
}

// Delta is the partial update a stage returns. The runner merges non-nil
// fields back into the state; stages never mutate the state directly.
type Delta struct {
	PrivacyCheck *string
	DatasetType  *string
	Insights     *string
	Analysis     *RemediationPlan
}

func (s *State) apply(d Delta) {
	if d.PrivacyCheck != nil {
		s.PrivacyCheck = *d.PrivacyCheck
	}
	if d.DatasetType != nil {
		s.DatasetType = *d.DatasetType
	}
	if d.Insights != nil {
		s.Insights = *d.Insights
	}
	if d.Analysis != nil {
		s.Analysis = d.Analysis
	}
}
