package advisor

import (
	"context"

	"finaudit-be/pkg/advisor/gateway"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/scoring"
)

type stageFunc func(ctx context.Context, st *State) Delta

type stage struct {
	name string
	run  stageFunc
}

// Pipeline is the fixed, linear advisory workflow:
// privacyGuardrail -> metadataAnalyst -> insightsAgent -> advisoryAgent.
// No conditional routing, no cycles, no inter-stage retries.
type Pipeline struct {
	gw *gateway.Gateway
}

func NewPipeline(gw *gateway.Gateway) *Pipeline {
	return &Pipeline{gw: gw}
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{name: "privacy_guardrail", run: privacyGuardrail},
		{name: "metadata_analyst", run: metadataAnalyst},
		{name: "insights_agent", run: insightsAgent},
		{name: "advisory_agent", run: p.advisoryAgent},
	}
}

// Run executes the stages strictly in order over a fresh state and returns
// the final remediation plan. The intermediate derived fields are working
// state, not part of the public result. Run never fails: the advisory
// stage substitutes an error placeholder on any completion failure.
func (p *Pipeline) Run(ctx context.Context, scores *scoring.Scores, metadata *dataset.Metadata, framework string) *RemediationPlan {
	st := &State{
		Metadata:  metadata,
		Scores:    scores,
		Framework: framework,
		Analysis:  &RemediationPlan{},
	}

	for _, s := range p.stages() {
		st.apply(s.run(ctx, st))
	}

	return st.Analysis
}
