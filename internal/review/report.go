// Package review runs the quality review pipeline over a completed slide
// set: three generative agents (style, fact-check, narrative coherence) and
// one programmatic structural check, aggregated into a single report with an
// ordered list of proposed content fixes.
package review

// Agent identifies which evaluator produced a score or a fix.
type Agent string

const (
	AgentStyle      Agent = "style"
	AgentFactCheck  Agent = "fact_check"
	AgentNarrative  Agent = "narrative"
	AgentStructural Agent = "structural"
)

// Fix modes: how Fixed relates to the slide body.
const (
	// FixReplaceBody: Fixed is the complete replacement body. Original is
	// the body it was derived from.
	FixReplaceBody = "replace_body"
	// FixReplaceSpan: Original is a claim span inside the body and Fixed
	// its correction; applied best-effort by substring replacement.
	FixReplaceSpan = "replace_span"
	// FixReplaceTitle: Fixed is the replacement title.
	FixReplaceTitle = "replace_title"
)

// Fix is one proposed content correction, tagged with the agent it came from.
type Fix struct {
	SlideNumber int    `json:"slideNumber"`
	Agent       Agent  `json:"agent"`
	Mode        string `json:"mode"`
	Original    string `json:"original"`
	Fixed       string `json:"fixed"`
}

// SlideScore is one slide's result from a per-slide agent.
type SlideScore struct {
	SlideNumber int      `json:"slideNumber"`
	Score       float64  `json:"score"`
	Issues      []string `json:"issues,omitempty"`
	// Degraded marks scores substituted after an agent failure: the slide
	// is assumed to pass, with reduced confidence.
	Degraded bool `json:"degraded,omitempty"`
}

// AgentReport aggregates one agent's scores against its threshold.
type AgentReport struct {
	Agent     Agent        `json:"agent"`
	Scores    []SlideScore `json:"scores"`
	Average   float64      `json:"average"`
	Threshold float64      `json:"threshold"`
	Passed    bool         `json:"passed"`
	Degraded  bool         `json:"degraded,omitempty"`
}

// Structural issue kinds.
const (
	IssueOrphanedSplit     = "orphaned_split"
	IssueComponentOverflow = "component_overflow"
	IssueEmptyBody         = "empty_body"
	IssueDuplicateTitle    = "duplicate_title"
	IssueMissingCTA        = "missing_cta"
)

// StructuralIssue is one finding of the programmatic structural check.
type StructuralIssue struct {
	SlideNumber int    `json:"slideNumber,omitempty"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	// Warning issues are reported but never auto-fixed.
	Warning bool `json:"warning,omitempty"`
}

// Report is the full quality review outcome for one deck. It is ephemeral:
// computed per run and never persisted.
type Report struct {
	Style *AgentReport `json:"style"`
	// FactCheck is nil when the deck has no data-bearing slides.
	FactCheck *AgentReport `json:"factCheck,omitempty"`
	// Narrative is nil below the minimum slide count; a short deck has no
	// meaningful narrative arc and nil is deliberately not a zero score.
	Narrative  *AgentReport      `json:"narrative,omitempty"`
	Structural []StructuralIssue `json:"structural"`

	// Fixes is ordered: style first, then fact-check, then structural,
	// each in slide order.
	Fixes []Fix `json:"fixes"`

	// Passed is the conjunction of every agent that ran meeting its
	// threshold.
	Passed bool `json:"passed"`
}

// SlidePassed reports whether a specific slide met the per-slide agents'
// thresholds. The validation gate uses it to decide whether auto-approve may
// skip the slide.
func (r *Report) SlidePassed(slideNumber int) bool {
	if r == nil {
		return false
	}
	for _, rep := range []*AgentReport{r.Style, r.FactCheck} {
		if rep == nil {
			continue
		}
		for _, sc := range rep.Scores {
			if sc.SlideNumber == slideNumber && sc.Score < rep.Threshold {
				return false
			}
		}
	}
	return true
}
