package llm

import (
	"fmt"
	"strings"

	"deckforge/internal/models"
)

// PlannedSlideShape is one outline entry as emitted by the model.
type PlannedSlideShape struct {
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets"`
	SlideType    string   `json:"slideType"`
	SectionLabel string   `json:"sectionLabel,omitempty"`
}

// OutlineShape is the outline stage's expected output.
type OutlineShape struct {
	Slides []PlannedSlideShape `json:"slides"`
}

var validSlideTypes = map[string]bool{
	string(models.SlideTitle):         true,
	string(models.SlideAgenda):        true,
	string(models.SlideContent):       true,
	string(models.SlideChart):         true,
	string(models.SlideTable):         true,
	string(models.SlideComparison):    true,
	string(models.SlideQuote):         true,
	string(models.SlideSectionHeader): true,
	string(models.SlideCallToAction):  true,
}

func (o OutlineShape) Validate() error {
	if len(o.Slides) == 0 {
		return fmt.Errorf("outline has no slides")
	}
	for i, s := range o.Slides {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("outline slide %d has an empty title", i+1)
		}
		if !validSlideTypes[s.SlideType] {
			return fmt.Errorf("outline slide %d has unknown slide type %q", i+1, s.SlideType)
		}
	}
	return nil
}

// SlideContentShape is the per-slide generation output.
type SlideContentShape struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	SpeakerNotes string `json:"speakerNotes"`
	ImagePrompt  string `json:"imagePrompt,omitempty"`
}

func (s SlideContentShape) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("slide content has an empty title")
	}
	return nil
}

// Density review verdicts.
const (
	DensityVerdictOK            = "ok"
	DensityVerdictSplitRequired = "split_required"
)

// DensityReviewShape is the lightweight content-density reviewer output. When
// the verdict is split_required the rewrite fields carry a tighter version of
// the slide.
type DensityReviewShape struct {
	Verdict      string `json:"verdict"`
	Title        string `json:"title,omitempty"`
	Body         string `json:"body,omitempty"`
	SpeakerNotes string `json:"speakerNotes,omitempty"`
}

func (d DensityReviewShape) Validate() error {
	switch d.Verdict {
	case DensityVerdictOK:
		return nil
	case DensityVerdictSplitRequired:
		if strings.TrimSpace(d.Body) == "" {
			return fmt.Errorf("split_required verdict without a rewritten body")
		}
		return nil
	}
	return fmt.Errorf("unknown density verdict %q", d.Verdict)
}

// StyleResultShape is one slide's style evaluation.
type StyleResultShape struct {
	SlideNumber int      `json:"slideNumber"`
	Score       float64  `json:"score"`
	Issues      []string `json:"issues,omitempty"`
	// FixedBody, when non-empty, is the agent's proposed rewrite of the
	// slide body.
	FixedBody string `json:"fixedBody,omitempty"`
}

// StyleBatchShape is the style agent's output for one batch of slides.
type StyleBatchShape struct {
	Results []StyleResultShape `json:"results"`
}

func (b StyleBatchShape) Validate() error {
	if len(b.Results) == 0 {
		return fmt.Errorf("style batch has no results")
	}
	for _, r := range b.Results {
		if r.SlideNumber <= 0 {
			return fmt.Errorf("style result has invalid slide number %d", r.SlideNumber)
		}
		if r.Score < 0 || r.Score > 1 {
			return fmt.Errorf("style score %f out of [0,1] for slide %d", r.Score, r.SlideNumber)
		}
	}
	return nil
}

// Fact-check claim verdicts.
const (
	ClaimSupported    = "supported"
	ClaimUncertain    = "uncertain"
	ClaimContradicted = "contradicted"
)

// ClaimShape is one checked claim within a slide.
type ClaimShape struct {
	Text    string `json:"text"`
	Verdict string `json:"verdict"`
	// Correction is the replacement span for a contradicted claim.
	Correction string `json:"correction,omitempty"`
}

// FactCheckResultShape is one slide's fact-check evaluation.
type FactCheckResultShape struct {
	SlideNumber int          `json:"slideNumber"`
	Score       float64      `json:"score"`
	Claims      []ClaimShape `json:"claims,omitempty"`
}

// FactCheckBatchShape is the fact-check agent's output for one batch.
type FactCheckBatchShape struct {
	Results []FactCheckResultShape `json:"results"`
}

func (b FactCheckBatchShape) Validate() error {
	if len(b.Results) == 0 {
		return fmt.Errorf("fact-check batch has no results")
	}
	for _, r := range b.Results {
		if r.SlideNumber <= 0 {
			return fmt.Errorf("fact-check result has invalid slide number %d", r.SlideNumber)
		}
		if r.Score < 0 || r.Score > 1 {
			return fmt.Errorf("fact-check score %f out of [0,1] for slide %d", r.Score, r.SlideNumber)
		}
		for _, c := range r.Claims {
			switch c.Verdict {
			case ClaimSupported, ClaimUncertain, ClaimContradicted:
			default:
				return fmt.Errorf("unknown claim verdict %q on slide %d", c.Verdict, r.SlideNumber)
			}
		}
	}
	return nil
}

// NarrativeShape is the deck-level narrative coherence result.
type NarrativeShape struct {
	Score   float64  `json:"score"`
	Summary string   `json:"summary"`
	Issues  []string `json:"issues,omitempty"`
}

func (n NarrativeShape) Validate() error {
	if n.Score < 0 || n.Score > 1 {
		return fmt.Errorf("narrative score %f out of [0,1]", n.Score)
	}
	return nil
}
