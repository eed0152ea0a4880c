package llm

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"deckforge/internal/models"
)

const jsonOnly = "Respond with a single JSON object and nothing else. No markdown fences, no commentary."

// OutlineMessages builds the outline planning prompt.
func OutlineMessages(topic string, minSlides, maxSlides int, contextText string) []*schema.Message {
	system := "You are a presentation planner. You design the ordered slide plan for a deck: " +
		"one title slide first, content slides grouped into sections, and a closing call_to_action slide. " +
		`Allowed slide types: title, agenda, content, chart, table, comparison, quote, section_header, call_to_action. ` +
		jsonOnly + ` Schema: {"slides":[{"title":"...","bullets":["..."],"slideType":"...","sectionLabel":"..."}]}`

	var b strings.Builder
	fmt.Fprintf(&b, "Plan a deck about: %s\n", topic)
	fmt.Fprintf(&b, "Target between %d and %d slides.\n", minSlides, maxSlides)
	if strings.TrimSpace(contextText) != "" {
		fmt.Fprintf(&b, "\nGrounding material:\n%s\n", contextText)
	}
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(b.String()),
	}
}

// SlideContentMessages builds the per-slide content prompt. priorWindow
// carries the rolling summaries of the last few realized slides so the deck
// reads as one narrative.
func SlideContentMessages(topic string, plan models.SlidePlanItem, priorWindow []string, grounding string) []*schema.Message {
	system := "You write the full content of one presentation slide. Keep bodies tight: short lines, markdown bullet lists, no paragraphs over two sentences. " +
		jsonOnly + ` Schema: {"title":"...","body":"...","speakerNotes":"...","imagePrompt":"..."}`

	var b strings.Builder
	fmt.Fprintf(&b, "Deck topic: %s\n", topic)
	fmt.Fprintf(&b, "Slide %d of the plan. Type: %s. Planned title: %s\n", plan.SlideNumber, plan.SlideType, plan.Title)
	if len(plan.Bullets) > 0 {
		fmt.Fprintf(&b, "Planned points:\n- %s\n", strings.Join(plan.Bullets, "\n- "))
	}
	if plan.SectionLabel != "" {
		fmt.Fprintf(&b, "Section: %s\n", plan.SectionLabel)
	}
	if len(priorWindow) > 0 {
		fmt.Fprintf(&b, "\nPreceding slides (for continuity):\n%s\n", strings.Join(priorWindow, "\n"))
	}
	if strings.TrimSpace(grounding) != "" {
		fmt.Fprintf(&b, "\nGrounding material:\n%s\n", grounding)
	}
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(b.String()),
	}
}

// DensityReviewMessages builds the content-density reviewer prompt.
func DensityReviewMessages(title, body string) []*schema.Message {
	system := `You review one slide for content density. Verdict "ok" when the slide fits a single screen; ` +
		`"split_required" when it is overloaded, in which case you also return a tightened rewrite. ` +
		jsonOnly + ` Schema: {"verdict":"ok|split_required","title":"...","body":"...","speakerNotes":"..."}`
	user := fmt.Sprintf("Title: %s\n\nBody:\n%s", title, body)
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}
}

// StyleBatchMessages builds the style agent prompt for one batch of slides.
func StyleBatchMessages(slides []models.Slide) []*schema.Message {
	system := "You are a presentation style reviewer. Score each slide from 0 to 1 for tone consistency, parallel phrasing, and audience fit. " +
		"When a slide scores under 0.7, include a fixedBody rewrite. " +
		jsonOnly + ` Schema: {"results":[{"slideNumber":1,"score":0.0,"issues":["..."],"fixedBody":"..."}]}`
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(renderSlides(slides)),
	}
}

// FactCheckBatchMessages builds the fact-check agent prompt for one batch,
// with grounding retrieved per batch.
func FactCheckBatchMessages(slides []models.Slide, grounding string) []*schema.Message {
	system := "You are a fact checker. Extract the factual claims of each slide and judge them against the grounding material: " +
		`supported, uncertain, or contradicted. For every contradicted claim supply a correction span that can replace the claim text. ` +
		jsonOnly + ` Schema: {"results":[{"slideNumber":1,"score":0.0,"claims":[{"text":"...","verdict":"supported|uncertain|contradicted","correction":"..."}]}]}`
	var b strings.Builder
	b.WriteString(renderSlides(slides))
	if strings.TrimSpace(grounding) != "" {
		fmt.Fprintf(&b, "\nGrounding material:\n%s\n", grounding)
	}
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(b.String()),
	}
}

// NarrativeMessages builds the deck-level narrative coherence prompt over
// per-slide summaries.
func NarrativeMessages(summaries []string) []*schema.Message {
	system := "You review the narrative arc of a whole deck from its slide summaries: setup, development, resolution, no dangling threads. " +
		"Score 0 to 1. " + jsonOnly + ` Schema: {"score":0.0,"summary":"...","issues":["..."]}`
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage("Slide summaries, in order:\n" + strings.Join(summaries, "\n")),
	}
}

func renderSlides(slides []models.Slide) string {
	var b strings.Builder
	for _, s := range slides {
		fmt.Fprintf(&b, "--- Slide %d (%s)\nTitle: %s\nBody:\n%s\n", s.SlideNumber, s.SlideType, s.Title, s.Body)
	}
	return b.String()
}
