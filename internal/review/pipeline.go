package review

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deckforge/internal/llm"
	"deckforge/internal/models"
	"deckforge/internal/retrieval"
)

// Options tune the review pipeline. Zero values fall back to defaults.
type Options struct {
	StyleBatchSize     int
	FactBatchSize      int
	MinNarrativeSlides int
	MaxRetries         int
	MaxItemsPerSlide   int
	RetrieveK          int
}

func DefaultOptions() Options {
	return Options{
		StyleBatchSize:     3,
		FactBatchSize:      2,
		MinNarrativeSlides: 4,
		MaxRetries:         2,
		MaxItemsPerSlide:   6,
		RetrieveK:          4,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.StyleBatchSize <= 0 {
		o.StyleBatchSize = def.StyleBatchSize
	}
	if o.FactBatchSize <= 0 {
		o.FactBatchSize = def.FactBatchSize
	}
	if o.MinNarrativeSlides <= 0 {
		o.MinNarrativeSlides = def.MinNarrativeSlides
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = def.MaxRetries
	}
	if o.MaxItemsPerSlide <= 0 {
		o.MaxItemsPerSlide = def.MaxItemsPerSlide
	}
	if o.RetrieveK <= 0 {
		o.RetrieveK = def.RetrieveK
	}
	return o
}

// Pipeline runs the four review agents over a realized slide set. A failing
// agent never fails the review: its slides get neutral assume-pass scores
// flagged as degraded.
type Pipeline struct {
	executor   *llm.Executor
	retriever  retrieval.Retriever
	thresholds ThresholdConfig
	opts       Options
	log        *zap.SugaredLogger
}

func NewPipeline(executor *llm.Executor, retriever retrieval.Retriever, thresholds ThresholdConfig, opts Options, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		executor:   executor,
		retriever:  retriever,
		thresholds: thresholds,
		opts:       opts.withDefaults(),
		log:        log,
	}
}

// Run evaluates the deck and aggregates the report. Style and fact-check are
// independent per-slide agents and run concurrently; narrative runs after
// them; the structural check is local and always runs.
func (p *Pipeline) Run(ctx context.Context, userID uint, archetype string, slides []models.Slide) *Report {
	th := p.thresholds.ForArchetype(archetype)
	report := &Report{}

	var styleFixes, factFixes []Fix
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Style, styleFixes = p.runStyle(gctx, slides, th.Style)
		return nil
	})
	g.Go(func() error {
		report.FactCheck, factFixes = p.runFactCheck(gctx, userID, slides, th.FactCheck)
		return nil
	})
	_ = g.Wait()

	report.Narrative = p.runNarrative(ctx, slides, th.Narrative)

	var structFixes []Fix
	report.Structural, structFixes = CheckStructure(slides, p.opts.MaxItemsPerSlide)

	report.Fixes = append(report.Fixes, styleFixes...)
	report.Fixes = append(report.Fixes, factFixes...)
	report.Fixes = append(report.Fixes, structFixes...)

	report.Passed = true
	for _, rep := range []*AgentReport{report.Style, report.FactCheck, report.Narrative} {
		if rep != nil && !rep.Passed {
			report.Passed = false
		}
	}
	return report
}

func (p *Pipeline) runStyle(ctx context.Context, slides []models.Slide, threshold float64) (*AgentReport, []Fix) {
	bodies := bodyByNumber(slides)
	var scores []SlideScore
	var fixes []Fix

	for _, batch := range chunk(slides, p.opts.StyleBatchSize) {
		out, err := llm.Run[llm.StyleBatchShape](ctx, p.executor, llm.TierFast, llm.StyleBatchMessages(batch), p.opts.MaxRetries)
		if err != nil {
			p.log.Warnw("style agent degraded", "error", err, "slides", len(batch))
			scores = append(scores, neutralScores(batch, threshold, "style review unavailable")...)
			continue
		}
		for _, r := range out.Results {
			body, known := bodies[r.SlideNumber]
			if !known {
				continue
			}
			scores = append(scores, SlideScore{SlideNumber: r.SlideNumber, Score: r.Score, Issues: r.Issues})
			if strings.TrimSpace(r.FixedBody) != "" && r.FixedBody != body {
				fixes = append(fixes, Fix{
					SlideNumber: r.SlideNumber,
					Agent:       AgentStyle,
					Mode:        FixReplaceBody,
					Original:    body,
					Fixed:       r.FixedBody,
				})
			}
		}
	}
	return buildAgentReport(AgentStyle, scores, threshold), fixes
}

func (p *Pipeline) runFactCheck(ctx context.Context, userID uint, slides []models.Slide, threshold float64) (*AgentReport, []Fix) {
	var dataSlides []models.Slide
	for _, s := range slides {
		if s.SlideType.DataBearing() {
			dataSlides = append(dataSlides, s)
		}
	}
	if len(dataSlides) == 0 {
		return nil, nil
	}

	var scores []SlideScore
	var fixes []Fix
	for _, batch := range chunk(dataSlides, p.opts.FactBatchSize) {
		grounding := p.retrieveGrounding(ctx, userID, batch)
		out, err := llm.Run[llm.FactCheckBatchShape](ctx, p.executor, llm.TierFast, llm.FactCheckBatchMessages(batch, grounding), p.opts.MaxRetries)
		if err != nil {
			p.log.Warnw("fact-check agent degraded", "error", err, "slides", len(batch))
			scores = append(scores, neutralScores(batch, threshold, "fact check unavailable")...)
			continue
		}
		for _, r := range out.Results {
			if _, known := bodyByNumber(batch)[r.SlideNumber]; !known {
				continue
			}
			sc := SlideScore{SlideNumber: r.SlideNumber, Score: r.Score}
			for _, c := range r.Claims {
				if c.Verdict != llm.ClaimContradicted {
					continue
				}
				sc.Issues = append(sc.Issues, fmt.Sprintf("contradicted: %s", c.Text))
				if strings.TrimSpace(c.Correction) != "" {
					fixes = append(fixes, Fix{
						SlideNumber: r.SlideNumber,
						Agent:       AgentFactCheck,
						Mode:        FixReplaceSpan,
						Original:    c.Text,
						Fixed:       c.Correction,
					})
				}
			}
			scores = append(scores, sc)
		}
	}
	return buildAgentReport(AgentFactCheck, scores, threshold), fixes
}

func (p *Pipeline) retrieveGrounding(ctx context.Context, userID uint, batch []models.Slide) string {
	titles := make([]string, 0, len(batch))
	for _, s := range batch {
		titles = append(titles, s.Title)
	}
	grounding, err := p.retriever.RetrieveContext(ctx, userID, strings.Join(titles, "; "), p.opts.RetrieveK)
	if err != nil {
		p.log.Warnw("fact-check grounding retrieval failed", "error", err)
		return ""
	}
	return grounding
}

func (p *Pipeline) runNarrative(ctx context.Context, slides []models.Slide, threshold float64) *AgentReport {
	if len(slides) < p.opts.MinNarrativeSlides {
		return nil
	}
	summaries := make([]string, 0, len(slides))
	for i := range slides {
		summaries = append(summaries, slides[i].Summary())
	}
	out, err := llm.Run[llm.NarrativeShape](ctx, p.executor, llm.TierSmart, llm.NarrativeMessages(summaries), p.opts.MaxRetries)
	if err != nil {
		p.log.Warnw("narrative agent degraded", "error", err)
		return &AgentReport{
			Agent:     AgentNarrative,
			Scores:    []SlideScore{{Score: threshold, Issues: []string{"narrative review unavailable"}, Degraded: true}},
			Average:   threshold,
			Threshold: threshold,
			Passed:    true,
			Degraded:  true,
		}
	}
	return &AgentReport{
		Agent:     AgentNarrative,
		Scores:    []SlideScore{{Score: out.Score, Issues: out.Issues}},
		Average:   out.Score,
		Threshold: threshold,
		Passed:    out.Score >= threshold,
	}
}

// neutralScores substitutes assume-pass results for a batch whose agent call
// failed, so one unavailable reviewer never fails a generation.
func neutralScores(batch []models.Slide, threshold float64, note string) []SlideScore {
	out := make([]SlideScore, 0, len(batch))
	for _, s := range batch {
		out = append(out, SlideScore{
			SlideNumber: s.SlideNumber,
			Score:       threshold,
			Issues:      []string{note},
			Degraded:    true,
		})
	}
	return out
}

func buildAgentReport(agent Agent, scores []SlideScore, threshold float64) *AgentReport {
	rep := &AgentReport{Agent: agent, Scores: scores, Threshold: threshold}
	if len(scores) == 0 {
		rep.Passed = true
		return rep
	}
	sum := 0.0
	for _, sc := range scores {
		sum += sc.Score
		if sc.Degraded {
			rep.Degraded = true
		}
	}
	rep.Average = sum / float64(len(scores))
	rep.Passed = rep.Average >= threshold
	return rep
}

func bodyByNumber(slides []models.Slide) map[int]string {
	out := make(map[int]string, len(slides))
	for _, s := range slides {
		out[s.SlideNumber] = s.Body
	}
	return out
}

func chunk(slides []models.Slide, size int) [][]models.Slide {
	if size <= 0 {
		size = 1
	}
	var out [][]models.Slide
	for start := 0; start < len(slides); start += size {
		end := start + size
		if end > len(slides) {
			end = len(slides)
		}
		out = append(out, slides[start:end])
	}
	return out
}
