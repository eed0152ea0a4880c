package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deckforge/internal/events"
	"deckforge/internal/llm"
	"deckforge/internal/models"
	"deckforge/internal/repositories"
	"deckforge/internal/retrieval"
)

// SlideWriterOptions tune the generation loop. Zero values fall back to
// defaults.
type SlideWriterOptions struct {
	// WindowSize is how many prior slide summaries each prompt carries.
	WindowSize int
	// MaxTableRows clamps table bodies after the density review.
	MaxTableRows int
	MaxRetries   int
	RetrieveK    int
}

func (o SlideWriterOptions) withDefaults() SlideWriterOptions {
	if o.WindowSize <= 0 {
		o.WindowSize = 5
	}
	if o.MaxTableRows <= 0 {
		o.MaxTableRows = 8
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	if o.RetrieveK <= 0 {
		o.RetrieveK = 4
	}
	return o
}

// SlideWriter realizes a slide plan into persisted slides, strictly in plan
// order. Each prompt sees a rolling window of the previous slides' summaries,
// which is why the loop can never be parallelized.
type SlideWriter interface {
	WriteSlides(ctx context.Context, userID, presentationID uint, topic string, plan []models.SlidePlanItem) ([]models.Slide, error)
}

type slideWriter struct {
	executor  *llm.Executor
	retriever retrieval.Retriever
	slideRepo repositories.SlideRepository
	emitter   events.Emitter
	log       *zap.SugaredLogger
	opts      SlideWriterOptions
}

func NewSlideWriter(executor *llm.Executor, retriever retrieval.Retriever, slideRepo repositories.SlideRepository, emitter events.Emitter, log *zap.SugaredLogger, opts SlideWriterOptions) SlideWriter {
	return &slideWriter{
		executor:  executor,
		retriever: retriever,
		slideRepo: slideRepo,
		emitter:   emitter,
		log:       log,
		opts:      opts.withDefaults(),
	}
}

func (w *slideWriter) WriteSlides(ctx context.Context, userID, presentationID uint, topic string, plan []models.SlidePlanItem) ([]models.Slide, error) {
	grounding := w.prefetchGrounding(ctx, userID, plan)

	slides := make([]models.Slide, 0, len(plan))
	var window []string

	for i, item := range plan {
		content, err := llm.Run[llm.SlideContentShape](ctx, w.executor, llm.TierSmart, llm.SlideContentMessages(topic, item, window, grounding[i]), w.opts.MaxRetries)
		if err != nil {
			return slides, fmt.Errorf("slide %d generation failed: %w", item.SlideNumber, err)
		}

		if !item.SlideType.Minimal() {
			content = w.reviewDensity(ctx, item.SlideNumber, content)
		}
		if item.SlideType == models.SlideTable {
			content.Body = clampTableRows(content.Body, w.opts.MaxTableRows)
		}

		slide := models.Slide{
			PresentationID: presentationID,
			SlideNumber:    item.SlideNumber,
			Title:          content.Title,
			Body:           content.Body,
			SpeakerNotes:   content.SpeakerNotes,
			SlideType:      item.SlideType,
			ImagePrompt:    content.ImagePrompt,
			SectionLabel:   item.SectionLabel,
		}
		if err := w.slideRepo.Create(ctx, &slide); err != nil {
			return slides, fmt.Errorf("failed to persist slide %d: %w", item.SlideNumber, err)
		}
		slides = append(slides, slide)

		window = append(window, slide.Summary())
		if len(window) > w.opts.WindowSize {
			window = window[len(window)-w.opts.WindowSize:]
		}

		w.emitter.Emit(ctx, events.NewInfo(events.StageSlides, fmt.Sprintf("slide %d/%d written: %s", item.SlideNumber, len(plan), slide.Title)))
	}
	return slides, nil
}

// prefetchGrounding fans out retrieval for data-bearing slides before the
// loop starts. Retrieval only depends on the plan, so the fan-out never
// breaks the sequential prompt chain. Failures leave the slot empty.
func (w *slideWriter) prefetchGrounding(ctx context.Context, userID uint, plan []models.SlidePlanItem) []string {
	grounding := make([]string, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range plan {
		if !item.SlideType.DataBearing() {
			continue
		}
		g.Go(func() error {
			query := item.Title
			if len(item.Bullets) > 0 {
				query = query + ": " + strings.Join(item.Bullets, "; ")
			}
			text, err := w.retriever.RetrieveContext(gctx, userID, query, w.opts.RetrieveK)
			if err != nil {
				w.log.Warnw("slide grounding retrieval failed", "slide", item.SlideNumber, "error", err)
				return nil
			}
			grounding[i] = text
			return nil
		})
	}
	_ = g.Wait()
	return grounding
}

// reviewDensity asks the fast tier whether the drafted slide is overloaded
// and substitutes the tighter rewrite when it is. A reviewer failure keeps
// the original content; one unavailable reviewer must never abort the loop.
func (w *slideWriter) reviewDensity(ctx context.Context, slideNumber int, content llm.SlideContentShape) llm.SlideContentShape {
	review, err := llm.Run[llm.DensityReviewShape](ctx, w.executor, llm.TierFast, llm.DensityReviewMessages(content.Title, content.Body), w.opts.MaxRetries)
	if err != nil {
		w.log.Warnw("density review failed, keeping original content", "slide", slideNumber, "error", err)
		return content
	}
	if review.Verdict != llm.DensityVerdictSplitRequired {
		return content
	}
	if strings.TrimSpace(review.Title) != "" {
		content.Title = review.Title
	}
	content.Body = review.Body
	if strings.TrimSpace(review.SpeakerNotes) != "" {
		content.SpeakerNotes = review.SpeakerNotes
	}
	return content
}

// clampTableRows trims markdown table bodies to maxRows data rows, keeping
// the header and separator lines.
func clampTableRows(body string, maxRows int) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	tableLines := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			tableLines++
			// header and separator, then maxRows data rows
			if tableLines > maxRows+2 {
				continue
			}
		} else {
			tableLines = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
