package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"deckforge/internal/llm"
	"deckforge/internal/models"
	"deckforge/internal/retrieval"
)

// OutlineOptions control one outline build.
type OutlineOptions struct {
	MinSlides int
	MaxSlides int

	// TierCap is the hard slide ceiling for the requesting user's tier.
	// Plans longer than the cap are truncated, never rejected.
	TierCap int

	// RequireSectionLabels backfills missing section labels from the slide
	// type so downstream rendering never sees an unlabeled section.
	RequireSectionLabels bool

	// RequireAgenda splices an agenda slide in at position 2 when the model
	// did not plan one.
	RequireAgenda bool
}

// OutlineService turns a topic into an ordered slide plan.
type OutlineService interface {
	BuildOutline(ctx context.Context, userID uint, topic string, opts OutlineOptions) ([]models.SlidePlanItem, error)
}

type outlineService struct {
	executor   *llm.Executor
	retriever  retrieval.Retriever
	log        *zap.SugaredLogger
	maxRetries int
	retrieveK  int
}

func NewOutlineService(executor *llm.Executor, retriever retrieval.Retriever, log *zap.SugaredLogger) OutlineService {
	return &outlineService{
		executor:   executor,
		retriever:  retriever,
		log:        log,
		maxRetries: 2,
		retrieveK:  4,
	}
}

func (s *outlineService) BuildOutline(ctx context.Context, userID uint, topic string, opts OutlineOptions) ([]models.SlidePlanItem, error) {
	contextText, err := s.retriever.RetrieveContext(ctx, userID, topic, s.retrieveK)
	if err != nil {
		s.log.Warnw("outline context retrieval failed, continuing without it", "error", err)
		contextText = ""
	}

	shape, err := llm.Run[llm.OutlineShape](ctx, s.executor, llm.TierSmart, llm.OutlineMessages(topic, opts.MinSlides, opts.MaxSlides, contextText), s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("outline generation failed: %w", err)
	}

	plan := make([]models.SlidePlanItem, 0, len(shape.Slides))
	for i, item := range shape.Slides {
		plan = append(plan, models.SlidePlanItem{
			SlideNumber:  i + 1,
			Title:        item.Title,
			Bullets:      item.Bullets,
			SlideType:    models.SlideType(item.SlideType),
			SectionLabel: item.SectionLabel,
		})
	}
	return postProcessPlan(plan, opts), nil
}

// postProcessPlan applies the three plan adjustments in a fixed order. The
// truncation must run first: it can remove the very slide the label backfill
// or agenda check would otherwise target.
func postProcessPlan(plan []models.SlidePlanItem, opts OutlineOptions) []models.SlidePlanItem {
	if opts.TierCap > 0 && len(plan) > opts.TierCap {
		plan = plan[:opts.TierCap]
		models.RenumberPlan(plan)
	}

	if opts.RequireSectionLabels {
		for i := range plan {
			if strings.TrimSpace(plan[i].SectionLabel) == "" {
				plan[i].SectionLabel = labelForType(plan[i].SlideType)
			}
		}
	}

	if opts.RequireAgenda && !hasAgenda(plan) && len(plan) > 0 {
		agenda := models.SlidePlanItem{
			Title:     "Agenda",
			SlideType: models.SlideAgenda,
			Bullets:   agendaBullets(plan),
		}
		if opts.RequireSectionLabels {
			agenda.SectionLabel = labelForType(models.SlideAgenda)
		}
		at := 1
		if len(plan) < 2 {
			at = len(plan)
		}
		plan = append(plan[:at], append([]models.SlidePlanItem{agenda}, plan[at:]...)...)
		models.RenumberPlan(plan)
	}

	return plan
}

func hasAgenda(plan []models.SlidePlanItem) bool {
	for _, item := range plan {
		if item.SlideType == models.SlideAgenda {
			return true
		}
	}
	return false
}

// agendaBullets lists the planned titles after the title slide, giving the
// spliced agenda real content instead of a placeholder.
func agendaBullets(plan []models.SlidePlanItem) []string {
	var bullets []string
	for _, item := range plan {
		if item.SlideType == models.SlideTitle || item.SlideType == models.SlideAgenda {
			continue
		}
		bullets = append(bullets, item.Title)
	}
	return bullets
}

func labelForType(t models.SlideType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
