package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deckforge/internal/config"
	"deckforge/internal/events"
	"deckforge/internal/models"
	"deckforge/internal/repositories"
	"deckforge/internal/review"
)

// ErrPreflightRejected is returned for requests that fail validation before
// any credits are reserved. Wrapped with the concrete reason.
var ErrPreflightRejected = errors.New("generation request rejected")

// GenerateRequest describes one deck generation run.
type GenerateRequest struct {
	UserID    uint   `json:"userId"`
	Topic     string `json:"topic"`
	MinSlides int    `json:"minSlides"`
	MaxSlides int    `json:"maxSlides"`
	ThemeID   string `json:"themeId"`
	// Archetype selects per-deck review threshold overrides.
	Archetype string `json:"archetype"`

	RequireSectionLabels bool `json:"requireSectionLabels"`
	RequireAgenda        bool `json:"requireAgenda"`
}

// GenerationService is the pipeline orchestrator. Generate owns the full
// run: preflight, credit reservation, outline, slide loop, review, fixes and
// the validation gate handoff.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*models.Presentation, error)
}

type generationService struct {
	cfg        *config.Config
	userRepo   repositories.UserRepository
	presRepo   repositories.PresentationRepository
	slideRepo  repositories.SlideRepository
	creditRepo repositories.CreditRepository
	themes     ThemeService
	outline    OutlineService
	writer     SlideWriter
	reviewer   *review.Pipeline
	validation ValidationService
	emitter    events.Emitter
	log        *zap.SugaredLogger
}

func NewGenerationService(
	cfg *config.Config,
	userRepo repositories.UserRepository,
	presRepo repositories.PresentationRepository,
	slideRepo repositories.SlideRepository,
	creditRepo repositories.CreditRepository,
	themes ThemeService,
	outline OutlineService,
	writer SlideWriter,
	reviewer *review.Pipeline,
	validation ValidationService,
	emitter events.Emitter,
	log *zap.SugaredLogger,
) GenerationService {
	return &generationService{
		cfg:        cfg,
		userRepo:   userRepo,
		presRepo:   presRepo,
		slideRepo:  slideRepo,
		creditRepo: creditRepo,
		themes:     themes,
		outline:    outline,
		writer:     writer,
		reviewer:   reviewer,
		validation: validation,
		emitter:    emitter,
		log:        log,
	}
}

func (s *generationService) Generate(ctx context.Context, req GenerateRequest) (*models.Presentation, error) {
	user, tierCap, err := s.preflight(ctx, &req)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, events.NewInfo(events.StagePreflight, fmt.Sprintf("generating deck for %q", req.Topic)))

	reservation, err := s.creditRepo.Reserve(ctx, user.ID, s.cfg.GenerationCost, fmt.Sprintf("deck generation: %s", req.Topic))
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientBalance) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reserve credits: %w", err)
	}
	s.emitter.Emit(ctx, events.NewInfo(events.StageReserve, fmt.Sprintf("reserved %d credits", reservation.Amount)))

	// Exactly one of commit/release resolves the reservation, on every
	// path out of this function, including panics. Release is idempotent,
	// so a commit that already happened makes the deferred call a no-op by
	// flag, and a failed commit leaves the status predicate to arbitrate.
	committed := false
	defer func() {
		if committed {
			return
		}
		cleanup := context.WithoutCancel(ctx)
		if relErr := s.creditRepo.Release(cleanup, reservation.ID); relErr != nil {
			s.log.Errorw("credit release failed", "reservation", reservation.ID, "error", relErr)
		}
	}()

	presentation := &models.Presentation{
		UserID: user.ID,
		Topic:  req.Topic,
		Status: models.PresentationProcessing,
	}
	if err := s.presRepo.Create(ctx, presentation); err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}
	ctx = events.WithSession(ctx, fmt.Sprintf("presentation:%d", presentation.ID))

	// Theme resolution and the outline build (which retrieves its own
	// context) are independent, so they fan out together.
	var theme *models.Theme
	var plan []models.SlidePlanItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		theme, gerr = s.themes.Resolve(gctx, req.ThemeID)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		plan, gerr = s.outline.BuildOutline(gctx, user.ID, req.Topic, OutlineOptions{
			MinSlides:            req.MinSlides,
			MaxSlides:            req.MaxSlides,
			TierCap:              tierCap,
			RequireSectionLabels: req.RequireSectionLabels,
			RequireAgenda:        req.RequireAgenda,
		})
		return gerr
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, presentation.ID, events.StageOutline, err)
	}
	if err := s.presRepo.SetTheme(ctx, presentation.ID, theme.ID); err != nil {
		return nil, s.fail(ctx, presentation.ID, events.StageOutline, fmt.Errorf("failed to set theme: %w", err))
	}
	presentation.ThemeID = theme.ID
	s.emitter.Emit(ctx, events.NewInfo(events.StageOutline, fmt.Sprintf("outline ready: %d slides", len(plan))))

	slides, err := s.writer.WriteSlides(ctx, user.ID, presentation.ID, req.Topic, plan)
	if err != nil {
		// Partial slides stay persisted; the failed run keeps what it
		// produced.
		return nil, s.fail(ctx, presentation.ID, events.StageSlides, err)
	}

	report := s.reviewer.Run(ctx, user.ID, req.Archetype, slides)
	s.emitter.Emit(ctx, events.NewInfo(events.StageReview, fmt.Sprintf("review finished: passed=%t fixes=%d", report.Passed, len(report.Fixes))))

	slides = s.applyFixes(ctx, slides, report.Fixes)

	for _, slide := range slides {
		if enqErr := s.validation.Enqueue(ctx, presentation.ID, slide, report.SlidePassed(slide.SlideNumber)); enqErr != nil {
			s.log.Warnw("failed to enqueue slide for validation", "slide", slide.ID, "error", enqErr)
		}
	}
	s.emitter.Emit(ctx, events.NewInfo(events.StageValidation, "slides handed to the validation gate"))

	if err := s.creditRepo.Commit(ctx, reservation.ID); err != nil {
		return nil, s.fail(ctx, presentation.ID, events.StageFinalize, fmt.Errorf("failed to commit credits: %w", err))
	}
	committed = true

	if err := s.presRepo.SetStatus(ctx, presentation.ID, models.PresentationCompleted); err != nil {
		s.log.Errorw("failed to mark presentation completed", "presentation", presentation.ID, "error", err)
	}
	presentation.Status = models.PresentationCompleted
	presentation.Slides = slides
	s.emitter.Emit(ctx, events.NewSuccess(events.StageFinalize, fmt.Sprintf("deck completed with %d slides", len(slides))))
	return presentation, nil
}

// preflight validates the request before anything is reserved or persisted.
func (s *generationService) preflight(ctx context.Context, req *GenerateRequest) (*models.User, int, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, 0, fmt.Errorf("%w: topic is required", ErrPreflightRejected)
	}
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load user %d: %w", req.UserID, err)
	}
	if user == nil {
		return nil, 0, fmt.Errorf("%w: unknown user %d", ErrPreflightRejected, req.UserID)
	}

	tierCap := s.cfg.FreeTierSlideCap
	if user.Tier == models.TierPro {
		tierCap = s.cfg.ProTierSlideCap
	}
	if req.MinSlides <= 0 {
		req.MinSlides = 5
	}
	if req.MaxSlides <= 0 {
		req.MaxSlides = tierCap
	}
	if req.MinSlides > req.MaxSlides {
		return nil, 0, fmt.Errorf("%w: min slides %d exceeds max slides %d", ErrPreflightRejected, req.MinSlides, req.MaxSlides)
	}
	if req.MinSlides > tierCap {
		return nil, 0, fmt.Errorf("%w: %d slides exceeds the %s tier cap of %d", ErrPreflightRejected, req.MinSlides, user.Tier, tierCap)
	}
	if req.MaxSlides > tierCap {
		req.MaxSlides = tierCap
	}
	return user, tierCap, nil
}

// applyFixes writes the review pipeline's proposed fixes back to the slides.
// Application is best-effort: a fix that no longer matches is skipped with a
// log line, never a failure.
func (s *generationService) applyFixes(ctx context.Context, slides []models.Slide, fixes []review.Fix) []models.Slide {
	if len(fixes) == 0 {
		return slides
	}
	index := make(map[int]int, len(slides))
	for i := range slides {
		index[slides[i].SlideNumber] = i
	}

	touched := map[int]bool{}
	for _, fix := range fixes {
		i, ok := index[fix.SlideNumber]
		if !ok {
			s.log.Warnw("fix targets unknown slide, skipping", "slide", fix.SlideNumber, "agent", fix.Agent)
			continue
		}
		switch fix.Mode {
		case review.FixReplaceTitle:
			slides[i].Title = fix.Fixed
		case review.FixReplaceBody:
			slides[i].Body = fix.Fixed
		case review.FixReplaceSpan:
			if !strings.Contains(slides[i].Body, fix.Original) {
				s.log.Infow("correction span not found, skipping", "slide", fix.SlideNumber, "agent", fix.Agent)
				continue
			}
			slides[i].Body = strings.Replace(slides[i].Body, fix.Original, fix.Fixed, 1)
		default:
			s.log.Warnw("unknown fix mode, skipping", "mode", fix.Mode, "slide", fix.SlideNumber)
			continue
		}
		touched[i] = true
	}

	for i := range slides {
		if !touched[i] {
			continue
		}
		err := s.slideRepo.UpdateFields(ctx, slides[i].ID, map[string]interface{}{
			"title": slides[i].Title,
			"body":  slides[i].Body,
		})
		if err != nil {
			s.log.Warnw("failed to persist review fix", "slide", slides[i].ID, "error", err)
		}
	}
	if len(touched) > 0 {
		s.emitter.Emit(ctx, events.NewInfo(events.StageFixes, fmt.Sprintf("applied fixes to %d slides", len(touched))))
	}
	return slides
}

// fail marks the presentation failed and emits the error event. Best-effort:
// the original error always comes back to the caller.
func (s *generationService) fail(ctx context.Context, presentationID uint, stage string, cause error) error {
	s.emitter.Emit(ctx, events.NewError(stage, cause.Error()))
	cleanup := context.WithoutCancel(ctx)
	if err := s.presRepo.SetStatus(cleanup, presentationID, models.PresentationFailed); err != nil {
		s.log.Errorw("failed to mark presentation failed", "presentation", presentationID, "error", err)
	}
	return cause
}
