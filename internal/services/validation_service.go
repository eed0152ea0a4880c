package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"deckforge/internal/ephemeral"
	"deckforge/internal/models"
	"deckforge/internal/repositories"
)

// ErrNothingPending is returned when a response arrives for an entry that was
// already resolved or has expired. Expected branch, not a failure.
var ErrNothingPending = errors.New("nothing pending for this slide")

// Validation actions.
const (
	ActionAccept = "accept"
	ActionEdit   = "edit"
	ActionReject = "reject"
)

// Edit classifications recorded with feedback, checked in priority order.
const (
	EditClassStyle   = "style"
	EditClassDensity = "density"
	EditClassTone    = "tone"
)

// PendingValidation is the snapshot stored while a slide waits for a user
// response. It carries enough of the slide to classify an edit without
// re-reading the database.
type PendingValidation struct {
	SlideID      uint             `json:"slideId"`
	SlideNumber  int              `json:"slideNumber"`
	Title        string           `json:"title"`
	Body         string           `json:"body"`
	SpeakerNotes string           `json:"speakerNotes"`
	SlideType    models.SlideType `json:"slideType"`
	ReviewPassed bool             `json:"reviewPassed"`
	EnqueuedAt   time.Time        `json:"enqueuedAt"`
}

// SlideEdits are the field deltas of an edit response. Nil means unchanged.
type SlideEdits struct {
	Title        *string `json:"title,omitempty"`
	Body         *string `json:"body,omitempty"`
	SpeakerNotes *string `json:"speakerNotes,omitempty"`
}

// FeedbackRecord is an original/corrected pair handed to the learning
// subsystem whenever a user edits or rejects a slide.
type FeedbackRecord struct {
	SessionID      uint
	SlideID        uint
	Action         string
	Classification string
	OriginalTitle  string
	OriginalBody   string
	FixedTitle     string
	FixedBody      string
}

// FeedbackLogger is the external learning collaborator.
type FeedbackLogger interface {
	LogFeedback(ctx context.Context, record FeedbackRecord) error
}

// ValidationService is the interactive gate between generation and the final
// deck. Entries live in the ephemeral store under pending:<session>:<slide>
// and lapse silently when their TTL expires.
type ValidationService interface {
	Enqueue(ctx context.Context, sessionID uint, slide models.Slide, reviewPassed bool) error
	Respond(ctx context.Context, sessionID, slideID uint, action string, edits *SlideEdits) error
	ListPending(ctx context.Context, sessionID uint) ([]PendingValidation, error)
	HasPending(ctx context.Context, sessionID uint) (bool, error)
	ClearPending(ctx context.Context, sessionID uint) error
	SetAutoApprove(ctx context.Context, sessionID uint, on bool) error
	AutoApprove(ctx context.Context, sessionID uint) bool
}

type validationService struct {
	store          ephemeral.Store
	slideRepo      repositories.SlideRepository
	feedback       FeedbackLogger
	log            *zap.SugaredLogger
	pendingTTL     time.Duration
	autoApproveTTL time.Duration
}

func NewValidationService(store ephemeral.Store, slideRepo repositories.SlideRepository, feedback FeedbackLogger, log *zap.SugaredLogger, pendingTTL, autoApproveTTL time.Duration) ValidationService {
	return &validationService{
		store:          store,
		slideRepo:      slideRepo,
		feedback:       feedback,
		log:            log,
		pendingTTL:     pendingTTL,
		autoApproveTTL: autoApproveTTL,
	}
}

func pendingKey(sessionID, slideID uint) string {
	return fmt.Sprintf("pending:%d:%d", sessionID, slideID)
}

func pendingPrefix(sessionID uint) string {
	return fmt.Sprintf("pending:%d:", sessionID)
}

func autoApproveKey(sessionID uint) string {
	return fmt.Sprintf("autoapprove:%d", sessionID)
}

// Enqueue stores a pending entry unless auto-approve is on and the slide
// already passed automated review. Auto-approve never short-circuits a slide
// the reviewers flagged.
func (s *validationService) Enqueue(ctx context.Context, sessionID uint, slide models.Slide, reviewPassed bool) error {
	if reviewPassed && s.AutoApprove(ctx, sessionID) {
		return nil
	}
	entry := PendingValidation{
		SlideID:      slide.ID,
		SlideNumber:  slide.SlideNumber,
		Title:        slide.Title,
		Body:         slide.Body,
		SpeakerNotes: slide.SpeakerNotes,
		SlideType:    slide.SlideType,
		ReviewPassed: reviewPassed,
		EnqueuedAt:   time.Now(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode pending validation: %w", err)
	}
	return s.store.Set(ctx, pendingKey(sessionID, slide.ID), raw, s.pendingTTL)
}

// Respond resolves one pending entry. Take removes the entry atomically, so
// a concurrent or repeated response sees ErrNothingPending instead of
// processing the same slide twice.
func (s *validationService) Respond(ctx context.Context, sessionID, slideID uint, action string, edits *SlideEdits) error {
	raw, ok, err := s.store.Take(ctx, pendingKey(sessionID, slideID))
	if err != nil {
		return fmt.Errorf("failed to load pending validation: %w", err)
	}
	if !ok {
		return ErrNothingPending
	}
	var entry PendingValidation
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fmt.Errorf("failed to decode pending validation: %w", err)
	}

	switch action {
	case ActionAccept:
		return nil
	case ActionEdit:
		return s.applyEdit(ctx, sessionID, entry, edits)
	case ActionReject:
		return s.applyReject(ctx, sessionID, entry)
	}
	return fmt.Errorf("unknown validation action %q", action)
}

func (s *validationService) applyEdit(ctx context.Context, sessionID uint, entry PendingValidation, edits *SlideEdits) error {
	if edits == nil {
		return fmt.Errorf("edit action requires field deltas")
	}
	updates := map[string]interface{}{}
	title, body := entry.Title, entry.Body
	if edits.Title != nil {
		updates["title"] = *edits.Title
		title = *edits.Title
	}
	if edits.Body != nil {
		updates["body"] = *edits.Body
		body = *edits.Body
	}
	if edits.SpeakerNotes != nil {
		updates["speaker_notes"] = *edits.SpeakerNotes
	}
	if len(updates) == 0 {
		return fmt.Errorf("edit action requires field deltas")
	}
	if err := s.slideRepo.UpdateFields(ctx, entry.SlideID, updates); err != nil {
		return fmt.Errorf("failed to apply slide edit: %w", err)
	}

	s.logFeedback(ctx, FeedbackRecord{
		SessionID:      sessionID,
		SlideID:        entry.SlideID,
		Action:         ActionEdit,
		Classification: classifyEdit(entry, edits),
		OriginalTitle:  entry.Title,
		OriginalBody:   entry.Body,
		FixedTitle:     title,
		FixedBody:      body,
	})
	return nil
}

func (s *validationService) applyReject(ctx context.Context, sessionID uint, entry PendingValidation) error {
	if err := s.slideRepo.DeleteAndRenumber(ctx, sessionID, entry.SlideID); err != nil {
		return fmt.Errorf("failed to reject slide: %w", err)
	}
	s.logFeedback(ctx, FeedbackRecord{
		SessionID:     sessionID,
		SlideID:       entry.SlideID,
		Action:        ActionReject,
		OriginalTitle: entry.Title,
		OriginalBody:  entry.Body,
	})
	return nil
}

// classifyEdit labels the edit for the feedback subsystem. Checks run in
// priority order: a title change is style, a body shrink of 30% or more is
// density, a notes-only change is tone, anything else is style.
func classifyEdit(entry PendingValidation, edits *SlideEdits) string {
	if edits.Title != nil && *edits.Title != entry.Title {
		return EditClassStyle
	}
	if edits.Body != nil && *edits.Body != entry.Body {
		if len(entry.Body) > 0 && float64(len(*edits.Body)) <= 0.7*float64(len(entry.Body)) {
			return EditClassDensity
		}
		return EditClassStyle
	}
	if edits.SpeakerNotes != nil {
		return EditClassTone
	}
	return EditClassStyle
}

func (s *validationService) logFeedback(ctx context.Context, record FeedbackRecord) {
	if s.feedback == nil {
		return
	}
	if err := s.feedback.LogFeedback(ctx, record); err != nil {
		s.log.Warnw("feedback logging failed", "session", record.SessionID, "slide", record.SlideID, "error", err)
	}
}

func (s *validationService) ListPending(ctx context.Context, sessionID uint) ([]PendingValidation, error) {
	raw, err := s.store.ScanPrefix(ctx, pendingPrefix(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending validations: %w", err)
	}
	out := make([]PendingValidation, 0, len(raw))
	for key, val := range raw {
		var entry PendingValidation
		if err := json.Unmarshal(val, &entry); err != nil {
			s.log.Warnw("skipping undecodable pending validation", "key", key, "error", err)
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *validationService) HasPending(ctx context.Context, sessionID uint) (bool, error) {
	entries, err := s.store.ScanPrefix(ctx, pendingPrefix(sessionID))
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

func (s *validationService) ClearPending(ctx context.Context, sessionID uint) error {
	_, err := s.store.DeletePrefix(ctx, pendingPrefix(sessionID))
	return err
}

func (s *validationService) SetAutoApprove(ctx context.Context, sessionID uint, on bool) error {
	if !on {
		return s.store.Delete(ctx, autoApproveKey(sessionID))
	}
	return s.store.Set(ctx, autoApproveKey(sessionID), []byte("1"), s.autoApproveTTL)
}

func (s *validationService) AutoApprove(ctx context.Context, sessionID uint) bool {
	_, ok, err := s.store.Get(ctx, autoApproveKey(sessionID))
	if err != nil {
		s.log.Warnw("auto-approve lookup failed, treating as off", "session", sessionID, "error", err)
		return false
	}
	return ok
}
