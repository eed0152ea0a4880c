package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deckforge/internal/ephemeral"
	"deckforge/internal/models"
	"deckforge/internal/tests/mocks"
)

type feedbackRecorder struct {
	mu      sync.Mutex
	records []FeedbackRecord
}

func (f *feedbackRecorder) LogFeedback(_ context.Context, record FeedbackRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *feedbackRecorder) all() []FeedbackRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FeedbackRecord(nil), f.records...)
}

func newGateFixture(store ephemeral.Store, slideRepo *mocks.SlideRepositoryMock) (ValidationService, *feedbackRecorder) {
	feedback := &feedbackRecorder{}
	svc := NewValidationService(store, slideRepo, feedback, zap.NewNop().Sugar(), 30*time.Minute, 24*time.Hour)
	return svc, feedback
}

func gateSlide(id uint, number int) models.Slide {
	return models.Slide{
		ID:           id,
		SlideNumber:  number,
		Title:        "Original title",
		Body:         "- original point one\n- original point two\n- original point three",
		SpeakerNotes: "original notes",
		SlideType:    models.SlideContent,
	}
}

func strPtr(s string) *string { return &s }

func TestEnqueueAndAccept(t *testing.T) {
	svc, feedback := newGateFixture(ephemeral.NewMemoryStore(), &mocks.SlideRepositoryMock{})
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(3, 1), true))

	has, err := svc.HasPending(ctx, 7)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, svc.Respond(ctx, 7, 3, ActionAccept, nil))
	assert.Empty(t, feedback.all(), "accept produces no feedback")

	has, _ = svc.HasPending(ctx, 7)
	assert.False(t, has)
}

func TestRespondTwiceReturnsNothingPending(t *testing.T) {
	svc, _ := newGateFixture(ephemeral.NewMemoryStore(), &mocks.SlideRepositoryMock{})
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(3, 1), false))
	require.NoError(t, svc.Respond(ctx, 7, 3, ActionAccept, nil))

	err := svc.Respond(ctx, 7, 3, ActionAccept, nil)
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestRespondToUnknownSlide(t *testing.T) {
	svc, _ := newGateFixture(ephemeral.NewMemoryStore(), &mocks.SlideRepositoryMock{})
	err := svc.Respond(context.Background(), 7, 99, ActionAccept, nil)
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestAutoApproveShortCircuitsPassedSlides(t *testing.T) {
	svc, _ := newGateFixture(ephemeral.NewMemoryStore(), &mocks.SlideRepositoryMock{})
	ctx := context.Background()

	require.NoError(t, svc.SetAutoApprove(ctx, 7, true))
	assert.True(t, svc.AutoApprove(ctx, 7))

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(1, 1), true))
	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(2, 2), false))

	pending, err := svc.ListPending(ctx, 7)
	require.NoError(t, err)
	require.Len(t, pending, 1, "auto-approve only skips slides that passed review")
	assert.Equal(t, uint(2), pending[0].SlideID)
}

func TestEditAppliesDeltasAndClassifies(t *testing.T) {
	slideRepo := &mocks.SlideRepositoryMock{}
	var gotUpdates map[string]interface{}
	slideRepo.UpdateFieldsFunc = func(_ context.Context, id uint, updates map[string]interface{}) error {
		gotUpdates = updates
		return nil
	}
	svc, feedback := newGateFixture(ephemeral.NewMemoryStore(), slideRepo)
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(3, 1), false))
	require.NoError(t, svc.Respond(ctx, 7, 3, ActionEdit, &SlideEdits{Title: strPtr("Sharper title")}))

	assert.Equal(t, map[string]interface{}{"title": "Sharper title"}, gotUpdates)

	records := feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, ActionEdit, records[0].Action)
	assert.Equal(t, EditClassStyle, records[0].Classification)
	assert.Equal(t, "Original title", records[0].OriginalTitle)
	assert.Equal(t, "Sharper title", records[0].FixedTitle)
}

func TestEditClassification(t *testing.T) {
	entry := PendingValidation{
		Title:        "Original title",
		Body:         "- original point one\n- original point two\n- original point three",
		SpeakerNotes: "original notes",
	}

	cases := []struct {
		name  string
		edits SlideEdits
		want  string
	}{
		{"title change wins", SlideEdits{Title: strPtr("New"), Body: strPtr("- x")}, EditClassStyle},
		{"body shrunk 30 percent", SlideEdits{Body: strPtr("- original point one")}, EditClassDensity},
		{"body reworded same length", SlideEdits{Body: strPtr("- reworded point one\n- reworded point two\n- reworded point thr")}, EditClassStyle},
		{"notes only", SlideEdits{SpeakerNotes: strPtr("new notes")}, EditClassTone},
		{"unchanged title falls through", SlideEdits{Title: strPtr("Original title"), SpeakerNotes: strPtr("x")}, EditClassTone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyEdit(entry, &tc.edits))
		})
	}
}

func TestRejectDeletesAndLogsFeedback(t *testing.T) {
	slideRepo := &mocks.SlideRepositoryMock{}
	var deletedPresentation, deletedSlide uint
	slideRepo.DeleteAndRenumberFunc = func(_ context.Context, presentationID, slideID uint) error {
		deletedPresentation, deletedSlide = presentationID, slideID
		return nil
	}
	svc, feedback := newGateFixture(ephemeral.NewMemoryStore(), slideRepo)
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(3, 2), false))
	require.NoError(t, svc.Respond(ctx, 7, 3, ActionReject, nil))

	assert.Equal(t, uint(7), deletedPresentation)
	assert.Equal(t, uint(3), deletedSlide)

	records := feedback.all()
	require.Len(t, records, 1)
	assert.Equal(t, ActionReject, records[0].Action)
}

func TestPendingEntryExpires(t *testing.T) {
	now := time.Now()
	store := ephemeral.NewMemoryStore().WithClock(func() time.Time { return now })
	svc, _ := newGateFixture(store, &mocks.SlideRepositoryMock{})
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(3, 1), false))

	now = now.Add(31 * time.Minute)
	err := svc.Respond(ctx, 7, 3, ActionAccept, nil)
	assert.ErrorIs(t, err, ErrNothingPending, "an unanswered prompt silently lapses")

	has, _ := svc.HasPending(ctx, 7)
	assert.False(t, has)
}

func TestClearPending(t *testing.T) {
	svc, _ := newGateFixture(ephemeral.NewMemoryStore(), &mocks.SlideRepositoryMock{})
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(1, 1), false))
	require.NoError(t, svc.Enqueue(ctx, 7, gateSlide(2, 2), false))
	require.NoError(t, svc.Enqueue(ctx, 8, gateSlide(9, 1), false))

	require.NoError(t, svc.ClearPending(ctx, 7))

	has, _ := svc.HasPending(ctx, 7)
	assert.False(t, has)
	has, _ = svc.HasPending(ctx, 8)
	assert.True(t, has, "other sessions keep their entries")
}
