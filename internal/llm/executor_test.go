package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type scriptedModel struct {
	responses []string
	errs      []error
	calls     int
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return schema.AssistantMessage(m.responses[i], nil), nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not streamed")
}

func newTestExecutor(m model.BaseChatModel) *Executor {
	return NewExecutor(map[Tier]model.BaseChatModel{TierFast: m, TierSmart: m}, zap.NewNop().Sugar())
}

func TestRunRetriesUntilValid(t *testing.T) {
	m := &scriptedModel{responses: []string{
		"not json at all",
		`{"verdict":"nonsense"}`,
		`{"verdict":"ok"}`,
	}}
	out, err := Run[DensityReviewShape](context.Background(), newTestExecutor(m), TierFast, nil, 2)

	assert.NoError(t, err)
	assert.Equal(t, DensityVerdictOK, out.Verdict)
	assert.Equal(t, 3, m.calls)
}

func TestRunExhaustsRetryBudget(t *testing.T) {
	m := &scriptedModel{responses: []string{"still not json"}}
	_, err := Run[DensityReviewShape](context.Background(), newTestExecutor(m), TierFast, nil, 2)

	assert.ErrorIs(t, err, ErrGenerationExhausted)
	assert.Equal(t, 3, m.calls)
}

func TestRunCountsTransportErrorsAgainstBudget(t *testing.T) {
	m := &scriptedModel{
		errs:      []error{errors.New("connection reset"), nil},
		responses: []string{`{"verdict":"ok"}`, `{"verdict":"ok"}`},
	}
	out, err := Run[DensityReviewShape](context.Background(), newTestExecutor(m), TierFast, nil, 1)

	assert.NoError(t, err)
	assert.Equal(t, DensityVerdictOK, out.Verdict)
	assert.Equal(t, 2, m.calls)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &scriptedModel{responses: []string{`{"verdict":"ok"}`}}
	_, err := Run[DensityReviewShape](ctx, newTestExecutor(m), TierFast, nil, 2)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.calls)
}

func TestRunFallsBackToAnyConfiguredTier(t *testing.T) {
	m := &scriptedModel{responses: []string{`{"verdict":"ok"}`}}
	e := NewExecutor(map[Tier]model.BaseChatModel{TierFast: m}, zap.NewNop().Sugar())

	out, err := Run[DensityReviewShape](context.Background(), e, TierSmart, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, DensityVerdictOK, out.Verdict)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Sure! Here it is: {"a":1} hope that helps`, `{"a":1}`},
		{"array", `the list: [1,2,3].`, `[1,2,3]`},
		{"nothing to find", "no structure here", "no structure here"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSON(tc.in))
		})
	}
}
