package review

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deckforge/internal/llm"
	"deckforge/internal/models"
	"deckforge/internal/retrieval"
)

var slideHeaderRe = regexp.MustCompile(`--- Slide (\d+)`)

func slideNumbersIn(user string) []int {
	var nums []int
	for _, m := range slideHeaderRe.FindAllStringSubmatch(user, -1) {
		n, _ := strconv.Atoi(m[1])
		nums = append(nums, n)
	}
	return nums
}

// routedModel dispatches on the agent's system prompt, so the three
// generative agents can share one mock regardless of call interleaving.
type routedModel struct {
	style     func(nums []int) (string, error)
	fact      func(nums []int) (string, error)
	narrative func() (string, error)
}

func (m *routedModel) Generate(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	system, user := msgs[0].Content, msgs[1].Content
	var out string
	var err error
	switch {
	case strings.Contains(system, "style reviewer") && m.style != nil:
		out, err = m.style(slideNumbersIn(user))
	case strings.Contains(system, "fact checker") && m.fact != nil:
		out, err = m.fact(slideNumbersIn(user))
	case strings.Contains(system, "narrative arc") && m.narrative != nil:
		out, err = m.narrative()
	default:
		return nil, errors.New("unexpected agent prompt")
	}
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(out, nil), nil
}

func (m *routedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not streamed")
}

func styleJSON(nums []int, score float64, fixedBodies map[int]string) (string, error) {
	var batch llm.StyleBatchShape
	for _, n := range nums {
		batch.Results = append(batch.Results, llm.StyleResultShape{
			SlideNumber: n,
			Score:       score,
			FixedBody:   fixedBodies[n],
		})
	}
	raw, err := json.Marshal(batch)
	return string(raw), err
}

func factJSON(nums []int, score float64, claims map[int][]llm.ClaimShape) (string, error) {
	var batch llm.FactCheckBatchShape
	for _, n := range nums {
		batch.Results = append(batch.Results, llm.FactCheckResultShape{
			SlideNumber: n,
			Score:       score,
			Claims:      claims[n],
		})
	}
	raw, err := json.Marshal(batch)
	return string(raw), err
}

func narrativeJSON(score float64) (string, error) {
	raw, err := json.Marshal(llm.NarrativeShape{Score: score, Summary: "coherent"})
	return string(raw), err
}

func newTestPipeline(m model.BaseChatModel, retriever retrieval.Retriever) *Pipeline {
	executor := llm.NewExecutor(map[llm.Tier]model.BaseChatModel{llm.TierFast: m, llm.TierSmart: m}, zap.NewNop().Sugar())
	return NewPipeline(executor, retriever, ThresholdConfig{}, Options{MaxRetries: 1}, zap.NewNop().Sugar())
}

func testDeck() []models.Slide {
	return []models.Slide{
		{SlideNumber: 1, Title: "Intro", Body: "- opening point", SlideType: models.SlideContent},
		{SlideNumber: 2, Title: "Revenue", Body: "Revenue grew 40% in 2025.", SlideType: models.SlideTable},
		{SlideNumber: 3, Title: "Approach", Body: "- step one", SlideType: models.SlideContent},
		{SlideNumber: 4, Title: "Next steps", Body: "- follow up", SlideType: models.SlideCallToAction},
	}
}

func TestPipelineAggregatesAllAgents(t *testing.T) {
	m := &routedModel{
		style: func(nums []int) (string, error) {
			return styleJSON(nums, 0.9, map[int]string{1: "- tighter opening point"})
		},
		fact: func(nums []int) (string, error) {
			return factJSON(nums, 0.8, map[int][]llm.ClaimShape{
				2: {{Text: "Revenue grew 40% in 2025.", Verdict: llm.ClaimContradicted, Correction: "Revenue grew 25% in 2025."}},
			})
		},
		narrative: func() (string, error) { return narrativeJSON(0.8) },
	}
	p := newTestPipeline(m, retrieval.Empty{})

	report := p.Run(context.Background(), 1, "", testDeck())

	require.NotNil(t, report.Style)
	require.NotNil(t, report.FactCheck)
	require.NotNil(t, report.Narrative)
	assert.True(t, report.Passed)

	assert.InDelta(t, 0.9, report.Style.Average, 1e-9)
	assert.Len(t, report.FactCheck.Scores, 1, "only the data-bearing slide is fact-checked")
	assert.Equal(t, 2, report.FactCheck.Scores[0].SlideNumber)

	require.Len(t, report.Fixes, 2)
	assert.Equal(t, AgentStyle, report.Fixes[0].Agent, "style fixes come first")
	assert.Equal(t, FixReplaceBody, report.Fixes[0].Mode)
	assert.Equal(t, AgentFactCheck, report.Fixes[1].Agent)
	assert.Equal(t, FixReplaceSpan, report.Fixes[1].Mode)
	assert.Equal(t, "Revenue grew 25% in 2025.", report.Fixes[1].Fixed)
}

func TestFactCheckNilWithoutDataBearingSlides(t *testing.T) {
	m := &routedModel{
		style:     func(nums []int) (string, error) { return styleJSON(nums, 0.9, nil) },
		narrative: func() (string, error) { return narrativeJSON(0.9) },
	}
	p := newTestPipeline(m, retrieval.Empty{})

	slides := []models.Slide{
		{SlideNumber: 1, Title: "A", Body: "- a", SlideType: models.SlideContent},
		{SlideNumber: 2, Title: "B", Body: "- b", SlideType: models.SlideContent},
		{SlideNumber: 3, Title: "C", Body: "- c", SlideType: models.SlideContent},
		{SlideNumber: 4, Title: "D", Body: "- d", SlideType: models.SlideCallToAction},
	}
	report := p.Run(context.Background(), 1, "", slides)

	assert.Nil(t, report.FactCheck)
	assert.True(t, report.Passed)
}

func TestNarrativeSkippedOnShortDecks(t *testing.T) {
	m := &routedModel{
		style: func(nums []int) (string, error) { return styleJSON(nums, 0.9, nil) },
	}
	p := newTestPipeline(m, retrieval.Empty{})

	slides := testDeck()[:3]
	slides[1].SlideType = models.SlideContent // keep the fact checker out too
	report := p.Run(context.Background(), 1, "", slides)

	assert.Nil(t, report.Narrative, "three slides have no narrative arc to review")
	assert.True(t, report.Passed)
}

func TestFailedAgentDegradesToNeutralPass(t *testing.T) {
	m := &routedModel{
		style: func(nums []int) (string, error) { return "", errors.New("model unavailable") },
		fact: func(nums []int) (string, error) {
			return factJSON(nums, 0.9, nil)
		},
		narrative: func() (string, error) { return "", errors.New("model unavailable") },
	}
	p := newTestPipeline(m, retrieval.Empty{})

	report := p.Run(context.Background(), 1, "", testDeck())

	require.NotNil(t, report.Style)
	assert.True(t, report.Style.Degraded)
	assert.True(t, report.Style.Passed, "an unavailable reviewer assumes pass")
	assert.InDelta(t, report.Style.Threshold, report.Style.Average, 1e-9)

	require.NotNil(t, report.Narrative)
	assert.True(t, report.Narrative.Degraded)

	assert.True(t, report.Passed, "degraded agents never fail the review")
	assert.Empty(t, report.Fixes)
}

func TestLowScoresFailTheReport(t *testing.T) {
	m := &routedModel{
		style:     func(nums []int) (string, error) { return styleJSON(nums, 0.4, nil) },
		fact:      func(nums []int) (string, error) { return factJSON(nums, 0.9, nil) },
		narrative: func() (string, error) { return narrativeJSON(0.9) },
	}
	p := newTestPipeline(m, retrieval.Empty{})

	report := p.Run(context.Background(), 1, "", testDeck())

	assert.False(t, report.Passed)
	assert.False(t, report.SlidePassed(1))
	assert.False(t, report.Style.Degraded)
}

func TestArchetypeThresholdLowersTheBar(t *testing.T) {
	m := &routedModel{
		style:     func(nums []int) (string, error) { return styleJSON(nums, 0.55, nil) },
		fact:      func(nums []int) (string, error) { return factJSON(nums, 0.9, nil) },
		narrative: func() (string, error) { return narrativeJSON(0.9) },
	}
	executor := llm.NewExecutor(map[llm.Tier]model.BaseChatModel{llm.TierFast: m, llm.TierSmart: m}, zap.NewNop().Sugar())
	cfg := ThresholdConfig{
		Default:    DefaultThresholds(),
		Archetypes: map[string]Thresholds{"brainstorm": {Style: 0.5}},
	}
	p := NewPipeline(executor, retrieval.Empty{}, cfg, Options{MaxRetries: 1}, zap.NewNop().Sugar())

	report := p.Run(context.Background(), 1, "brainstorm", testDeck())
	assert.True(t, report.Passed)

	report = p.Run(context.Background(), 1, "", testDeck())
	assert.False(t, report.Passed, "the default style threshold still applies without the archetype")
}

type recordingRetriever struct {
	queries []string
}

func (r *recordingRetriever) RetrieveContext(_ context.Context, _ uint, query string, _ int) (string, error) {
	r.queries = append(r.queries, query)
	return "grounding for " + query, nil
}

func TestFactCheckRetrievesGroundingPerBatch(t *testing.T) {
	m := &routedModel{
		style:     func(nums []int) (string, error) { return styleJSON(nums, 0.9, nil) },
		fact:      func(nums []int) (string, error) { return factJSON(nums, 0.9, nil) },
		narrative: func() (string, error) { return narrativeJSON(0.9) },
	}
	retriever := &recordingRetriever{}
	p := newTestPipeline(m, retriever)

	slides := testDeck()
	slides[0].SlideType = models.SlideChart // two data slides now, batch size 2
	p.Run(context.Background(), 1, "", slides)

	require.Len(t, retriever.queries, 1, "one grounding call per fact-check batch")
	assert.Contains(t, retriever.queries[0], "Intro")
	assert.Contains(t, retriever.queries[0], "Revenue")
}
