package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// ErrGenerationExhausted is returned when a generative step never produced
// output passing its shape validation within the retry budget. It aborts the
// whole generation run.
var ErrGenerationExhausted = errors.New("generation retries exhausted")

// Shape is the validation capability every generative step's expected output
// satisfies. Validate is called after JSON decoding and before the result is
// handed back to the caller.
type Shape interface {
	Validate() error
}

// Executor holds the tiered chat models shared by all generative steps.
type Executor struct {
	models map[Tier]model.BaseChatModel
	log    *zap.SugaredLogger
}

func NewExecutor(models map[Tier]model.BaseChatModel, log *zap.SugaredLogger) *Executor {
	return &Executor{models: models, log: log}
}

func (e *Executor) model(tier Tier) (model.BaseChatModel, error) {
	if m, ok := e.models[tier]; ok && m != nil {
		return m, nil
	}
	// Degrade to whichever tier exists rather than failing a run over a
	// missing tier binding.
	for _, m := range e.models {
		if m != nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no chat model configured for tier %q", tier)
}

// Run invokes the tier's chat model, decodes its output as JSON into T and
// validates it. Transport errors, decode errors and validation errors all
// count against the same retry budget: maxRetries additional attempts after
// the first. When the budget is spent the last cause is wrapped in
// ErrGenerationExhausted.
func Run[T Shape](ctx context.Context, e *Executor, tier Tier, msgs []*schema.Message, maxRetries int) (T, error) {
	var zero T
	cm, err := e.model(tier)
	if err != nil {
		return zero, err
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := cm.Generate(ctx, msgs)
		if err != nil {
			lastErr = err
			e.log.Warnw("chat model call failed", "tier", tier, "attempt", attempt+1, "error", err)
			continue
		}
		var parsed T
		if err := json.Unmarshal([]byte(ExtractJSON(out.Content)), &parsed); err != nil {
			lastErr = fmt.Errorf("decode model output: %w", err)
			e.log.Warnw("model output not decodable", "tier", tier, "attempt", attempt+1, "error", err)
			continue
		}
		if err := parsed.Validate(); err != nil {
			lastErr = fmt.Errorf("model output failed validation: %w", err)
			e.log.Warnw("model output failed validation", "tier", tier, "attempt", attempt+1, "error", err)
			continue
		}
		return parsed, nil
	}
	return zero, fmt.Errorf("%w after %d attempts: %v", ErrGenerationExhausted, maxRetries+1, lastErr)
}

// ExtractJSON strips markdown code fences and any prose around the outermost
// JSON value, which chat models like to add despite instructions.
func ExtractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end > start {
		return s[start : end+1]
	}
	return s
}
