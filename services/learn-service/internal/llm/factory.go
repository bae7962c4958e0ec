package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/metrics"
	"go.uber.org/zap"
)

// NewProvider builds the provider named in cfg. It returns nil, nil when no provider is configured.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model)
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

// instrumented bounds every call with a timeout and records the outcome
type instrumented struct {
	next    Provider
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// WithInstrumentation wraps p so each call is bounded by timeout, counted and logged.
// A zero timeout leaves the caller's deadline alone.
func WithInstrumentation(p Provider, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) Provider {
	return &instrumented{next: p, timeout: timeout, metrics: m, logger: logger}
}

func (i *instrumented) Generate(ctx context.Context, req Request) (*Response, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := i.next.Generate(ctx, req)
	i.metrics.LLMRequests.WithLabelValues(i.next.Name(), metrics.Result(err)).Inc()

	if err != nil {
		i.logger.Warn("LLM request failed",
			zap.String("provider", i.next.Name()),
			zap.String("model", i.next.ModelID()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	i.logger.Debug("LLM request completed",
		zap.String("provider", i.next.Name()),
		zap.String("model", resp.Model),
		zap.Int("inputTokens", resp.InputTokens),
		zap.Int("outputTokens", resp.OutputTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) ModelID() string { return i.next.ModelID() }
