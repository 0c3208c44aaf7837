package openai_provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohammad-safakhou/wayfarer/config"
	"github.com/mohammad-safakhou/wayfarer/internal/failures"
	"github.com/mohammad-safakhou/wayfarer/internal/helpers"
	"github.com/mohammad-safakhou/wayfarer/provider"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

// client implements provider.Provider on any OpenAI compatible endpoint
// (DeepSeek by default).
type client struct {
	api        openai.Client
	configured bool
	model      string
	log        zerolog.Logger
}

// NewOpenAIClient creates a new chat-completion client. Retries are disabled:
// a failed call is reported to the caller as-is.
func NewOpenAIClient(cfg config.LLMConfig, log zerolog.Logger) provider.Provider {
	cfg = cfg.Normalize()
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	return &client{
		api:        openai.NewClient(opts...),
		configured: cfg.APIKey != "",
		model:      cfg.Model,
		log:        log.With().Str("provider", "openai").Str("model", cfg.Model).Logger(),
	}
}

func (c *client) Complete(ctx context.Context, in provider.Completion) (string, error) {
	if !c.configured {
		return "", failures.New(failures.UpstreamAuth, "LLM API key not configured")
	}
	if in.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(in.System),
			openai.UserMessage(in.User),
		},
	}
	if in.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(in.MaxTokens))
	}
	if in.Temperature > 0 {
		params.Temperature = openai.Float(in.Temperature)
	}

	c.log.Debug().Int("max_tokens", in.MaxTokens).Float64("temperature", in.Temperature).Dur("timeout", in.Timeout).Msg("sending chat completion")
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", failures.Wrap(failures.UpstreamTimeout, "chat completion timed out", err)
		}
		return "", failures.Wrap(failures.Classify(err), "chat completion failed", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", failures.New(failures.MalformedResponse, "no choices in response")
	}
	content := helpers.CleanCompletion(resp.Choices[0].Message.Content)
	if content == "" {
		return "", failures.New(failures.MalformedResponse, fmt.Sprintf("empty completion (finish reason %q)", resp.Choices[0].FinishReason))
	}
	return content, nil
}
