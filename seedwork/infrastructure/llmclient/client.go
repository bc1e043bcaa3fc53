// Package llmclient wraps an OpenAI-compatible chat/completions endpoint
// for the two LLM-backed components that share one policy: the
// chunker (C5) and the topic classifier (C7). Streaming goes through
// github.com/digitallysavvy/go-ai's
// provider/openai + ai.StreamText; the retry-with-backoff loop is
// reimplemented locally in the shape of digitallysavvy-go-ai's
// pkg/internal/retry (that package is internal to its module and not
// importable from here) and a circuit breaker sits in front of both the
// liveness probe and the streaming call so a flapping endpoint stops
// being hammered mid-outage.
package llmclient

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/digitallysavvy/go-ai/pkg/ai"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	"github.com/digitallysavvy/go-ai/pkg/providers/openai"
	"github.com/sony/gobreaker"

	"ingestpipe/seedwork/infrastructure/config"
)

// Client is the shared LLM client for C5 and C7.
type Client struct {
	cfg         config.LLMConfig
	httpClient  *http.Client
	llmProvider *openai.Provider
	breaker     *gobreaker.CircuitBreaker
}

// New builds a Client against cfg.BaseURL, treating it as an
// OpenAI-compatible endpoint (local Ollama/vLLM or the real API).
func New(cfg config.LLMConfig) *Client {
	p := openai.New(openai.Config{
		BaseURL: cfg.BaseURL,
	})

	cbSettings := gobreaker.Settings{
		Name:    "llm-client",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.ConnectTimeout + cfg.ReadTimeout,
		},
		llmProvider: p,
		breaker:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Liveness performs a quick check before committing to a streaming
// call: GET /models with a 5s connect / 10s read budget. A non-2xx
// response or any transport error is treated as "endpoint down".
func (c *Client) Liveness(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout+c.cfg.ReadTimeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build liveness request: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("liveness check returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

// HeartbeatFunc is invoked during a streaming call at a bounded
// cadence: once per >=20 output tokens. go-ai's StreamChunk only
// distinguishes ChunkTypeText/ToolCall/Usage/Finish/Error - it never
// surfaces a separate reasoning/thinking delta - so reasoningTokens is
// always 0 here; callers that want a reasoning-token heartbeat would
// need to parse the provider's raw SSE stream themselves.
type HeartbeatFunc func(outputTokens, reasoningTokens int)

// Stream runs prompt against the configured model, streaming the
// response, returning the accumulated content text. Retries any
// failure per cfg.MaxRetries with exponential backoff (1s -> 10s,
// factor 2.0), through the circuit breaker.
func (c *Client) Stream(ctx context.Context, prompt string, onHeartbeat HeartbeatFunc) (string, error) {
	var content string
	err := c.withRetry(ctx, func() error {
		model, err := c.llmProvider.LanguageModel(c.cfg.Model)
		if err != nil {
			return fmt.Errorf("resolve model: %w", err)
		}

		streamCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		var builder strings.Builder
		outputTokens := 0
		lastOutputBeat := 0

		_, execErr := c.breaker.Execute(func() (interface{}, error) {
			result, err := ai.StreamText(streamCtx, ai.StreamTextOptions{
				Model:  model,
				Prompt: prompt,
				OnChunk: func(chunk provider.StreamChunk) {
					if chunk.Type != provider.ChunkTypeText || chunk.Text == "" {
						return
					}
					builder.WriteString(chunk.Text)
					outputTokens += approxTokens(chunk.Text)
					if outputTokens-lastOutputBeat >= 20 && onHeartbeat != nil {
						lastOutputBeat = outputTokens
						onHeartbeat(outputTokens, 0)
					}
				},
			})
			if err != nil {
				return nil, err
			}
			if result.Err() != nil {
				return nil, result.Err()
			}
			return nil, nil
		})
		if execErr != nil {
			return execErr
		}
		content = builder.String()
		return nil
	})
	return content, err
}

// Generate runs prompt non-streaming, acceptable for C7 since topic
// assignment has no heartbeat cadence to drive, and returns the full
// response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := c.withRetry(ctx, func() error {
		model, err := c.llmProvider.LanguageModel(c.cfg.Model)
		if err != nil {
			return fmt.Errorf("resolve model: %w", err)
		}

		genCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		v, execErr := c.breaker.Execute(func() (interface{}, error) {
			result, err := ai.GenerateText(genCtx, ai.GenerateTextOptions{
				Model:  model,
				Prompt: prompt,
			})
			if err != nil {
				return nil, err
			}
			return result.Text(), nil
		})
		if execErr != nil {
			return execErr
		}
		text = v.(string)
		return nil
	})
	return text, err
}

// EmbedBatch runs C6's single-batch encode step against modelID,
// returning one []float32 vector per input in the same order. Retries
// share the same backoff/circuit-breaker policy as Stream/Generate.
func (c *Client) EmbedBatch(ctx context.Context, modelID string, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := c.withRetry(ctx, func() error {
		model, err := c.llmProvider.EmbeddingModel(modelID)
		if err != nil {
			return fmt.Errorf("resolve embedding model: %w", err)
		}

		embedCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		v, execErr := c.breaker.Execute(func() (interface{}, error) {
			result, err := ai.EmbedMany(embedCtx, ai.EmbedManyOptions{
				Model:  model,
				Inputs: texts,
			})
			if err != nil {
				return nil, err
			}
			return result.Embeddings, nil
		})
		if execErr != nil {
			return execErr
		}
		raw := v.([][]float64)
		vectors = make([][]float32, len(raw))
		for i, vec := range raw {
			vectors[i] = make([]float32, len(vec))
			for j, f := range vec {
				vectors[i][j] = float32(f)
			}
		}
		return nil
	})
	return vectors, err
}

func approxTokens(s string) int {
	return int(math.Ceil(float64(len(s)) / 4))
}

// withRetry retries fn up to cfg.MaxRetries times with exponential
// backoff (initial 1s, cap 10s, factor 2.0) and jitter, a Go
// equivalent of a tenacity-style retry policy. Every error fn returns
// is retried the same way: withRetry does not inspect the error, so
// 4xx responses and malformed replies are retried like transport
// failures.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := time.Second
	const maxDelay = 10 * time.Second

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt == c.cfg.MaxRetries {
			break
		}
		jitter := time.Duration(rand.Int63n(int64(delay) / 2))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay + jitter):
		}
		delay = time.Duration(math.Min(float64(delay)*2, float64(maxDelay)))
	}
	return fmt.Errorf("llm call failed after %d attempts: %w", c.cfg.MaxRetries+1, err)
}
