// Package explain generates persona-voiced narrative explanations of search results
// with an OpenAI-compatible chat model. Explanations never affect ranking.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/sashabaranov/go-openai"

	"github.com/soundprediction/investorlens/pkg/config"
	"github.com/soundprediction/investorlens/pkg/types"
	"github.com/soundprediction/investorlens/pkg/utils"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultContextTopN = 10
)

// ErrDisabled is returned by New when explanations are turned off.
var ErrDisabled = errors.New("explanations are disabled")

// Explanation is a narrative plus short takeaways.
type Explanation struct {
	Narrative  string   `json:"narrative"`
	Highlights []string `json:"highlights"`
}

// Explainer narrates a search result in the voice of its persona. all may carry the
// results of every persona for cross-persona contrast; it can be nil.
type Explainer interface {
	Explain(ctx context.Context, result *types.SearchResult, all map[string]*types.SearchResult) (*Explanation, error)
}

// chatCompleter is the subset of *openai.Client the explainer uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIExplainer implements Explainer over the chat completions API.
type OpenAIExplainer struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	contextTopN int
	logger      *slog.Logger
}

// New creates an explainer from configuration. It returns ErrDisabled when
// cfg.Enabled is false.
func New(cfg config.ExplainConfig, logger *slog.Logger) (*OpenAIExplainer, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	var client *openai.Client
	if cfg.BaseURL != "" {
		if err := validateBaseURL(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		apiKey := cfg.APIKey
		// Some OpenAI-compatible services do not authenticate.
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = cfg.BaseURL
		if !hasAPIPath(cfg.BaseURL) {
			clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
		}
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		if cfg.APIKey == "" {
			return nil, errors.New("explain: api key is required without a base URL")
		}
		client = openai.NewClient(cfg.APIKey)
	}

	return newOpenAIExplainer(newRetryCompleter(client, DefaultRetryConfig()), cfg, logger), nil
}

func newOpenAIExplainer(client chatCompleter, cfg config.ExplainConfig, logger *slog.Logger) *OpenAIExplainer {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIExplainer{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		contextTopN: DefaultContextTopN,
		logger:      logger,
	}
}

// Explain asks the model for a narrative. Output that is not valid JSON is repaired
// first; when nothing can be recovered the raw text becomes the narrative.
func (e *OpenAIExplainer) Explain(ctx context.Context, result *types.SearchResult, all map[string]*types.SearchResult) (_ *Explanation, err error) {
	defer utils.RecoverAsError(&err)
	if result == nil {
		return nil, errors.New("explain: nil result")
	}
	system, user := buildMessages(result, all, e.contextTopN)

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("explain chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("explain: no choices returned")
	}
	e.logger.DebugContext(ctx, "explanation generated",
		"persona", result.Persona,
		"model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens)
	return parseExplanation(resp.Choices[0].Message.Content), nil
}

func parseExplanation(content string) *Explanation {
	content = strings.TrimSpace(content)
	var out Explanation
	if err := json.Unmarshal([]byte(content), &out); err == nil && out.Narrative != "" {
		return normalize(&out)
	}
	if repaired, err := jsonrepair.JSONRepair(content); err == nil {
		out = Explanation{}
		if err := json.Unmarshal([]byte(repaired), &out); err == nil && out.Narrative != "" {
			return normalize(&out)
		}
	}
	return &Explanation{Narrative: content, Highlights: []string{}}
}

func normalize(e *Explanation) *Explanation {
	if e.Highlights == nil {
		e.Highlights = []string{}
	}
	return e
}

// validateBaseURL requires an http or https URL.
func validateBaseURL(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid baseURL format: %w", err)
	}
	if parsed.Scheme == "" {
		return errors.New("baseURL must include scheme (http:// or https://)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("baseURL must use http:// or https:// scheme")
	}
	return nil
}

func hasAPIPath(baseURL string) bool {
	trimmed := strings.TrimRight(baseURL, "/")
	return strings.HasSuffix(trimmed, "/v1") || strings.HasSuffix(trimmed, "/api")
}
