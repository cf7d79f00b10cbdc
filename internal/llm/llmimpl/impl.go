package llmimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/llm"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// OpenAIImpl talks to an OpenAI-compatible chat completions endpoint.
type OpenAIImpl struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  logger.Logger
}

func New(opts Opts) *OpenAIImpl {
	return NewClient(
		opts.Config.OpenAI.APIKey,
		opts.Config.OpenAI.BaseURL,
		opts.Config.OpenAI.Model,
		opts.Config.OpenAI.RequestTimeout,
		opts.Logger,
	)
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration, log logger.Logger) *OpenAIImpl {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIImpl{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  log.WithComponent("OpenAIClient"),
	}
}

var _ llm.Client = (*OpenAIImpl)(nil)

func (o *OpenAIImpl) Model() string {
	return o.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (o *OpenAIImpl) ChatComplete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: 0.1,
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.Schema,
			},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	o.logger.Debug("Chat completion request starting", "model", o.model)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn("Chat completion API error", "status", resp.StatusCode, "body", string(respBody))
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	choice := parsed.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: model refused: %s", llm.ErrEmptyResponse, choice.Message.Refusal)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, llm.ErrEmptyResponse
	}
	if choice.FinishReason == "length" {
		o.logger.Warn("Chat completion truncated due to max tokens", "model", parsed.Model)
	}

	model := parsed.Model
	if model == "" {
		model = o.model
	}

	o.logger.Debug("Chat completion response", "model", model, "content_length", len(choice.Message.Content))

	return &llm.ChatResponse{
		Content: choice.Message.Content,
		Model:   model,
	}, nil
}

func classifyStatus(status int, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	var kind error
	switch {
	case status == http.StatusTooManyRequests && envelope.Error.Code == "insufficient_quota":
		kind = llm.ErrQuotaExceeded
	case status == http.StatusTooManyRequests:
		kind = llm.ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = llm.ErrUnauthorized
	case status >= 500:
		kind = llm.ErrServer
	default:
		kind = llm.ErrBadRequest
	}

	msg := envelope.Error.Message
	if msg == "" {
		msg = string(body)
	}
	return &llm.APIError{StatusCode: status, Body: msg, Err: kind}
}
