// Package openai implements the generator.Client interface on the OpenAI
// chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/phrasebook/internal/entry"
)

const systemPrompt = `You are a dictionary compiler. Given a word or phrase, return ONLY a JSON object with these fields, each an array of strings (empty when nothing applies):
- "types": parts of speech of the phrase
- "meanings": concise definitions, most common first
- "synonyms": words or phrases with the same meaning
- "translations": translations into Japanese
- "examples": short example sentences using the phrase

STRICT OUTPUT: No text outside the JSON object. Do not invent meanings for gibberish; return empty arrays instead.`

// Client calls the OpenAI API to synthesize dictionary entries.
type Client struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a new Client.
func NewClient(apiKey, model string) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		model:      model,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (client *Client) SetBaseURL(url string) {
	client.httpClient.SetBaseURL(url)
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// generatedEntry is the JSON shape the model is prompted to return.
type generatedEntry struct {
	Types        []string `json:"types"`
	Meanings     []string `json:"meanings"`
	Synonyms     []string `json:"synonyms"`
	Translations []string `json:"translations"`
	Examples     []string `json:"examples"`
}

// GenerateEntry implements the generator.Client interface. A failed attempt
// is retried exactly once; after the second failure the last error is
// returned. Two attempts is a hard cap.
func (client *Client) GenerateEntry(ctx context.Context, phrase string) (*entry.Entry, error) {
	var result *entry.Entry
	if err := retry.Do(
		func() error {
			generated, err := client.generateEntry(ctx, phrase)
			if err != nil {
				return err
			}
			result = generated
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, err
	}
	return result, nil
}

func (client *Client) generateEntry(ctx context.Context, phrase string) (*entry.Entry, error) {
	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.3,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: phrase},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return nil, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"phrase", phrase,
		"response", responseBody,
	)

	var decoded generatedEntry
	if err := json.NewDecoder(strings.NewReader(content)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}

	generated := entry.New(phrase)
	generated.Types = decoded.Types
	generated.Meanings = decoded.Meanings
	generated.Synonyms = decoded.Synonyms
	generated.Translations = decoded.Translations
	generated.Examples = decoded.Examples
	return &generated, nil
}
