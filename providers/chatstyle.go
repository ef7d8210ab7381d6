// Package providers implements one schemas.Provider adapter per back-end.
// Prompt assembly follows one of three archetypes (spec.md §4.3): this file
// implements the chat-style archetype shared by OpenAI, Groq, Together and
// MistralAI's chat and Codestral endpoints (Anthropic builds its own
// Messages API body in anthropic.go) — an array of {role, content}
// turns submitted to an OpenAI-compatible (or near-compatible) /chat/completions
// endpoint, grounded on sammcj-bifrost's providers/openai.go request shape
// and original_source's OpenaiProvider.py / GroqProvider.py / TogetherProvider.py.
package providers

import (
	"context"
	"fmt"

	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

// chatMessage is the wire shape of one turn in an OpenAI-compatible
// /chat/completions request body.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the common request body shared by every
// chat-style back-end this module talks to. ResponseFormat is only sent
// when the adapter supports JSON mode and the caller asked for it.
type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float64       `json:"temperature,omitempty"`
	MaxTokens      *int           `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// buildChatMessages flattens the canonical message list into the
// OpenAI-compatible wire shape. Multimodal parts are reduced to their text
// component; none of the chat-style back-ends wired into this gateway
// accept images (spec.md §4.3: image support is restricted to specific
// Bedrock/Anthropic models, handled by their own archetypes).
func buildChatMessages(messages []schemas.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.PlainText()})
	}
	return out
}

// doChatCompletion POSTs a chat-style request to baseURL+path with the given
// auth header and returns the extracted AdapterResult. Shared by every
// OpenAI-compatible adapter; only the endpoint, headers and JSON-mode
// capability differ between them.
func doChatCompletion(ctx context.Context, http *network.Client, url string, headers map[string]string, params schemas.AdapterParams, supportsJSON bool) (*schemas.AdapterResult, error) {
	reqBody := chatCompletionRequest{
		Model:       params.NativeModelID,
		Messages:    buildChatMessages(params.Messages),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxGenLen,
	}
	if supportsJSON && params.JSONMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var respBody chatCompletionResponse
	if err := http.PostJSON(ctx, url, headers, reqBody, &respBody); err != nil {
		return nil, err
	}
	if len(respBody.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}
	return &schemas.AdapterResult{
		ModelOutput:      respBody.Choices[0].Message.Content,
		PromptTokens:     respBody.Usage.PromptTokens,
		GenerationTokens: respBody.Usage.CompletionTokens,
	}, nil
}
