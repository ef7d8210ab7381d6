package providers

import (
	"context"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const (
	anthropicBaseURL     = "https://api.anthropic.com/v1"
	anthropicAPIVersion  = "2023-06-01"
)

var anthropicNativeModels = map[catalog.LogicalModel]string{
	catalog.Claude3_5Sonnet20240620: "claude-3-5-sonnet-20240620",
	catalog.Claude3_5Sonnet20241022: "claude-3-5-sonnet-20241022",
	catalog.Claude3Haiku20240307:    "claude-3-haiku-20240307",
	catalog.Claude3_5Sonnet:         "claude-3-5-sonnet-20241022",
	catalog.Claude3Haiku:            "claude-3-haiku-20240307",
	catalog.Claude3Sonnet:           "claude-3-sonnet-20240229",
}

type anthropicContentBlock struct {
	Type   string              `json:"type"`
	Text   string              `json:"text,omitempty"`
	Source *anthropicImgSource `json:"source,omitempty"`
}

type anthropicImgSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// AnthropicAdapter talks to Anthropic's native Messages API, which is not
// OpenAI-compatible: system prompt is a dedicated top-level field, and
// max_tokens is required rather than optional (grounded on
// sammcj-bifrost/providers/anthropic.go's request shape and
// original_source's use of the same API from BedrockProvider.py's Anthropic
// branch).
type AnthropicAdapter struct {
	http   *network.Client
	apiKey string
}

func NewAnthropicAdapter(http *network.Client, apiKey string) *AnthropicAdapter {
	return &AnthropicAdapter{http: http, apiKey: apiKey}
}

func (a *AnthropicAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderAnthropic }
func (a *AnthropicAdapter) SupportsSAAS() bool             { return true }
func (a *AnthropicAdapter) SupportsJSONMode() bool         { return false }
func (a *AnthropicAdapter) SupportsImages() bool           { return true }
func (a *AnthropicAdapter) Validate(ctx context.Context) bool { return a.apiKey != "" }

func (a *AnthropicAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := anthropicNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderAnthropic, "model not supported by anthropic: "+logicalModel, nil)
	}
	return native, nil
}

func (a *AnthropicAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.AnthropicCredentials](params.Credentials, schemas.ProviderAnthropic); ok {
		key = creds.AnthropicAPIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderAnthropic, "no Anthropic API key available", nil)
	}
	if params.JSONMode {
		return nil, schemas.NewProvider(schemas.ErrUnsupportedOption, schemas.ProviderAnthropic, "anthropic does not support jsonMode", nil)
	}
	var system string
	var messages []anthropicMessage
	for _, m := range params.Messages {
		if m.Role == schemas.RoleSystem {
			system = m.PlainText()
			continue
		}
		messages = append(messages, anthropicMessage{
			Role:    string(m.Role),
			Content: toAnthropicBlocks(m),
		})
	}

	maxTokens := 4096
	if params.MaxGenLen != nil {
		maxTokens = *params.MaxGenLen
	}

	reqBody := anthropicRequest{
		Model:       params.NativeModelID,
		System:      system,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: params.Temperature,
	}

	headers := map[string]string{
		"x-api-key":         key,
		"anthropic-version": anthropicAPIVersion,
	}

	var respBody anthropicResponse
	if err := a.http.PostJSON(ctx, anthropicBaseURL+"/messages", headers, reqBody, &respBody); err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderAnthropic, err)
	}
	if len(respBody.Content) == 0 {
		return nil, schemas.NewProviderFailure(schemas.ProviderAnthropic, nil)
	}
	return &schemas.AdapterResult{
		ModelOutput:      respBody.Content[0].Text,
		PromptTokens:     respBody.Usage.InputTokens,
		GenerationTokens: respBody.Usage.OutputTokens,
	}, nil
}

func toAnthropicBlocks(m schemas.Message) []anthropicContentBlock {
	if m.Text != nil {
		return []anthropicContentBlock{{Type: "text", Text: *m.Text}}
	}
	blocks := make([]anthropicContentBlock, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch p.Type {
		case schemas.ContentPartText:
			blocks = append(blocks, anthropicContentBlock{Type: "text", Text: p.Text})
		case schemas.ContentPartImage:
			if p.Image != nil {
				blocks = append(blocks, anthropicContentBlock{
					Type:   "image",
					Source: &anthropicImgSource{Type: "base64", MediaType: p.Image.MediaType, Data: p.Image.Data},
				})
			}
		}
	}
	return blocks
}
