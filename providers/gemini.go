package providers

import (
	"context"
	"fmt"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

var geminiNativeModels = map[catalog.LogicalModel]string{
	catalog.Gemini1_5Pro:         "gemini-1.5-pro",
	catalog.Gemini1_5ProLatest:   "gemini-1.5-pro-latest",
	catalog.Gemini1_5Pro001:      "gemini-1.5-pro-001",
	catalog.Gemini1_5Pro002:      "gemini-1.5-pro-002",
	catalog.Gemini1_5Flash:       "gemini-1.5-flash",
	catalog.Gemini1_5FlashLatest: "gemini-1.5-flash-latest",
	catalog.Gemini1_5Flash001:    "gemini-1.5-flash-001",
	catalog.Gemini1_5Flash8b:     "gemini-1.5-flash-8b",
}

// geminiPart/geminiTurn/geminiRequest implement the turn-sequence archetype
// (spec.md §4.3): alternating user/model turns plus a dedicated
// systemInstruction field, grounded on original_source GeminiProvider.py.
type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiTurn struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiSystemInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiTurn             `json:"contents"`
	SystemInstruction *geminiSystemInstruction `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// GeminiAdapter talks to Google's Generative Language API.
type GeminiAdapter struct {
	http   *network.Client
	apiKey string
}

func NewGeminiAdapter(http *network.Client, apiKey string) *GeminiAdapter {
	return &GeminiAdapter{http: http, apiKey: apiKey}
}

func (a *GeminiAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderGemini }
func (a *GeminiAdapter) SupportsSAAS() bool             { return true }
func (a *GeminiAdapter) SupportsJSONMode() bool         { return true }
func (a *GeminiAdapter) SupportsImages() bool           { return false }
func (a *GeminiAdapter) Validate(ctx context.Context) bool { return a.apiKey != "" }

func (a *GeminiAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := geminiNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderGemini, "model not supported by gemini: "+logicalModel, nil)
	}
	return native, nil
}

// geminiURL builds the generateContent endpoint for nativeModelID. It never
// takes the API key: that travels as an x-goog-api-key header instead, so
// nothing in the URL string needs redacting.
func geminiURL(nativeModelID string) string {
	return fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, nativeModelID)
}

func (a *GeminiAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.GeminiCredentials](params.Credentials, schemas.ProviderGemini); ok {
		key = creds.GeminiAPIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderGemini, "no Gemini API key available", nil)
	}

	var sysInstr *geminiSystemInstruction
	var turns []geminiTurn
	for _, m := range params.Messages {
		if m.Role == schemas.RoleSystem {
			sysInstr = &geminiSystemInstruction{Parts: []geminiPart{{Text: m.PlainText()}}}
			continue
		}
		role := "user"
		if m.Role == schemas.RoleAssistant {
			role = "model"
		}
		turns = append(turns, geminiTurn{Role: role, Parts: []geminiPart{{Text: m.PlainText()}}})
	}

	genConfig := &geminiGenerationConfig{Temperature: params.Temperature, MaxOutputTokens: params.MaxGenLen}
	if params.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}

	reqBody := geminiRequest{Contents: turns, SystemInstruction: sysInstr, GenerationConfig: genConfig}
	url := geminiURL(params.NativeModelID)

	// The key travels in a header, never the URL: PostJSON embeds the URL
	// verbatim in both transport and HTTP-status errors (network/client.go),
	// and those errors get logged (spec.md Testable Property 6: credentials
	// never appear in logs).
	headers := map[string]string{"x-goog-api-key": key}

	var respBody geminiResponse
	if err := a.http.PostJSON(ctx, url, headers, reqBody, &respBody); err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderGemini, err)
	}
	if len(respBody.Candidates) == 0 || len(respBody.Candidates[0].Content.Parts) == 0 {
		return nil, schemas.NewProviderFailure(schemas.ProviderGemini, nil)
	}
	return &schemas.AdapterResult{
		ModelOutput:      respBody.Candidates[0].Content.Parts[0].Text,
		PromptTokens:     respBody.UsageMetadata.PromptTokenCount,
		GenerationTokens: respBody.UsageMetadata.CandidatesTokenCount,
	}, nil
}
