package providers

import (
	"context"
	"fmt"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const openaiBaseURL = "https://api.openai.com/v1"

// openaiNativeModels maps the closed LogicalModel set to OpenAI's own model
// identifiers, grounded on original_source OpenaiProvider.py's static map.
var openaiNativeModels = map[catalog.LogicalModel]string{
	catalog.GPT4:              "gpt-4",
	catalog.GPT3_5Turbo:       "gpt-3.5-turbo",
	catalog.GPT4o:             "gpt-4o",
	catalog.GPT4Turbo:         "gpt-4-turbo",
	catalog.GPT3_5Turbo0125:   "gpt-3.5-turbo-0125",
	catalog.GPT4oMini:         "gpt-4o-mini",
	catalog.GPT4oMini20240718: "gpt-4o-mini-2024-07-18",
	catalog.GPT4o20240806:     "gpt-4o-2024-08-06",
	catalog.GPT4o20240513:     "gpt-4o-2024-05-13",
}

// OpenAIAdapter talks to OpenAI's own /chat/completions endpoint.
type OpenAIAdapter struct {
	http        *network.Client
	apiKey      string // self-hosted static key; empty when SAAS-only
}

// NewOpenAIAdapter builds an adapter using a preconfigured process-wide
// client (self-hosted mode). apiKey may be empty if this process only ever
// serves SAAS requests carrying their own credentials.
func NewOpenAIAdapter(http *network.Client, apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{http: http, apiKey: apiKey}
}

func (a *OpenAIAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderOpenAI }
func (a *OpenAIAdapter) SupportsSAAS() bool             { return true }
func (a *OpenAIAdapter) SupportsJSONMode() bool         { return true }
func (a *OpenAIAdapter) SupportsImages() bool           { return false }

func (a *OpenAIAdapter) Validate(ctx context.Context) bool {
	return a.apiKey != ""
}

func (a *OpenAIAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := openaiNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderOpenAI, "model not supported by openai: "+logicalModel, nil)
	}
	return native, nil
}

func (a *OpenAIAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.OpenAICredentials](params.Credentials, schemas.ProviderOpenAI); ok {
		key = creds.OpenAIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderOpenAI, "no OpenAI API key available", nil)
	}

	headers := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", key)}
	result, err := doChatCompletion(ctx, a.http, openaiBaseURL+"/chat/completions", headers, params, a.SupportsJSONMode())
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderOpenAI, err)
	}
	return result, nil
}
