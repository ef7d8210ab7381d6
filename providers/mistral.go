package providers

import (
	"context"
	"fmt"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const (
	mistralBaseURL    = "https://api.mistral.ai/v1"
	codestralBaseURL  = "https://codestral.mistral.ai/v1"
)

var mistralNativeModels = map[catalog.LogicalModel]string{
	catalog.Mistral7bInstruct:   "open-mistral-7b",
	catalog.Mixtral8x7bInstruct: "open-mixtral-8x7b",
	catalog.MistralLargeLatest:  "mistral-large-latest",
	catalog.OpenMistralNemo:     "open-mistral-nemo",
}

var codestralNativeModels = map[catalog.LogicalModel]string{
	catalog.CodestralLatest: "codestral-latest",
}

// MistralAIAdapter talks to MistralAI's general-purpose chat endpoint.
type MistralAIAdapter struct {
	http   *network.Client
	apiKey string
}

func NewMistralAIAdapter(http *network.Client, apiKey string) *MistralAIAdapter {
	return &MistralAIAdapter{http: http, apiKey: apiKey}
}

func (a *MistralAIAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderMistral }
func (a *MistralAIAdapter) SupportsSAAS() bool             { return true }
func (a *MistralAIAdapter) SupportsJSONMode() bool         { return true }
func (a *MistralAIAdapter) SupportsImages() bool           { return false }
func (a *MistralAIAdapter) Validate(ctx context.Context) bool { return a.apiKey != "" }

func (a *MistralAIAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := mistralNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderMistral, "model not supported by mistralai: "+logicalModel, nil)
	}
	return native, nil
}

func (a *MistralAIAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.MistralAICredentials](params.Credentials, schemas.ProviderMistral); ok {
		key = creds.MistralAPIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderMistral, "no MistralAI API key available", nil)
	}

	headers := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", key)}
	result, err := doChatCompletion(ctx, a.http, mistralBaseURL+"/chat/completions", headers, params, a.SupportsJSONMode())
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderMistral, err)
	}
	return result, nil
}

// CodestralAdapter talks to Mistral's dedicated Codestral endpoint, which
// uses its own API key and base URL but the same chat-completion wire shape
// (grounded on original_source MistralProvider.py's split between the
// general and Codestral-only credentials).
type CodestralAdapter struct {
	http   *network.Client
	apiKey string
}

func NewCodestralAdapter(http *network.Client, apiKey string) *CodestralAdapter {
	return &CodestralAdapter{http: http, apiKey: apiKey}
}

func (a *CodestralAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderCodestral }
func (a *CodestralAdapter) SupportsSAAS() bool             { return true }
func (a *CodestralAdapter) SupportsJSONMode() bool         { return false }
func (a *CodestralAdapter) SupportsImages() bool           { return false }
func (a *CodestralAdapter) Validate(ctx context.Context) bool { return a.apiKey != "" }

func (a *CodestralAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := codestralNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderCodestral, "model not supported by codestral: "+logicalModel, nil)
	}
	return native, nil
}

func (a *CodestralAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.MistralCodestralCredentials](params.Credentials, schemas.ProviderCodestral); ok {
		key = creds.MistralCodestralAPIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderCodestral, "no Codestral API key available", nil)
	}

	headers := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", key)}
	result, err := doChatCompletion(ctx, a.http, codestralBaseURL+"/chat/completions", headers, params, a.SupportsJSONMode())
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderCodestral, err)
	}
	return result, nil
}
