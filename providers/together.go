package providers

import (
	"context"
	"fmt"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const togetherBaseURL = "https://api.together.xyz/v1"

// togetherNativeModels, grounded on original_source TogetherProvider.py —
// this adapter does not exist in the teacher repo; it is new, built from
// the original Python implementation's model map and endpoint shape.
var togetherNativeModels = map[catalog.LogicalModel]string{
	catalog.Llama3_1_405bInstr: "meta-llama/Meta-Llama-3.1-405B-Instruct-Turbo",
	catalog.Llama3_1_70bInstr:  "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
	catalog.Llama3_1_8bInstr:   "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo",
	catalog.Mixtral8x7bInstruct: "mistralai/Mixtral-8x7B-Instruct-v0.1",
}

// TogetherAdapter: chat-style, OpenAI-compatible endpoint, JSON mode
// supported, no images.
type TogetherAdapter struct {
	http   *network.Client
	apiKey string
}

func NewTogetherAdapter(http *network.Client, apiKey string) *TogetherAdapter {
	return &TogetherAdapter{http: http, apiKey: apiKey}
}

func (a *TogetherAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderTogether }
func (a *TogetherAdapter) SupportsSAAS() bool             { return true }
func (a *TogetherAdapter) SupportsJSONMode() bool         { return true }
func (a *TogetherAdapter) SupportsImages() bool           { return false }
func (a *TogetherAdapter) Validate(ctx context.Context) bool { return a.apiKey != "" }

func (a *TogetherAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := togetherNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderTogether, "model not supported by together: "+logicalModel, nil)
	}
	return native, nil
}

func (a *TogetherAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.TogetherAICredentials](params.Credentials, schemas.ProviderTogether); ok {
		key = creds.TogetherAPIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderTogether, "no Together API key available", nil)
	}

	headers := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", key)}
	result, err := doChatCompletion(ctx, a.http, togetherBaseURL+"/chat/completions", headers, params, a.SupportsJSONMode())
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderTogether, err)
	}
	return result, nil
}
