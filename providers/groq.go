package providers

import (
	"context"
	"fmt"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// groqNativeModels, grounded on original_source GroqProvider.py: Groq serves
// the Llama family over an OpenAI-compatible endpoint.
var groqNativeModels = map[catalog.LogicalModel]string{
	catalog.Llama3_8bInstruct:  "llama3-8b-8192",
	catalog.Llama3_70bInstruct: "llama3-70b-8192",
	catalog.Llama3_1_8bInstr:   "llama-3.1-8b-instant",
	catalog.Llama3_1_70bInstr:  "llama-3.1-70b-versatile",
}

// GroqAdapter: chat-style, no JSON mode, no images (original_source
// GroqProvider.py never sets response_format or image content).
type GroqAdapter struct {
	http   *network.Client
	apiKey string
}

func NewGroqAdapter(http *network.Client, apiKey string) *GroqAdapter {
	return &GroqAdapter{http: http, apiKey: apiKey}
}

func (a *GroqAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderGroq }
func (a *GroqAdapter) SupportsSAAS() bool             { return true }
func (a *GroqAdapter) SupportsJSONMode() bool         { return false }
func (a *GroqAdapter) SupportsImages() bool           { return false }
func (a *GroqAdapter) Validate(ctx context.Context) bool { return a.apiKey != "" }

func (a *GroqAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := groqNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderGroq, "model not supported by groq: "+logicalModel, nil)
	}
	return native, nil
}

func (a *GroqAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	key := a.apiKey
	if creds, ok := schemas.CredentialFor[schemas.GroqCredentials](params.Credentials, schemas.ProviderGroq); ok {
		key = creds.GroqAPIKey
	}
	if key == "" {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderGroq, "no Groq API key available", nil)
	}
	if params.JSONMode {
		return nil, schemas.NewProvider(schemas.ErrUnsupportedOption, schemas.ProviderGroq, "groq does not support jsonMode", nil)
	}

	headers := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", key)}
	result, err := doChatCompletion(ctx, a.http, groqBaseURL+"/chat/completions", headers, params, a.SupportsJSONMode())
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderGroq, err)
	}
	return result, nil
}
