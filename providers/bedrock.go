package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/bytedance/sonic"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/schemas"
)

// bedrockNativeModels maps the closed LogicalModel set to Bedrock model ids,
// grounded on original_source BedrockProvider.py's MODEL_ID_MAPPING.
var bedrockNativeModels = map[catalog.LogicalModel]string{
	catalog.Llama3_8bInstruct:   "meta.llama3-8b-instruct-v1:0",
	catalog.Llama3_70bInstruct:  "meta.llama3-70b-instruct-v1:0",
	catalog.Llama3_1_405bInstr:  "meta.llama3-1-405b-instruct-v1:0",
	catalog.Llama3_1_70bInstr:   "meta.llama3-1-70b-instruct-v1:0",
	catalog.Llama3_1_8bInstr:    "meta.llama3-1-8b-instruct-v1:0",
	catalog.Claude3_5Sonnet20241022: "anthropic.claude-3-5-sonnet-20241022-v2:0",
	catalog.Claude3_5Sonnet20240620: "anthropic.claude-3-5-sonnet-20240620-v1:0",
	catalog.Claude3Haiku20240307:    "anthropic.claude-3-haiku-20240307-v1:0",
	catalog.Mistral7bInstruct:   "mistral.mistral-7b-instruct-v0:2",
	catalog.Mixtral8x7bInstruct: "mistral.mixtral-8x7b-instruct-v0:1",
}

// bedrockImageCapableNativeIDs restricts image input to the two Claude
// models the original server allows on Bedrock (spec.md §4.3).
var bedrockImageCapableNativeIDs = map[string]bool{
	"anthropic.claude-3-haiku-20240307-v1:0":      true,
	"anthropic.claude-3-5-sonnet-20241022-v2:0":   true,
}

// BedrockAdapter dispatches to AWS Bedrock's InvokeModel API. It resolves
// native model ids to one of three prompt-assembly archetypes by family
// prefix: Meta Llama and Mistral use the template-string archetype (spec.md
// §4.3); Anthropic-on-Bedrock reuses the chat-style Anthropic Messages
// shape. Grounded on original_source BedrockProvider.py and
// sammcj-bifrost/providers/bedrock.go's client construction.
type BedrockAdapter struct {
	selfHosted *bedrockruntime.Client // nil if this process is SAAS-only
	stsClient  *sts.Client
	region     string
}

// NewBedrockAdapter loads the default AWS config (environment, shared
// config file, or instance role) for self-hosted dispatch. If loading that
// config fails, selfHosted stays nil and only SAAS requests carrying their
// own AWSBedrockCredentials can be served. A config that loads without
// usable credentials still yields a client; Validate is what probes them.
func NewBedrockAdapter(ctx context.Context, region string) *BedrockAdapter {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return &BedrockAdapter{region: region}
	}
	return &BedrockAdapter{
		selfHosted: bedrockruntime.NewFromConfig(cfg),
		stsClient:  sts.NewFromConfig(cfg),
		region:     region,
	}
}

func (a *BedrockAdapter) ProviderID() schemas.ProviderId { return schemas.ProviderBedrock }
func (a *BedrockAdapter) SupportsSAAS() bool             { return true }
func (a *BedrockAdapter) SupportsJSONMode() bool         { return false }
func (a *BedrockAdapter) SupportsImages() bool           { return true }

// Validate calls sts:GetCallerIdentity to confirm the self-hosted
// credentials this process loaded at startup actually work.
func (a *BedrockAdapter) Validate(ctx context.Context) bool {
	if a.stsClient == nil {
		return false
	}
	_, err := a.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	return err == nil
}

func (a *BedrockAdapter) NativeModelID(logicalModel string) (string, error) {
	native, ok := bedrockNativeModels[catalog.LogicalModel(logicalModel)]
	if !ok {
		return "", schemas.NewProvider(schemas.ErrUnsupportedModel, schemas.ProviderBedrock, "model not supported on bedrock: "+logicalModel, nil)
	}
	return native, nil
}

func (a *BedrockAdapter) client(params schemas.AdapterParams) (*bedrockruntime.Client, error) {
	if creds, ok := schemas.CredentialFor[schemas.AWSBedrockCredentials](params.Credentials, schemas.ProviderBedrock); ok {
		region := creds.AWSRegion
		if region == "" {
			region = a.region
		}
		cfg := aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				creds.AWSAccessKeyID, creds.AWSSecretKey, "",
			),
		}
		return bedrockruntime.NewFromConfig(cfg), nil
	}
	if a.selfHosted == nil {
		return nil, schemas.NewProvider(schemas.ErrMissingCredentials, schemas.ProviderBedrock, "no AWS credentials available", nil)
	}
	return a.selfHosted, nil
}

func (a *BedrockAdapter) MakeQuery(ctx context.Context, params schemas.AdapterParams) (*schemas.AdapterResult, error) {
	client, err := a.client(params)
	if err != nil {
		return nil, err
	}
	if schemas.ContainsMultimodal(params.Messages) && !bedrockImageCapableNativeIDs[params.NativeModelID] {
		return nil, schemas.NewProvider(schemas.ErrUnsupportedOption, schemas.ProviderBedrock, "model does not accept image content on bedrock: "+params.NativeModelID, nil)
	}

	var body []byte
	switch {
	case strings.HasPrefix(params.NativeModelID, "anthropic."):
		body, err = buildBedrockAnthropicBody(params)
	case strings.HasPrefix(params.NativeModelID, "meta."):
		body, err = buildBedrockLlamaBody(params)
	case strings.HasPrefix(params.NativeModelID, "mistral."):
		body, err = buildBedrockMistralBody(params)
	default:
		err = fmt.Errorf("no prompt archetype registered for bedrock model %s", params.NativeModelID)
	}
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, err)
	}

	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(params.NativeModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, err)
	}

	switch {
	case strings.HasPrefix(params.NativeModelID, "anthropic."):
		return extractBedrockAnthropicResult(out.Body)
	case strings.HasPrefix(params.NativeModelID, "meta."):
		return extractBedrockLlamaResult(out.Body)
	case strings.HasPrefix(params.NativeModelID, "mistral."):
		return extractBedrockMistralResult(out.Body)
	}
	return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, fmt.Errorf("unreachable"))
}

// --- Anthropic-on-Bedrock: same Messages-API body shape as direct Anthropic ---

func buildBedrockAnthropicBody(params schemas.AdapterParams) ([]byte, error) {
	var system string
	var messages []anthropicMessage
	for _, m := range params.Messages {
		if m.Role == schemas.RoleSystem {
			system = m.PlainText()
			continue
		}
		messages = append(messages, anthropicMessage{Role: string(m.Role), Content: toAnthropicBlocks(m)})
	}
	maxTokens := 4096
	if params.MaxGenLen != nil {
		maxTokens = *params.MaxGenLen
	}
	body := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"messages":          messages,
		"max_tokens":        maxTokens,
	}
	if system != "" {
		body["system"] = system
	}
	if params.Temperature != nil {
		body["temperature"] = *params.Temperature
	}
	return sonic.Marshal(body)
}

func extractBedrockAnthropicResult(raw []byte) (*schemas.AdapterResult, error) {
	var resp anthropicResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, err)
	}
	if len(resp.Content) == 0 {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, nil)
	}
	return &schemas.AdapterResult{
		ModelOutput:      resp.Content[0].Text,
		PromptTokens:     resp.Usage.InputTokens,
		GenerationTokens: resp.Usage.OutputTokens,
	}, nil
}

// --- Meta Llama: template-string archetype ---
// "<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n\n{sys}<|eot_id|>..."

func buildBedrockLlamaBody(params schemas.AdapterParams) ([]byte, error) {
	prompt := renderLlamaTemplate(params.Messages)
	body := map[string]any{"prompt": prompt}
	if params.MaxGenLen != nil {
		body["max_gen_len"] = *params.MaxGenLen
	}
	if params.Temperature != nil {
		body["temperature"] = *params.Temperature
	}
	return sonic.Marshal(body)
}

func renderLlamaTemplate(messages []schemas.Message) string {
	var b strings.Builder
	b.WriteString("<|begin_of_text|>")
	for _, m := range messages {
		b.WriteString("<|start_header_id|>")
		b.WriteString(string(m.Role))
		b.WriteString("<|end_header_id|>\n\n")
		b.WriteString(m.PlainText())
		b.WriteString("<|eot_id|>")
	}
	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}

func extractBedrockLlamaResult(raw []byte) (*schemas.AdapterResult, error) {
	var resp struct {
		Generation           string `json:"generation"`
		PromptTokenCount     int    `json:"prompt_token_count"`
		GenerationTokenCount int    `json:"generation_token_count"`
	}
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, err)
	}
	return &schemas.AdapterResult{
		ModelOutput:      resp.Generation,
		PromptTokens:     resp.PromptTokenCount,
		GenerationTokens: resp.GenerationTokenCount,
	}, nil
}

// --- Mistral-on-Bedrock: template-string archetype ---
// "<s>[INST] {user} [/INST]"

func buildBedrockMistralBody(params schemas.AdapterParams) ([]byte, error) {
	prompt := renderMistralTemplate(params.Messages)
	body := map[string]any{"prompt": prompt}
	if params.MaxGenLen != nil {
		body["max_tokens"] = *params.MaxGenLen
	}
	if params.Temperature != nil {
		body["temperature"] = *params.Temperature
	}
	return sonic.Marshal(body)
}

func renderMistralTemplate(messages []schemas.Message) string {
	var b strings.Builder
	b.WriteString("<s>")
	for _, m := range messages {
		if m.Role == schemas.RoleSystem {
			b.WriteString("[INST] ")
			b.WriteString(m.PlainText())
			b.WriteString(" [/INST]")
			continue
		}
		if m.Role == schemas.RoleUser {
			b.WriteString("[INST] ")
			b.WriteString(m.PlainText())
			b.WriteString(" [/INST]")
		} else {
			b.WriteString(m.PlainText())
		}
	}
	return b.String()
}

// extractBedrockMistralResult has no token counts to report: Bedrock's
// Mistral invoke-model response body carries only outputs[].text and
// stop_reason, unlike Llama's body (which echoes prompt_token_count and
// generation_token_count directly). sammcj-bifrost's own
// BedrockMistralTextResponse leaves usage unset for the same reason. A
// candidate served through this path always prices at zero regardless of
// its configured rate, since computeCost has no real token counts to scale
// by.
func extractBedrockMistralResult(raw []byte) (*schemas.AdapterResult, error) {
	var resp struct {
		Outputs []struct {
			Text string `json:"text"`
		} `json:"outputs"`
	}
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, err)
	}
	if len(resp.Outputs) == 0 {
		return nil, schemas.NewProviderFailure(schemas.ProviderBedrock, nil)
	}
	return &schemas.AdapterResult{ModelOutput: resp.Outputs[0].Text}, nil
}
