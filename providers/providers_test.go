package providers

import (
	"context"
	"testing"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIAdapter_NativeModelID(t *testing.T) {
	a := NewOpenAIAdapter(nil, "")

	native, err := a.NativeModelID(string(catalog.GPT4o))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", native)

	_, err = a.NativeModelID("not_a_model")
	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrUnsupportedModel))
}

func TestGroqAdapter_RejectsJSONMode(t *testing.T) {
	a := NewGroqAdapter(nil, "test-key")
	_, err := a.MakeQuery(nil, schemas.AdapterParams{JSONMode: true})
	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrUnsupportedOption))
}

func TestBedrockAdapter_NativeModelID(t *testing.T) {
	a := &BedrockAdapter{region: "us-east-1"}

	native, err := a.NativeModelID(string(catalog.Llama3_1_8bInstr))
	require.NoError(t, err)
	assert.Equal(t, "meta.llama3-1-8b-instruct-v1:0", native)

	_, err = a.NativeModelID("not_a_model")
	require.Error(t, err)
}

func TestRenderLlamaTemplate(t *testing.T) {
	messages := []schemas.Message{
		schemas.NewTextMessage(schemas.RoleSystem, "be concise"),
		schemas.NewTextMessage(schemas.RoleUser, "hi"),
	}
	got := renderLlamaTemplate(messages)

	assert.Contains(t, got, "<|begin_of_text|>")
	assert.Contains(t, got, "<|start_header_id|>system<|end_header_id|>\n\nbe concise<|eot_id|>")
	assert.Contains(t, got, "<|start_header_id|>user<|end_header_id|>\n\nhi<|eot_id|>")
	assert.Contains(t, got, "<|start_header_id|>assistant<|end_header_id|>\n\n")
}

func TestRenderMistralTemplate(t *testing.T) {
	messages := []schemas.Message{schemas.NewTextMessage(schemas.RoleUser, "hi")}
	got := renderMistralTemplate(messages)

	assert.Equal(t, "<s>[INST] hi [/INST]", got)
}

func TestChatCompletionRequest_OmitsResponseFormatWhenUnsupported(t *testing.T) {
	params := schemas.AdapterParams{JSONMode: true, NativeModelID: "llama3-8b-8192"}
	req := chatCompletionRequest{Model: params.NativeModelID, Messages: buildChatMessages(params.Messages)}
	assert.Nil(t, req.ResponseFormat)
}

func TestGeminiAdapter_MissingCredentialsIsMissingCredentialsError(t *testing.T) {
	a := NewGeminiAdapter(nil, "")
	_, err := a.MakeQuery(context.Background(), schemas.AdapterParams{NativeModelID: "gemini-1.5-flash"})
	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrMissingCredentials))
}

func TestGeminiURL_NeverCarriesTheAPIKey(t *testing.T) {
	got := geminiURL("gemini-1.5-flash")
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent", got)
	assert.NotContains(t, got, "key=")
}

func TestBuildChatMessages_FlattensMultimodalToText(t *testing.T) {
	msg := schemas.Message{Role: schemas.RoleUser, Parts: []schemas.ContentPart{
		{Type: schemas.ContentPartText, Text: "look at this"},
		{Type: schemas.ContentPartImage, Image: &schemas.ImagePart{MediaType: "image/png", Data: "base64"}},
	}}
	got := buildChatMessages([]schemas.Message{msg})
	require.Len(t, got, 1)
	assert.Equal(t, "look at this", got[0].Content)
}
