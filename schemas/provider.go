package schemas

import "context"

// ProviderId enumerates the back-ends the gateway knows how to dispatch to.
type ProviderId string

const (
	ProviderBedrock   ProviderId = "aws-bedrock"
	ProviderOpenAI    ProviderId = "openai"
	ProviderAnthropic ProviderId = "anthropic"
	ProviderGemini    ProviderId = "gemini"
	ProviderGroq      ProviderId = "groq"
	ProviderTogether  ProviderId = "together"
	ProviderMistral   ProviderId = "mistralai"
	ProviderCodestral ProviderId = "mistralcodestral"
)

// AdapterParams is the request an adapter's MakeQuery receives. It is the Go
// shape of spec.md §4.3's params = {messages, nativeModelId, temperature?,
// maxGenLen?, credentials?, jsonMode?}.
type AdapterParams struct {
	Messages      []Message
	NativeModelID string
	Temperature   *float64
	MaxGenLen     *int
	Credentials   *Bag
	JSONMode      bool
}

// AdapterResult is the raw extraction an adapter produces from the
// back-end's native response, before cost accounting.
type AdapterResult struct {
	ModelOutput      string
	PromptTokens     int
	GenerationTokens int
}

// Provider is the uniform contract every back-end adapter satisfies. It has
// no shared mutable state with other adapters; adapter-specific prompt
// formatting and response extraction live entirely inside the
// implementation (spec.md §9 Design Notes).
type Provider interface {
	// ProviderID returns this adapter's identifier.
	ProviderID() ProviderId

	// Validate is a best-effort check, at startup, that this process can
	// reach the back-end under self-hosted credentials.
	Validate(ctx context.Context) bool

	// SupportsSAAS reports whether this adapter can be driven purely by
	// per-request credentials with no preconfigured client.
	SupportsSAAS() bool

	// SupportsJSONMode reports whether the adapter can honor
	// AdapterParams.JSONMode.
	SupportsJSONMode() bool

	// SupportsImages reports whether the adapter can accept multimodal
	// message content.
	SupportsImages() bool

	// NativeModelID maps a LogicalModel to this provider's own model
	// identifier. Returns an UnsupportedModel error for an unmapped model.
	NativeModelID(logicalModel string) (string, error)

	// MakeQuery dispatches the request to the back-end and extracts a
	// normalized result. Back-end failures are returned as
	// *Error{Kind: ProviderFailure}.
	MakeQuery(ctx context.Context, params AdapterParams) (*AdapterResult, error)
}
