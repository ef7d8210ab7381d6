package schemas

// Credential is a tagged-union member: one concrete type per provider's
// secret shape. It carries no behavior beyond identifying which ProviderId
// it authenticates — dispatch on stored type, not inheritance (spec.md §9).
type Credential interface {
	ProviderID() ProviderId
	isCredential()
}

type TogetherAICredentials struct {
	TogetherAPIKey string
}

func (TogetherAICredentials) ProviderID() ProviderId { return ProviderTogether }
func (TogetherAICredentials) isCredential()          {}

type AnthropicCredentials struct {
	AnthropicAPIKey string
}

func (AnthropicCredentials) ProviderID() ProviderId { return ProviderAnthropic }
func (AnthropicCredentials) isCredential()          {}

type GroqCredentials struct {
	GroqAPIKey string
}

func (GroqCredentials) ProviderID() ProviderId { return ProviderGroq }
func (GroqCredentials) isCredential()          {}

type OpenAICredentials struct {
	OpenAIKey string
}

func (OpenAICredentials) ProviderID() ProviderId { return ProviderOpenAI }
func (OpenAICredentials) isCredential()          {}

type AWSBedrockCredentials struct {
	AWSAccessKeyID string
	AWSSecretKey   string
	AWSRegion      string
}

func (AWSBedrockCredentials) ProviderID() ProviderId { return ProviderBedrock }
func (AWSBedrockCredentials) isCredential()          {}

type MistralAICredentials struct {
	MistralAPIKey string
}

func (MistralAICredentials) ProviderID() ProviderId { return ProviderMistral }
func (MistralAICredentials) isCredential()          {}

type MistralCodestralCredentials struct {
	MistralCodestralAPIKey string
}

func (MistralCodestralCredentials) ProviderID() ProviderId { return ProviderCodestral }
func (MistralCodestralCredentials) isCredential()          {}

type GeminiCredentials struct {
	GeminiAPIKey string
}

func (GeminiCredentials) ProviderID() ProviderId { return ProviderGemini }
func (GeminiCredentials) isCredential()          {}

// Bag is the per-request opaque collection of Credentials described in
// spec.md §3. It holds at most one credential per ProviderId and never
// round-trips through JSON or a log line — String redacts everything.
type Bag struct {
	byProvider map[ProviderId]Credential
}

// NewBag builds a Bag from a list of credentials, keyed by ProviderID().
// Later entries for the same provider overwrite earlier ones.
func NewBag(creds ...Credential) *Bag {
	b := &Bag{byProvider: make(map[ProviderId]Credential, len(creds))}
	for _, c := range creds {
		b.byProvider[c.ProviderID()] = c
	}
	return b
}

// Empty reports whether the bag carries no credentials at all.
func (b *Bag) Empty() bool {
	return b == nil || len(b.byProvider) == 0
}

// For returns the credential registered for providerID, if any.
func (b *Bag) For(providerID ProviderId) (Credential, bool) {
	if b == nil {
		return nil, false
	}
	c, ok := b.byProvider[providerID]
	return c, ok
}

// CredentialFor is a typed convenience wrapper around Bag.For: it returns the
// credential for providerID asserted to type T, or ok=false if absent or of
// the wrong type.
func CredentialFor[T Credential](b *Bag, providerID ProviderId) (T, bool) {
	var zero T
	c, ok := b.For(providerID)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// String deliberately never includes secret material — credentials must
// never appear in logs or error messages (spec.md Testable Property 6).
func (b *Bag) String() string {
	if b.Empty() {
		return "Bag{}"
	}
	ids := make([]string, 0, len(b.byProvider))
	for id := range b.byProvider {
		ids = append(ids, string(id))
	}
	return "Bag{providers: " + joinStrings(ids, ",") + "}"
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}
