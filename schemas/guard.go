package schemas

// GuardType selects whether a guard runs before the provider call (against
// the user's messages) or after it (against the model's output).
type GuardType string

const (
	GuardTypePreQuery  GuardType = "preQuery"
	GuardTypePostQuery GuardType = "postQuery"
)

// GuardName identifies which guard kind the sidecar should dispatch to.
type GuardName string

const (
	GuardNamePromptGuard GuardName = "META_LLAMA_PROMPT_GUARD_86M"
	GuardNameRegex       GuardName = "LYTIX_REGEX_GUARD"
	GuardNamePresidio    GuardName = "MICROSOFT_PRESIDIO_GUARD"
)

// GuardConfig is a tagged union over the supported guard kinds. Each variant
// carries its own thresholds/pattern/entity set plus the shared fields every
// guard has: GuardType, BlockRequest and an optional substitute message.
type GuardConfig interface {
	Name() GuardName
	Type() GuardType
	Blocks() bool
	BlockMessage() string
	isGuardConfig()
}

// guardBase is embedded by every concrete GuardConfig to avoid repeating the
// three shared fields and their accessors.
type guardBase struct {
	GuardType           GuardType
	BlockRequest        bool
	BlockRequestMessage string
}

func (g guardBase) Type() GuardType      { return g.GuardType }
func (g guardBase) Blocks() bool         { return g.BlockRequest }
func (g guardBase) BlockMessage() string { return g.BlockRequestMessage }

// PromptGuardConfig flags prompt-injection / jailbreak attempts.
type PromptGuardConfig struct {
	guardBase
	JailbreakThreshold  *float64
	InjectionThreshold  *float64
}

func NewPromptGuardConfig(guardType GuardType, blockRequest bool, blockMessage string, injection, jailbreak *float64) PromptGuardConfig {
	return PromptGuardConfig{
		guardBase:          guardBase{GuardType: guardType, BlockRequest: blockRequest, BlockRequestMessage: blockMessage},
		InjectionThreshold: injection,
		JailbreakThreshold: jailbreak,
	}
}

func (PromptGuardConfig) Name() GuardName { return GuardNamePromptGuard }
func (PromptGuardConfig) isGuardConfig()  {}

// RegexGuardConfig flags any relevant-role text matching Pattern.
type RegexGuardConfig struct {
	guardBase
	Pattern string
}

func NewRegexGuardConfig(guardType GuardType, blockRequest bool, blockMessage, pattern string) RegexGuardConfig {
	return RegexGuardConfig{
		guardBase: guardBase{GuardType: guardType, BlockRequest: blockRequest, BlockRequestMessage: blockMessage},
		Pattern:   pattern,
	}
}

func (RegexGuardConfig) Name() GuardName { return GuardNameRegex }
func (RegexGuardConfig) isGuardConfig()  {}

// EntityGuardConfig flags named entities of the configured types.
type EntityGuardConfig struct {
	guardBase
	EntitiesToCheck []string
}

func NewEntityGuardConfig(guardType GuardType, blockRequest bool, blockMessage string, entities []string) EntityGuardConfig {
	return EntityGuardConfig{
		guardBase:       guardBase{GuardType: guardType, BlockRequest: blockRequest, BlockRequestMessage: blockMessage},
		EntitiesToCheck: entities,
	}
}

func (EntityGuardConfig) Name() GuardName { return GuardNamePresidio }
func (EntityGuardConfig) isGuardConfig()  {}

// GuardError is one accumulated guard outcome, attached to QueryResponse.
// Message carries the guard config's configured substitute text (its
// BlockMessage()) when BlockRequest is true; it is what the pipeline
// substitutes for the model's real output.
type GuardError struct {
	GuardName    GuardName      `json:"guardName"`
	Failure      bool           `json:"failure"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	BlockRequest bool           `json:"blockRequest"`
	Message      string         `json:"message,omitempty"`
}

// SplitGuards partitions guards into pre-query and post-query lists,
// preserving relative order within each list (spec.md §4.5 step 2).
func SplitGuards(guards []GuardConfig) (pre, post []GuardConfig) {
	for _, g := range guards {
		switch g.Type() {
		case GuardTypePreQuery:
			pre = append(pre, g)
		case GuardTypePostQuery:
			post = append(post, g)
		}
	}
	return pre, post
}
