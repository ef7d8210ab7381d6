package schemas

// SpeedPriority steers the Planner's ordering: "high" sorts by speed rank,
// anything else (including unset) sorts by average price.
type SpeedPriority string

const (
	SpeedPriorityHigh SpeedPriority = "high"
	SpeedPriorityLow  SpeedPriority = "low"
)

// QueryRequest is the immutable input to one Query Pipeline invocation.
type QueryRequest struct {
	Messages      []Message
	LogicalModel  string
	SpeedPriority SpeedPriority
	Temperature   *float64
	MaxGenLen     *int
	JSONMode      bool
	Provider      ProviderId // zero value means "no preference"
	Guards        []GuardConfig
	Credentials   *Bag
	UserID        string
	SessionID     string
	WorkflowName  string
}

// QueryResponse is the normalized result of a pipeline invocation.
type QueryResponse struct {
	ModelResponse    string       `json:"modelResponse"`
	PromptTokens     int          `json:"promptTokens"`
	GenerationTokens int          `json:"generationTokens"`
	Cost             *float64     `json:"cost,omitempty"`
	Provider         ProviderId   `json:"provider"`
	GuardErrors      []GuardError `json:"guardErrors"`
}
