// Package guard implements the HTTP client side of the Guard Evaluation
// Protocol (spec.md §4.5.b): the gateway reduces messages to role-filtered
// plain text and calls the out-of-process guard sidecar; guard-kind
// internals (the ML classifier, the regex engine, the NER model) live in
// that sidecar and are out of scope here (spec.md §1).
package guard

import (
	"context"
	"fmt"
	"os"

	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
)

const guardPath = "/optimodel-guard/api/v1/guard"

// DefaultGuardServerURL is used when OPTIMODEL_GUARD_SERVER_URL is unset.
const DefaultGuardServerURL = "http://localhost:8765"

// Client evaluates a single GuardConfig against a set of messages.
type Client interface {
	Check(ctx context.Context, g schemas.GuardConfig, messages []schemas.Message) (*schemas.GuardError, error)
}

// HTTPClient is the process-wide guard client, one *network.Client shared
// across every query (spec.md §6: HTTP connection pools are process-wide).
type HTTPClient struct {
	http    *network.Client
	baseURL string
}

// New builds an HTTPClient pointed at OPTIMODEL_GUARD_SERVER_URL, or
// DefaultGuardServerURL if unset.
func New(http *network.Client) *HTTPClient {
	base := os.Getenv("OPTIMODEL_GUARD_SERVER_URL")
	if base == "" {
		base = DefaultGuardServerURL
	}
	return &HTTPClient{http: http, baseURL: base}
}

// requestBody is the wire shape POSTed to the sidecar. Exactly one of the
// config-specific fields is populated, selected by GuardName.
type requestBody struct {
	GuardName          schemas.GuardName `json:"guardName"`
	TextToCheck        string            `json:"textToCheck"`
	InjectionThreshold *float64          `json:"injectionThreshold,omitempty"`
	JailbreakThreshold *float64          `json:"jailbreakThreshold,omitempty"`
	Pattern            string            `json:"pattern,omitempty"`
	EntitiesToCheck    []string          `json:"entitiesToCheck,omitempty"`
}

// responseBody is the sidecar's reply.
type responseBody struct {
	Failure  bool           `json:"failure"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Check reduces messages to the plain text relevant to g's Type (user-role
// text for pre-query guards, assistant-role text for post-query guards),
// always discarding image/file parts first (spec.md Testable Property 7),
// then calls the sidecar.
//
// Transport failure policy (spec.md §9 Open Question 4): a blocking guard
// (Blocks() == true) that cannot be reached surfaces as GuardTransportError,
// which the pipeline treats as terminal: no other candidate is tried. A
// non-blocking guard
// that cannot be reached is treated as a silent pass — its absence must
// never fail a request it wasn't configured to gate.
func (c *HTTPClient) Check(ctx context.Context, g schemas.GuardConfig, messages []schemas.Message) (*schemas.GuardError, error) {
	role := schemas.RoleUser
	if g.Type() == schemas.GuardTypePostQuery {
		role = schemas.RoleAssistant
	}
	text := plainTextForRole(messages, role)

	req := buildRequestBody(g, text)

	var resp responseBody
	if err := c.http.PostJSON(ctx, c.baseURL+guardPath, nil, req, &resp); err != nil {
		if g.Blocks() {
			return nil, schemas.NewProvider(schemas.ErrGuardTransportError, "", fmt.Sprintf("guard %s unreachable: %v", g.Name(), err), err)
		}
		return nil, nil
	}

	if !resp.Failure {
		return nil, nil
	}
	return &schemas.GuardError{
		GuardName:    g.Name(),
		Failure:      true,
		Metadata:     resp.Metadata,
		BlockRequest: g.Blocks(),
		Message:      g.BlockMessage(),
	}, nil
}

func plainTextForRole(messages []schemas.Message, role schemas.Role) string {
	filtered := schemas.FilterByRole(messages, role)
	out := ""
	for i, m := range filtered {
		if i > 0 {
			out += "\n"
		}
		out += m.PlainText()
	}
	return out
}

func buildRequestBody(g schemas.GuardConfig, text string) requestBody {
	body := requestBody{GuardName: g.Name(), TextToCheck: text}
	switch cfg := g.(type) {
	case schemas.PromptGuardConfig:
		body.InjectionThreshold = cfg.InjectionThreshold
		body.JailbreakThreshold = cfg.JailbreakThreshold
	case schemas.RegexGuardConfig:
		body.Pattern = cfg.Pattern
	case schemas.EntityGuardConfig:
		body.EntitiesToCheck = cfg.EntitiesToCheck
	}
	return body
}
