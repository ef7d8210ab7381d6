// Package pipeline implements the Query Pipeline (spec.md §4.5): the
// orchestration that turns a planned candidate list into a dispatched,
// guarded, costed QueryResponse, grounded on original_source
// Utils/QueryModelMain.py's queryModelMain loop.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/guard"
	"github.com/lytixlabs/optimodel/planner"
	"github.com/lytixlabs/optimodel/schemas"
)

// above128KTokens is the token-count threshold past which a provider entry's
// above-128K pricing tier applies instead of its base rate, checked
// separately against prompt tokens (input rate) and generation tokens
// (output rate) (spec.md §4.5 cost computation, grounded on original_source
// QueryModelMain.py).
const above128KTokens = 128_000

// Registry resolves a ProviderId to the adapter instance dispatching for it.
type Registry interface {
	Get(id schemas.ProviderId) (schemas.Provider, bool)
}

// Pipeline wires the Planner, the provider registry and the Guard Client
// together to execute one QueryRequest end to end.
type Pipeline struct {
	Catalog     *catalog.Catalog
	Providers   Registry
	GuardClient guard.Client
	Logger      schemas.Logger
}

// New builds a Pipeline. logger may be nil, in which case logging is a
// no-op.
func New(cat *catalog.Catalog, providers Registry, guardClient guard.Client, logger schemas.Logger) *Pipeline {
	if logger == nil {
		logger = schemas.NopLogger{}
	}
	return &Pipeline{Catalog: cat, Providers: providers, GuardClient: guardClient, Logger: logger}
}

// Execute runs the full pipeline for req: plan, then for each candidate in
// order, re-evaluate pre-query guards, dispatch, compute cost, evaluate
// post-query guards, and return on the first candidate that produces a
// result. A candidate whose dispatch fails is recorded and the loop advances
// to the next candidate (spec.md: "fallback as a loop, not exceptions").
// Exhausting every candidate returns NoAvailableProvider aggregating every
// candidate's failure.
//
// Guard outcomes that are terminal, not fallback (spec.md §4.5.b, §7): a
// blocking pre-query guard that fires short-circuits the whole request with
// a substituted-message QueryResponse and zero cost/tokens, never reaching
// the provider; a blocking post-query guard that fires replaces the model's
// output with its substitute message, while the response keeps the
// provider's real token counts and cost; a blocking guard whose transport
// fails returns GuardTransportError directly, without trying another
// candidate.
func (p *Pipeline) Execute(ctx context.Context, req schemas.QueryRequest) (*schemas.QueryResponse, error) {
	requestID := uuid.NewString()
	p.Logger.Info(fmt.Sprintf("request %s: planning model=%s userId=%s sessionId=%s", requestID, req.LogicalModel, req.UserID, req.SessionID))

	candidates, err := planner.Plan(req, p.Catalog)
	if err != nil {
		p.Logger.Warn(fmt.Sprintf("request %s: planning failed: %v", requestID, err))
		return nil, err
	}

	preGuards, postGuards := schemas.SplitGuards(req.Guards)

	var candidateErrs []error
	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return nil, schemas.New(schemas.ErrCancelled, "request cancelled")
		default:
		}

		adapter, ok := p.Providers.Get(candidate.ProviderID)
		if !ok {
			candidateErrs = append(candidateErrs, fmt.Errorf("no adapter registered for %s", candidate.ProviderID))
			continue
		}

		guardErrors, blocked, err := p.runGuards(ctx, preGuards, req.Messages)
		if err != nil {
			p.Logger.Warn(fmt.Sprintf("request %s: guard transport failure, terminating: %v", requestID, err))
			return nil, err
		}
		if blocked != nil {
			p.Logger.Info(fmt.Sprintf("request %s: candidate %s blocked by pre-guard %s", requestID, candidate.ProviderID, blocked.GuardName))
			zeroCost := 0.0
			return &schemas.QueryResponse{
				ModelResponse:    blocked.Message,
				PromptTokens:     0,
				GenerationTokens: 0,
				Cost:             &zeroCost,
				Provider:         candidate.ProviderID,
				GuardErrors:      guardErrors,
			}, nil
		}

		result, err := adapter.MakeQuery(ctx, toAdapterParams(req, candidate))
		if err != nil {
			p.Logger.Warn(fmt.Sprintf("request %s: candidate %s dispatch failed: %v", requestID, candidate.ProviderID, err))
			candidateErrs = append(candidateErrs, err)
			continue
		}

		cost := computeCost(candidate, result.PromptTokens, result.GenerationTokens)

		postGuardErrors, postBlocked, err := p.runGuards(ctx, postGuards, []schemas.Message{
			schemas.NewTextMessage(schemas.RoleAssistant, result.ModelOutput),
		})
		if err != nil {
			p.Logger.Warn(fmt.Sprintf("request %s: guard transport failure, terminating: %v", requestID, err))
			return nil, err
		}
		allGuardErrors := append(guardErrors, postGuardErrors...)

		modelOutput := result.ModelOutput
		if postBlocked != nil {
			modelOutput = postBlocked.Message
		}

		p.Logger.Info(fmt.Sprintf("request %s: served by %s", requestID, candidate.ProviderID))
		return &schemas.QueryResponse{
			ModelResponse:    modelOutput,
			PromptTokens:     result.PromptTokens,
			GenerationTokens: result.GenerationTokens,
			Cost:             cost,
			Provider:         candidate.ProviderID,
			GuardErrors:      allGuardErrors,
		}, nil
	}

	p.Logger.Warn(fmt.Sprintf("request %s: exhausted %d candidates", requestID, len(candidates)))
	return nil, schemas.NewNoAvailableProvider(candidateErrs)
}

// runGuards evaluates every guard in guards against messages. It returns the
// accumulated non-blocking GuardErrors, the first blocking guard that
// failed (nil if none), and a transport error if a blocking guard couldn't
// be reached at all.
func (p *Pipeline) runGuards(ctx context.Context, guards []schemas.GuardConfig, messages []schemas.Message) ([]schemas.GuardError, *schemas.GuardError, error) {
	var errors []schemas.GuardError
	for _, g := range guards {
		result, err := p.GuardClient.Check(ctx, g, messages)
		if err != nil {
			return errors, nil, err
		}
		if result == nil {
			continue
		}
		errors = append(errors, *result)
		if result.BlockRequest {
			return errors, result, nil
		}
	}
	return errors, nil, nil
}

func toAdapterParams(req schemas.QueryRequest, candidate catalog.ProviderEntry) schemas.AdapterParams {
	return schemas.AdapterParams{
		Messages:      req.Messages,
		NativeModelID: candidate.NativeModelID,
		Temperature:   req.Temperature,
		MaxGenLen:     req.MaxGenLen,
		Credentials:   req.Credentials,
		JSONMode:      req.JSONMode,
	}
}

// computeCost applies the candidate's per-million-token prices. The input
// rate switches to its above-128K tier once prompt tokens cross that
// threshold; the output rate switches independently, once generation tokens
// cross it. The two tiers are not coupled to the same token count (spec.md
// §4.5.d, grounded on original_source QueryModelMain.py:150,162). Returns
// nil when the candidate carries no pricing data at all.
func computeCost(candidate catalog.ProviderEntry, promptTokens, generationTokens int) *float64 {
	if candidate.PricePer1MInput == 0 && candidate.PricePer1MOutput == 0 {
		return nil
	}

	inputPrice := candidate.PricePer1MInput
	if promptTokens > above128KTokens && candidate.PricePer1MInputAbove128K != nil {
		inputPrice = *candidate.PricePer1MInputAbove128K
	}

	outputPrice := candidate.PricePer1MOutput
	if generationTokens > above128KTokens && candidate.PricePer1MOutputAbove128K != nil {
		outputPrice = *candidate.PricePer1MOutputAbove128K
	}

	cost := (float64(promptTokens)/1_000_000)*inputPrice + (float64(generationTokens)/1_000_000)*outputPrice
	return &cost
}
