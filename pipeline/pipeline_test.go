package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/pipeline"
	"github.com/lytixlabs/optimodel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	id     schemas.ProviderId
	result *schemas.AdapterResult
	err    error
}

func (f *fakeProvider) ProviderID() schemas.ProviderId { return f.id }
func (f *fakeProvider) Validate(context.Context) bool  { return true }
func (f *fakeProvider) SupportsSAAS() bool              { return true }
func (f *fakeProvider) SupportsJSONMode() bool          { return false }
func (f *fakeProvider) SupportsImages() bool            { return false }
func (f *fakeProvider) NativeModelID(string) (string, error) { return "native", nil }
func (f *fakeProvider) MakeQuery(context.Context, schemas.AdapterParams) (*schemas.AdapterResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeRegistry struct {
	byID map[schemas.ProviderId]schemas.Provider
}

func (r *fakeRegistry) Get(id schemas.ProviderId) (schemas.Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

type fakeGuardClient struct {
	result *schemas.GuardError
	err    error
}

func (f *fakeGuardClient) Check(context.Context, schemas.GuardConfig, []schemas.Message) (*schemas.GuardError, error) {
	return f.result, f.err
}

func newCatalogWith(entries ...catalog.ProviderEntry) *catalog.Catalog {
	return catalog.NewFromEntries(catalog.DefaultPolicy, entries)
}

func TestExecute_HappyPathComputesCostAndReturnsProvider(t *testing.T) {
	entry := catalog.ProviderEntry{
		LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI,
		PricePer1MInput: 2, PricePer1MOutput: 4,
	}
	cat := newCatalogWith(entry)
	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI: &fakeProvider{id: schemas.ProviderOpenAI, result: &schemas.AdapterResult{
			ModelOutput: "hi", PromptTokens: 1_000_000, GenerationTokens: 500_000,
		}},
	}}
	pl := pipeline.New(cat, registry, &fakeGuardClient{}, nil)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), Messages: []schemas.Message{
		schemas.NewTextMessage(schemas.RoleUser, "hello"),
	}}

	resp, err := pl.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, schemas.ProviderOpenAI, resp.Provider)
	require.NotNil(t, resp.Cost)
	assert.InDelta(t, 4.0, *resp.Cost, 0.0001)
}

// TestExecute_CostTiersSwitchIndependently pins spec Property 5: the
// above-128K input rate applies only when prompt tokens cross the
// threshold, and the above-128K output rate applies only when generation
// tokens do, independently of one another.
func TestExecute_CostTiersSwitchIndependently(t *testing.T) {
	aboveInput := 1.0
	aboveOutput := 8.0
	entry := catalog.ProviderEntry{
		LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI,
		PricePer1MInput: 2, PricePer1MOutput: 4,
		PricePer1MInputAbove128K: &aboveInput, PricePer1MOutputAbove128K: &aboveOutput,
	}
	cat := newCatalogWith(entry)
	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI: &fakeProvider{id: schemas.ProviderOpenAI, result: &schemas.AdapterResult{
			// Prompt tokens cross the threshold, generation tokens do not.
			ModelOutput: "hi", PromptTokens: 200_000, GenerationTokens: 1_000,
		}},
	}}
	pl := pipeline.New(cat, registry, &fakeGuardClient{}, nil)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), Messages: []schemas.Message{
		schemas.NewTextMessage(schemas.RoleUser, "hello"),
	}}

	resp, err := pl.Execute(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, resp.Cost)
	// input uses the above-128K rate (1.0), output stays on the base rate (4.0).
	want := (200_000.0/1_000_000)*1.0 + (1_000.0/1_000_000)*4.0
	assert.InDelta(t, want, *resp.Cost, 0.0001)
}

func TestExecute_FallsBackToNextCandidateOnProviderFailure(t *testing.T) {
	failing := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI, SpeedRank: 1}
	working := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderTogether, SpeedRank: 2}
	cat := newCatalogWith(failing, working)

	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI:   &fakeProvider{id: schemas.ProviderOpenAI, err: errors.New("upstream 500")},
		schemas.ProviderTogether: &fakeProvider{id: schemas.ProviderTogether, result: &schemas.AdapterResult{ModelOutput: "ok"}},
	}}
	pl := pipeline.New(cat, registry, &fakeGuardClient{}, nil)

	req := schemas.QueryRequest{
		LogicalModel: string(catalog.GPT4o), SpeedPriority: schemas.SpeedPriorityHigh,
		Messages: []schemas.Message{schemas.NewTextMessage(schemas.RoleUser, "hello")},
	}

	resp, err := pl.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, schemas.ProviderTogether, resp.Provider)
}

func TestExecute_ExhaustingEveryCandidateReturnsNoAvailableProvider(t *testing.T) {
	entry := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI}
	cat := newCatalogWith(entry)
	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI: &fakeProvider{id: schemas.ProviderOpenAI, err: errors.New("upstream 500")},
	}}
	pl := pipeline.New(cat, registry, &fakeGuardClient{}, nil)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), Messages: []schemas.Message{
		schemas.NewTextMessage(schemas.RoleUser, "hello"),
	}}

	_, err := pl.Execute(context.Background(), req)

	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrNoAvailableProvider))
}

func TestExecute_BlockingPreGuardShortCircuitsWithSubstitutedResponse(t *testing.T) {
	entry := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI}
	cat := newCatalogWith(entry)
	provider := &fakeProvider{id: schemas.ProviderOpenAI, result: &schemas.AdapterResult{ModelOutput: "ok"}}
	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI: provider,
	}}
	blockingGuard := &fakeGuardClient{result: &schemas.GuardError{GuardName: schemas.GuardNameRegex, Failure: true, BlockRequest: true, Message: "blocked"}}
	pl := pipeline.New(cat, registry, blockingGuard, nil)

	req := schemas.QueryRequest{
		LogicalModel: string(catalog.GPT4o),
		Messages:     []schemas.Message{schemas.NewTextMessage(schemas.RoleUser, "hello")},
		Guards:       []schemas.GuardConfig{schemas.NewRegexGuardConfig(schemas.GuardTypePreQuery, true, "blocked", ".*")},
	}

	resp, err := pl.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "blocked", resp.ModelResponse)
	assert.Equal(t, 0, resp.PromptTokens)
	assert.Equal(t, 0, resp.GenerationTokens)
	require.NotNil(t, resp.Cost)
	assert.Equal(t, 0.0, *resp.Cost)
	assert.Equal(t, schemas.ProviderOpenAI, resp.Provider)
	require.Len(t, resp.GuardErrors, 1)
	assert.True(t, resp.GuardErrors[0].BlockRequest)
}

func TestExecute_BlockingGuardTransportFailureIsTerminal(t *testing.T) {
	failingEntry := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI, SpeedRank: 1}
	otherEntry := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderTogether, SpeedRank: 2}
	cat := newCatalogWith(failingEntry, otherEntry)
	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI:   &fakeProvider{id: schemas.ProviderOpenAI, result: &schemas.AdapterResult{ModelOutput: "ok"}},
		schemas.ProviderTogether: &fakeProvider{id: schemas.ProviderTogether, result: &schemas.AdapterResult{ModelOutput: "ok"}},
	}}
	unreachableGuard := &fakeGuardClient{err: schemas.NewProvider(schemas.ErrGuardTransportError, "", "guard unreachable", errors.New("dial tcp: refused"))}
	pl := pipeline.New(cat, registry, unreachableGuard, nil)

	req := schemas.QueryRequest{
		LogicalModel:  string(catalog.GPT4o),
		SpeedPriority: schemas.SpeedPriorityHigh,
		Messages:      []schemas.Message{schemas.NewTextMessage(schemas.RoleUser, "hello")},
		Guards:        []schemas.GuardConfig{schemas.NewRegexGuardConfig(schemas.GuardTypePreQuery, true, "blocked", ".*")},
	}

	_, err := pl.Execute(context.Background(), req)

	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrGuardTransportError))
}

func TestExecute_BlockingPostGuardSubstitutesResponse(t *testing.T) {
	entry := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI}
	cat := newCatalogWith(entry)
	registry := &fakeRegistry{byID: map[schemas.ProviderId]schemas.Provider{
		schemas.ProviderOpenAI: &fakeProvider{id: schemas.ProviderOpenAI, result: &schemas.AdapterResult{ModelOutput: "sensitive output"}},
	}}
	blockingGuard := &fakeGuardClient{result: &schemas.GuardError{GuardName: schemas.GuardNamePresidio, Failure: true, BlockRequest: true, Message: "redacted"}}
	pl := pipeline.New(cat, registry, blockingGuard, nil)

	req := schemas.QueryRequest{
		LogicalModel: string(catalog.GPT4o),
		Messages:     []schemas.Message{schemas.NewTextMessage(schemas.RoleUser, "hello")},
		Guards:       []schemas.GuardConfig{schemas.NewEntityGuardConfig(schemas.GuardTypePostQuery, true, "redacted", []string{"EMAIL"})},
	}

	resp, err := pl.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "redacted", resp.ModelResponse)
	require.Len(t, resp.GuardErrors, 1)
	assert.True(t, resp.GuardErrors[0].BlockRequest)
}
