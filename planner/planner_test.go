package planner_test

import (
	"testing"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/planner"
	"github.com/lytixlabs/optimodel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, entries ...catalog.ProviderEntry) *catalog.Catalog {
	t.Helper()
	return catalog.NewFromEntries(catalog.DefaultPolicy, entries)
}

func TestPlan_UnknownModelIsNoSuchModel(t *testing.T) {
	cat := catalog.New(catalog.DefaultPolicy)
	req := schemas.QueryRequest{LogicalModel: "not_a_real_model"}

	_, err := planner.Plan(req, cat)

	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrNoSuchModel))
}

func TestPlan_NoProvidersConfiguredIsNoSuchModel(t *testing.T) {
	cat := catalog.New(catalog.DefaultPolicy)
	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o)}

	_, err := planner.Plan(req, cat)

	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrNoSuchModel))
}

func TestPlan_SortsByAvgPriceWhenNoSpeedPriority(t *testing.T) {
	cheap := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI, SpeedRank: 2, PricePer1MInput: 1, PricePer1MOutput: 1}
	expensive := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderTogether, SpeedRank: 1, PricePer1MInput: 10, PricePer1MOutput: 10}
	cat := newTestCatalog(t, expensive, cheap)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o)}
	got, err := planner.Plan(req, cat)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, schemas.ProviderOpenAI, got[0].ProviderID)
	assert.Equal(t, schemas.ProviderTogether, got[1].ProviderID)
}

func TestPlan_SortsBySpeedRankWhenHighPriority(t *testing.T) {
	slow := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI, SpeedRank: 5, PricePer1MInput: 1, PricePer1MOutput: 1}
	fast := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderTogether, SpeedRank: 1, PricePer1MInput: 10, PricePer1MOutput: 10}
	cat := newTestCatalog(t, slow, fast)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), SpeedPriority: schemas.SpeedPriorityHigh}
	got, err := planner.Plan(req, cat)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, schemas.ProviderTogether, got[0].ProviderID)
	assert.Equal(t, schemas.ProviderOpenAI, got[1].ProviderID)
}

func TestPlan_JSONModeFiltersUnsupportedCandidates(t *testing.T) {
	supports := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI, SupportsJSON: true}
	unsupported := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderTogether, SupportsJSON: false}
	cat := newTestCatalog(t, supports, unsupported)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), JSONMode: true}
	got, err := planner.Plan(req, cat)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, schemas.ProviderOpenAI, got[0].ProviderID)
}

func TestPlan_RequestedProviderNarrowsCandidates(t *testing.T) {
	a := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI}
	b := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderTogether}
	cat := newTestCatalog(t, a, b)

	req := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), Provider: schemas.ProviderTogether}
	got, err := planner.Plan(req, cat)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, schemas.ProviderTogether, got[0].ProviderID)
}

func TestPlan_SAASModeRequiresMatchingCredential(t *testing.T) {
	needsCred := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI, SupportsSAAS: true}
	cat := newTestCatalog(t, needsCred)

	noCreds := schemas.QueryRequest{LogicalModel: string(catalog.GPT4o), Credentials: schemas.NewBag()}
	_, err := planner.Plan(noCreds, cat)
	require.Error(t, err)
	assert.True(t, schemas.IsKind(err, schemas.ErrNoEligibleProvider))

	withCreds := schemas.QueryRequest{
		LogicalModel: string(catalog.GPT4o),
		Credentials:  schemas.NewBag(schemas.OpenAICredentials{OpenAIKey: "sk-test"}),
	}
	got, err := planner.Plan(withCreds, cat)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
