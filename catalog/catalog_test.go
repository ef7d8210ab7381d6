package catalog_test

import (
	"testing"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsKnownLogicalModel(t *testing.T) {
	assert.True(t, catalog.IsKnownLogicalModel(catalog.GPT4o))
	assert.False(t, catalog.IsKnownLogicalModel(catalog.LogicalModel("not_a_model")))
}

func TestCatalog_LookupReturnsACopy(t *testing.T) {
	entry := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI}
	cat := catalog.NewFromEntries(catalog.DefaultPolicy, []catalog.ProviderEntry{entry})

	got := cat.Lookup(catalog.GPT4o)
	require.Len(t, got, 1)
	got[0].ProviderID = schemas.ProviderGroq

	again := cat.Lookup(catalog.GPT4o)
	require.Len(t, again, 1)
	assert.Equal(t, schemas.ProviderOpenAI, again[0].ProviderID, "mutating a looked-up slice must not affect the catalog's own table")
}

func TestCatalog_LookupUnknownModelReturnsEmpty(t *testing.T) {
	cat := catalog.New(catalog.DefaultPolicy)
	assert.Empty(t, cat.Lookup(catalog.GPT4o))
}

func TestProviderEntry_AvgPrice(t *testing.T) {
	e := catalog.ProviderEntry{PricePer1MInput: 2, PricePer1MOutput: 4}
	assert.Equal(t, 3.0, e.AvgPrice())
}

func TestCatalog_AllModelsDumpsEveryEntry(t *testing.T) {
	a := catalog.ProviderEntry{LogicalModel: catalog.GPT4o, ProviderID: schemas.ProviderOpenAI}
	b := catalog.ProviderEntry{LogicalModel: catalog.Claude3_5Sonnet, ProviderID: schemas.ProviderAnthropic}
	cat := catalog.NewFromEntries(catalog.DefaultPolicy, []catalog.ProviderEntry{a, b})

	all := cat.AllModels()
	require.Len(t, all, 2)
	assert.Len(t, all[catalog.GPT4o], 1)
	assert.Len(t, all[catalog.Claude3_5Sonnet], 1)
}
