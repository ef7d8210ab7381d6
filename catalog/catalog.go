package catalog

import (
	"sync"

	"github.com/lytixlabs/optimodel/schemas"
)

// ProviderEntry is one concrete (provider, native-model-id) binding for a
// LogicalModel, with pricing and capability metadata (spec.md §3).
type ProviderEntry struct {
	LogicalModel   LogicalModel
	ProviderID     schemas.ProviderId
	NativeModelID  string
	MaxGenLen      int
	SpeedRank      int
	SupportsSAAS   bool
	SupportsJSON   bool
	SupportsImages bool

	// LiteLLMIndex keys this entry into the remote pricing document; used
	// only during catalog enrichment, not by the planner or pipeline.
	LiteLLMIndex string

	PricePer1MInput            float64
	PricePer1MOutput           float64
	PricePer1MInputAbove128K   *float64
	PricePer1MOutputAbove128K  *float64
}

// AvgPrice is the Planner's cost sort key: the mean of the base input/output
// per-million-token prices (spec.md Invariant 2).
func (e ProviderEntry) AvgPrice() float64 {
	return (e.PricePer1MInput + e.PricePer1MOutput) / 2
}

// Policy holds configurable planner knobs that are not part of the core
// invariants (spec.md §9 Open Question 1).
type Policy struct {
	// FilterByMaxGenLen reinstates the older planner behavior of dropping
	// candidates whose MaxGenLen is below the request's. Default: false —
	// capacity enforcement is the adapter's responsibility in the current
	// contract.
	FilterByMaxGenLen bool
}

// DefaultPolicy is OFF for FilterByMaxGenLen per spec.md §9 Open Question 1.
var DefaultPolicy = Policy{FilterByMaxGenLen: false}

// Catalog is the process-wide, read-only-after-load registry mapping
// LogicalModel to its ordered-by-nothing-yet list of ProviderEntry values.
// Safe to share across concurrent pipeline invocations without locking once
// built; Reload() swaps the whole table atomically under a mutex.
type Catalog struct {
	mu     sync.RWMutex
	byName map[LogicalModel][]ProviderEntry
	Policy Policy
}

// New builds an empty Catalog. Use a Loader to populate it from config.
func New(policy Policy) *Catalog {
	return &Catalog{byName: make(map[LogicalModel][]ProviderEntry), Policy: policy}
}

// NewFromEntries builds a Catalog directly from a flat entry list, grouping
// by LogicalModel. Used by tests and by any caller that already has entries
// in memory rather than a config file on disk.
func NewFromEntries(policy Policy, entries []ProviderEntry) *Catalog {
	table := make(map[LogicalModel][]ProviderEntry)
	for _, e := range entries {
		table[e.LogicalModel] = append(table[e.LogicalModel], e)
	}
	c := New(policy)
	c.replace(table)
	return c
}

// Lookup returns every ProviderEntry registered for logicalModel, in
// unspecified order — the Planner is responsible for ordering (spec.md
// §4.1).
func (c *Catalog) Lookup(logicalModel LogicalModel) []ProviderEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := c.byName[logicalModel]
	out := make([]ProviderEntry, len(entries))
	copy(out, entries)
	return out
}

// AllModels dumps the full table, for the list-models surface (spec.md §6,
// §10 supplemented feature).
func (c *Catalog) AllModels() map[LogicalModel][]ProviderEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[LogicalModel][]ProviderEntry, len(c.byName))
	for k, v := range c.byName {
		cp := make([]ProviderEntry, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// replace atomically swaps the whole table, used by Load/Reload.
func (c *Catalog) replace(table map[LogicalModel][]ProviderEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName = table
}
