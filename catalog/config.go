package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/schemas"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultConfigPath mirrors the original server's default, used when
	// OPTIMODEL_CONFIG_PATH is unset.
	DefaultConfigPath = "/etc/optimodel/config.json"

	// DefaultPricingURL is the LiteLLM-style remote pricing document merged
	// into each ProviderEntry at load and Reload time.
	DefaultPricingURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"
)

// fileConfig is the on-disk shape read from OPTIMODEL_CONFIG_PATH: one entry
// per LogicalModel, each fanning out to the providers that can serve it
// (spec.md §3 ProviderEntry, grounded on original_source Config.py).
type fileConfig struct {
	Models []fileModelEntry `json:"models"`
}

type fileModelEntry struct {
	LogicalModel string                 `json:"modelName"`
	Providers    []fileProviderEntry    `json:"providers"`
}

type fileProviderEntry struct {
	ProviderID     string  `json:"providerId"`
	NativeModelID  string  `json:"nativeModelId"`
	MaxGenLen      int     `json:"maxGenLen"`
	SpeedRank      int     `json:"speedRank"`
	SupportsSAAS   bool    `json:"supportsSAAS"`
	SupportsJSON   bool    `json:"supportsJsonMode"`
	SupportsImages bool    `json:"supportsImages"`
	LiteLLMIndex   string  `json:"liteLLMIndex"`
}

// pricingRecord is the subset of a LiteLLM model_prices_and_context_window.json
// entry this catalog cares about. Prices there are USD per single token; we
// convert to per-million on load.
type pricingRecord struct {
	InputCostPerToken               float64 `json:"input_cost_per_token"`
	OutputCostPerToken              float64 `json:"output_cost_per_token"`
	InputCostPerTokenAbove128kTokens  *float64 `json:"input_cost_per_token_above_128k_tokens"`
	OutputCostPerTokenAbove128kTokens *float64 `json:"output_cost_per_token_above_128k_tokens"`
}

// Loader owns config-file parsing and remote pricing enrichment. It is
// reused across Load and Reload so the singleflight group dedupes
// concurrent refreshes (spec.md §6: the catalog is a process-wide
// read-only-after-load singleton; this is the "after-load" part).
type Loader struct {
	configPath string
	pricingURL string
	http       *network.Client
	logger     schemas.Logger
	sf         singleflight.Group
}

// NewLoader builds a Loader reading OPTIMODEL_CONFIG_PATH (or
// DefaultConfigPath) and DefaultPricingURL.
func NewLoader(logger schemas.Logger) *Loader {
	path := os.Getenv("OPTIMODEL_CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	if logger == nil {
		logger = schemas.NopLogger{}
	}
	return &Loader{
		configPath: path,
		pricingURL: DefaultPricingURL,
		http:       network.New(10 * time.Second),
		logger:     logger,
	}
}

// Load reads the config file, validates it against the closed LogicalModel
// set and the supplied adapter registry, enriches pricing, and returns a
// ready-to-use Catalog.
//
// Validation policy (grounded on original_source Config.py):
//   - An entry naming an unknown LogicalModel is a fatal error: the whole
//     load fails (spec.md Invariant 1).
//   - An entry naming a ProviderId with no registered adapter is dropped
//     with a warning; the rest of the file still loads.
func (l *Loader) Load(ctx context.Context, knownProviders map[schemas.ProviderId]bool, policy Policy) (*Catalog, error) {
	raw, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.configPath, err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.configPath, err)
	}

	table := make(map[LogicalModel][]ProviderEntry)
	for _, m := range cfg.Models {
		lm := LogicalModel(m.LogicalModel)
		if !IsKnownLogicalModel(lm) {
			return nil, fmt.Errorf("config %s: unknown logical model %q", l.configPath, m.LogicalModel)
		}
		for _, p := range m.Providers {
			pid := schemas.ProviderId(p.ProviderID)
			if knownProviders != nil && !knownProviders[pid] {
				l.logger.Warn(fmt.Sprintf("config %s: dropping %s entry for unregistered provider %q", l.configPath, m.LogicalModel, p.ProviderID))
				continue
			}
			table[lm] = append(table[lm], ProviderEntry{
				LogicalModel:   lm,
				ProviderID:     pid,
				NativeModelID:  p.NativeModelID,
				MaxGenLen:      p.MaxGenLen,
				SpeedRank:      p.SpeedRank,
				SupportsSAAS:   p.SupportsSAAS,
				SupportsJSON:   p.SupportsJSON,
				SupportsImages: p.SupportsImages,
				LiteLLMIndex:   p.LiteLLMIndex,
			})
		}
	}

	cat := New(policy)
	cat.replace(table)

	if err := l.enrichPricing(ctx, cat); err != nil {
		l.logger.Warn(fmt.Sprintf("pricing enrichment failed, continuing without remote prices: %v", err))
	}
	return cat, nil
}

// Reload re-reads the config file and re-fetches pricing, swapping the
// catalog's table atomically. Concurrent Reload calls share a single
// in-flight fetch via singleflight (spec.md §6 concurrency model: one
// goroutine per query must never block on another's catalog refresh).
func (l *Loader) Reload(ctx context.Context, cat *Catalog, knownProviders map[schemas.ProviderId]bool) error {
	fresh, err := l.Load(ctx, knownProviders, cat.Policy)
	if err != nil {
		return err
	}
	cat.mu.Lock()
	cat.byName = fresh.byName
	cat.mu.Unlock()
	return nil
}

// enrichPricing fetches the remote LiteLLM pricing document and fills in
// PricePer1M{Input,Output}[Above128K] on every ProviderEntry whose
// LiteLLMIndex matches a key in the document. Missing keys are left at
// their config-file defaults (spec.md: "cost=nil when a rate is missing" —
// here that's simply an entry with zero prices, which the pipeline treats
// as "no pricing data").
func (l *Loader) enrichPricing(ctx context.Context, cat *Catalog) error {
	v, err, _ := l.sf.Do("pricing", func() (interface{}, error) {
		return l.fetchPricingDoc(ctx)
	})
	if err != nil {
		return err
	}
	doc, ok := v.(map[string]pricingRecord)
	if !ok {
		return fmt.Errorf("unexpected pricing document type %T", v)
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	for lm, entries := range cat.byName {
		for i, e := range entries {
			rec, found := doc[e.LiteLLMIndex]
			if !found || e.LiteLLMIndex == "" {
				continue
			}
			entries[i].PricePer1MInput = rec.InputCostPerToken * 1_000_000
			entries[i].PricePer1MOutput = rec.OutputCostPerToken * 1_000_000
			if rec.InputCostPerTokenAbove128kTokens != nil {
				above := *rec.InputCostPerTokenAbove128kTokens * 1_000_000
				entries[i].PricePer1MInputAbove128K = &above
			}
			if rec.OutputCostPerTokenAbove128kTokens != nil {
				above := *rec.OutputCostPerTokenAbove128kTokens * 1_000_000
				entries[i].PricePer1MOutputAbove128K = &above
			}
		}
		cat.byName[lm] = entries
	}
	return nil
}

func (l *Loader) fetchPricingDoc(ctx context.Context) (map[string]pricingRecord, error) {
	var doc map[string]pricingRecord
	if err := l.http.GetJSON(ctx, l.pricingURL, &doc); err != nil {
		return nil, fmt.Errorf("fetch pricing document: %w", err)
	}
	return doc, nil
}
