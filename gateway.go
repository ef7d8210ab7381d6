// Package optimodel wires the Catalog, provider Registry, Guard Client and
// Query Pipeline into a single Gateway, the module's top-level entry point.
// There is no HTTP server here: exposing these methods over
// `POST {base}/query`, `GET {base}/list-models` and `GET {base}/health` is
// the caller's routing framework's job (spec.md §1 Non-goals).
package optimodel

import (
	"context"
	"fmt"
	"os"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/guard"
	"github.com/lytixlabs/optimodel/logging"
	"github.com/lytixlabs/optimodel/network"
	"github.com/lytixlabs/optimodel/pipeline"
	"github.com/lytixlabs/optimodel/providers"
	"github.com/lytixlabs/optimodel/schemas"
)

// Gateway is the process-wide, long-lived object a host program constructs
// once at startup and reuses for every incoming request.
type Gateway struct {
	catalog  *catalog.Catalog
	registry *providers.Registry
	pipeline *pipeline.Pipeline
	loader   *catalog.Loader
	logger   schemas.Logger
}

// Config controls how New wires the Gateway together.
type Config struct {
	// Logger defaults to logging.New(schemas.LogLevelInfo) when nil.
	Logger schemas.Logger
	// Policy holds the planner knobs stored on the loaded catalog; its zero
	// value equals catalog.DefaultPolicy. The catalog loader always validates
	// config entries against every adapter New wires up.
	Policy catalog.Policy
}

// saasMode reports whether OPTIMODEL_SAAS_MODE is set truthily, switching
// every adapter from a preconfigured static client to per-request
// credential dispatch (spec.md §7 env vars).
func saasMode() bool {
	v := os.Getenv("OPTIMODEL_SAAS_MODE")
	return v == "1" || v == "true"
}

// New loads the catalog from OPTIMODEL_CONFIG_PATH, builds every provider
// adapter, validates self-hosted credentials (logging, not failing, on a
// bad one, per original_source Config.py's warn-and-continue policy), and
// returns a ready-to-use Gateway.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(schemas.LogLevelInfo)
	}

	httpClient := network.New(network.DefaultTimeout)
	saas := saasMode()

	openaiKey, anthropicKey, groqKey, togetherKey, mistralKey, codestralKey, geminiKey := "", "", "", "", "", "", ""
	if !saas {
		openaiKey = os.Getenv("OPENAI_API_KEY")
		anthropicKey = os.Getenv("ANTHROPIC_API_KEY")
		groqKey = os.Getenv("GROQ_API_KEY")
		togetherKey = os.Getenv("TOGETHER_API_KEY")
		mistralKey = os.Getenv("MISTRAL_API_KEY")
		codestralKey = os.Getenv("MISTRAL_CODESTRAL_API_KEY")
		geminiKey = os.Getenv("GEMINI_API_KEY")
	}

	bedrockRegion := os.Getenv("AWS_REGION")
	if bedrockRegion == "" {
		bedrockRegion = "us-east-1"
	}

	registry := providers.NewRegistry(
		providers.NewOpenAIAdapter(httpClient, openaiKey),
		providers.NewAnthropicAdapter(httpClient, anthropicKey),
		providers.NewGroqAdapter(httpClient, groqKey),
		providers.NewTogetherAdapter(httpClient, togetherKey),
		providers.NewMistralAIAdapter(httpClient, mistralKey),
		providers.NewCodestralAdapter(httpClient, codestralKey),
		providers.NewGeminiAdapter(httpClient, geminiKey),
		providers.NewBedrockAdapter(ctx, bedrockRegion),
	)

	if !saas {
		for _, p := range registry.All() {
			if !p.Validate(ctx) {
				logger.Warn(fmt.Sprintf("provider %s failed startup validation, will still be attempted at query time", p.ProviderID()))
			}
		}
	}

	knownProviders := make(map[schemas.ProviderId]bool)
	for _, p := range registry.All() {
		knownProviders[p.ProviderID()] = true
	}

	loader := catalog.NewLoader(logger)
	cat, err := loader.Load(ctx, knownProviders, cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	guardClient := guard.New(httpClient)
	pl := pipeline.New(cat, registry, guardClient, logger)

	return &Gateway{catalog: cat, registry: registry, pipeline: pl, loader: loader, logger: logger}, nil
}

// QueryModel executes one request through the full Query Pipeline.
func (g *Gateway) QueryModel(ctx context.Context, req schemas.QueryRequest) (*schemas.QueryResponse, error) {
	return g.pipeline.Execute(ctx, req)
}

// ListModels dumps the catalog's full LogicalModel -> ProviderEntry table
// (spec.md §10 supplemented feature; §6 GET {base}/list-models).
func (g *Gateway) ListModels() map[catalog.LogicalModel][]catalog.ProviderEntry {
	return g.catalog.AllModels()
}

// Health reports whether the gateway has a non-empty catalog loaded. It
// does not probe any provider — that's what startup Validate() is for
// (spec.md §6 GET {base}/health).
func (g *Gateway) Health() bool {
	return len(g.catalog.AllModels()) > 0
}

// Reload re-reads the config file and refreshes remote pricing without
// restarting the process (spec.md §5.1 Reload()).
func (g *Gateway) Reload(ctx context.Context) error {
	knownProviders := make(map[schemas.ProviderId]bool)
	for _, p := range g.registry.All() {
		knownProviders[p.ProviderID()] = true
	}
	return g.loader.Reload(ctx, g.catalog, knownProviders)
}
