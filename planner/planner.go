// Package planner implements the pure function that turns a QueryRequest
// into an ordered list of candidate ProviderEntry values (spec.md §4.2),
// grounded on original_source Planner/Planner.py's getAllAvailableProviders
// and orderProviders.
package planner

import (
	"sort"

	"github.com/lytixlabs/optimodel/catalog"
	"github.com/lytixlabs/optimodel/schemas"
)

// Plan returns the ordered candidate list for req, or a *schemas.Error of
// kind NoSuchModel / NoEligibleProvider. It has no side effects and performs
// no I/O; every input is already resident in cat and req (spec.md §6: the
// Planner never suspends).
func Plan(req schemas.QueryRequest, cat *catalog.Catalog) ([]catalog.ProviderEntry, error) {
	lm := catalog.LogicalModel(req.LogicalModel)
	if !catalog.IsKnownLogicalModel(lm) {
		return nil, schemas.New(schemas.ErrNoSuchModel, "unknown logical model: "+req.LogicalModel)
	}

	entries := cat.Lookup(lm)
	if len(entries) == 0 {
		return nil, schemas.New(schemas.ErrNoSuchModel, "no providers configured for: "+req.LogicalModel)
	}

	candidates := make([]catalog.ProviderEntry, 0, len(entries))
	for _, e := range entries {
		if req.Provider != "" && e.ProviderID != req.Provider {
			continue
		}
		if req.JSONMode && !e.SupportsJSON {
			continue
		}
		if cat.Policy.FilterByMaxGenLen && req.MaxGenLen != nil && e.MaxGenLen < *req.MaxGenLen {
			continue
		}
		if !hasCredentialOrSAAS(req, e) {
			continue
		}
		candidates = append(candidates, e)
	}

	if len(candidates) == 0 {
		return nil, schemas.New(schemas.ErrNoEligibleProvider, "no eligible provider for: "+req.LogicalModel)
	}

	orderCandidates(candidates, req.SpeedPriority)
	return candidates, nil
}

// hasCredentialOrSAAS mirrors getAllAvailableProviders' SAAS-mode filter. A
// nil Credentials bag means the request runs in self-hosted mode: every
// candidate is eligible here, and a preconfigured, process-wide client
// handles the actual call. A non-nil bag (even an empty one) means the
// request runs in SAAS mode: a candidate is eligible only if its adapter
// supports SAAS dispatch at all, and the bag carries a credential for it.
func hasCredentialOrSAAS(req schemas.QueryRequest, e catalog.ProviderEntry) bool {
	if req.Credentials == nil {
		return true
	}
	if !e.SupportsSAAS {
		return false
	}
	_, ok := req.Credentials.For(e.ProviderID)
	return ok
}

// orderCandidates sorts in place: by SpeedRank (ascending, lower is faster)
// when priority is high, otherwise by AvgPrice (ascending). Ties preserve
// the catalog's original insertion order (spec.md Invariant: "stable sort").
func orderCandidates(candidates []catalog.ProviderEntry, priority schemas.SpeedPriority) {
	if priority == schemas.SpeedPriorityHigh {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].SpeedRank < candidates[j].SpeedRank
		})
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AvgPrice() < candidates[j].AvgPrice()
	})
}
