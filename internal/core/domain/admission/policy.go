package admission

import (
	"sort"
	"strings"
	"time"
)

// Category classifies an endpoint for rate limiting purposes.
type Category string

const (
	CategoryDefault Category = "default"
	CategoryAuth    Category = "auth"
	CategoryHeavy   Category = "heavy"
	CategoryUpload  Category = "upload"
	CategorySearch  Category = "search"
)

func (c Category) String() string {
	return string(c)
}

// Policy is a single rate limit rule: at most Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// PolicyTable maps (tier, category) to a policy. It is built once at startup
// and treated as immutable afterwards.
type PolicyTable map[Tier]map[Category]Policy

// Resolve returns the policy for tier and category. Missing categories fall
// back to the tier's default policy; a tier with no table at all falls back to
// the anonymous tier. Misconfiguration fails toward the strictest policy,
// never the most permissive.
func (t PolicyTable) Resolve(tier Tier, category Category) Policy {
	byCategory, ok := t[tier]
	if !ok {
		byCategory = t[TierAnonymous]
	}
	if p, ok := byCategory[category]; ok {
		return p
	}
	if p, ok := byCategory[CategoryDefault]; ok {
		return p
	}
	if p, ok := t[TierAnonymous][CategoryDefault]; ok {
		return p
	}
	// Table is empty; deny everything rather than allowing unlimited traffic.
	return Policy{Limit: 0, Window: time.Minute}
}

// CategoryPrefixes maps request path prefixes to categories. Unmatched paths
// use the default category.
type CategoryPrefixes map[string]Category

// Resolve returns the category whose prefix is the longest match for path.
func (p CategoryPrefixes) Resolve(path string) Category {
	best := CategoryDefault
	bestLen := -1
	// Deterministic iteration keeps ties stable across runs.
	prefixes := make([]string, 0, len(p))
	for prefix := range p {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			best = p[prefix]
			bestLen = len(prefix)
		}
	}
	return best
}
