package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTable() PolicyTable {
	return PolicyTable{
		TierAnonymous: {
			CategoryDefault: {Limit: 60, Window: time.Minute},
			CategorySearch:  {Limit: 30, Window: time.Minute},
		},
		TierPremium: {
			CategoryDefault: {Limit: 300, Window: time.Minute},
		},
	}
}

func TestPolicyTable_ResolveExactMatch(t *testing.T) {
	p := testTable().Resolve(TierAnonymous, CategorySearch)
	require.Equal(t, 30, p.Limit)
}

func TestPolicyTable_MissingCategoryUsesTierDefault(t *testing.T) {
	p := testTable().Resolve(TierPremium, CategorySearch)
	require.Equal(t, 300, p.Limit)
}

func TestPolicyTable_UnknownTierUsesAnonymous(t *testing.T) {
	p := testTable().Resolve(Tier("mystery"), CategorySearch)
	require.Equal(t, 30, p.Limit)
}

func TestPolicyTable_EmptyTableDeniesEverything(t *testing.T) {
	p := PolicyTable{}.Resolve(TierAnonymous, CategoryDefault)
	require.Equal(t, 0, p.Limit)
	require.Positive(t, p.Window)
}

func TestCategoryPrefixes_LongestPrefixWins(t *testing.T) {
	prefixes := CategoryPrefixes{
		"/api":           CategoryDefault,
		"/api/v1/search": CategorySearch,
		"/api/v1":        CategoryHeavy,
	}
	require.Equal(t, CategorySearch, prefixes.Resolve("/api/v1/search/jobs"))
	require.Equal(t, CategoryHeavy, prefixes.Resolve("/api/v1/posts"))
	require.Equal(t, CategoryDefault, prefixes.Resolve("/api/health"))
}

func TestCategoryPrefixes_UnmatchedPathIsDefault(t *testing.T) {
	prefixes := CategoryPrefixes{"/api/v1/search": CategorySearch}
	require.Equal(t, CategoryDefault, prefixes.Resolve("/totally/elsewhere"))
}

func TestDefaultConfig_AnonymousIsStricterThanPremium(t *testing.T) {
	cfg := DefaultConfig()
	anon := cfg.Policies.Resolve(TierAnonymous, CategoryDefault)
	premium := cfg.Policies.Resolve(TierPremium, CategoryDefault)
	require.Less(t, anon.Limit, premium.Limit)
}
