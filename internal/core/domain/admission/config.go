package admission

import "time"

// Config is the static configuration of the admission pipeline. It is built
// once at startup and passed by reference into each component; none of its
// fields may be mutated afterwards.
type Config struct {
	// Rate limiting
	Policies         PolicyTable
	CategoryPrefixes CategoryPrefixes

	// Threat detection
	BotSignatures       []string // lowercase substrings matched against User-Agent
	CrawlerAllowlist    []string // lowercase substrings of known benign crawlers
	AttackPatterns      []PatternRule
	SuspiciousThreshold int           // requests per minute per IP before blocking
	BlockDuration       time.Duration // TTL of detector-created block records

	// Request validation
	MaxPayloadBytes     int64
	AllowedContentTypes []string
	ProtectedPaths      []string // path prefixes requiring an authenticated caller
	SpoofHeaders        []string // forwarding headers logged when present

	// Pipeline
	BypassPaths []string // exact paths that skip the pipeline entirely

	// Alerting
	AlertThreshold int // violations per client per hour before an ops alert
}

// DefaultConfig returns the production configuration. Callers embedding the
// gateway can start from it and adjust individual fields before wiring.
func DefaultConfig() *Config {
	return &Config{
		Policies: PolicyTable{
			TierAnonymous: {
				CategoryDefault: {Limit: 60, Window: time.Minute},
				CategoryAuth:    {Limit: 10, Window: time.Minute},
				CategoryHeavy:   {Limit: 10, Window: time.Minute},
				CategoryUpload:  {Limit: 5, Window: time.Minute},
				CategorySearch:  {Limit: 30, Window: time.Minute},
			},
			TierAuthenticated: {
				CategoryDefault: {Limit: 120, Window: time.Minute},
				CategoryAuth:    {Limit: 20, Window: time.Minute},
				CategoryHeavy:   {Limit: 30, Window: time.Minute},
				CategoryUpload:  {Limit: 20, Window: time.Minute},
				CategorySearch:  {Limit: 60, Window: time.Minute},
			},
			TierPremium: {
				CategoryDefault: {Limit: 300, Window: time.Minute},
				CategoryAuth:    {Limit: 20, Window: time.Minute},
				CategoryHeavy:   {Limit: 100, Window: time.Minute},
				CategoryUpload:  {Limit: 60, Window: time.Minute},
				CategorySearch:  {Limit: 150, Window: time.Minute},
			},
			TierAdmin: {
				CategoryDefault: {Limit: 1000, Window: time.Minute},
				CategoryHeavy:   {Limit: 500, Window: time.Minute},
				CategoryUpload:  {Limit: 200, Window: time.Minute},
				CategorySearch:  {Limit: 500, Window: time.Minute},
			},
		},
		CategoryPrefixes: CategoryPrefixes{
			"/api/v1/auth":      CategoryAuth,
			"/api/v1/search":    CategorySearch,
			"/api/v1/uploads":   CategoryUpload,
			"/api/v1/analytics": CategoryHeavy,
			"/api/v1/export":    CategoryHeavy,
		},
		BotSignatures: []string{
			"bot", "crawler", "spider", "scraper",
			"curl", "wget", "python-requests", "go-http-client", "java/",
		},
		CrawlerAllowlist: []string{
			"googlebot", "bingbot", "duckduckbot", "slurp", "applebot",
		},
		AttackPatterns: []PatternRule{
			{Signature: "../", Kind: PatternPathTraversal},
			{Signature: "..\\", Kind: PatternPathTraversal},
			{Signature: "/etc/passwd", Kind: PatternPathTraversal},
			{Signature: "union select", Kind: PatternSQLInjection},
			{Signature: "drop table", Kind: PatternSQLInjection},
			{Signature: "' or '1'='1", Kind: PatternSQLInjection},
			{Signature: "; --", Kind: PatternSQLInjection},
			{Signature: "$(", Kind: PatternShellInjection},
			{Signature: "`;", Kind: PatternShellInjection},
			{Signature: "| sh", Kind: PatternShellInjection},
			{Signature: "&& rm ", Kind: PatternShellInjection},
			{Signature: "<script", Kind: PatternScriptInjection},
			{Signature: "javascript:", Kind: PatternScriptInjection},
			{Signature: "onerror=", Kind: PatternScriptInjection},
		},
		SuspiciousThreshold: 50,
		BlockDuration:       time.Hour,

		MaxPayloadBytes: 10 << 20, // 10 MiB
		AllowedContentTypes: []string{
			"application/json",
			"application/x-www-form-urlencoded",
			"multipart/form-data",
			"text/plain",
		},
		ProtectedPaths: []string{
			"/api/v1/me",
			"/api/v1/uploads",
			"/api/v1/applications",
		},
		SpoofHeaders: []string{
			"X-Forwarded-Host",
			"X-Original-URL",
			"X-Rewrite-URL",
			"X-Forwarded-Server",
		},

		BypassPaths: []string{"/health", "/ready", "/metrics"},

		AlertThreshold: 25,
	}
}
