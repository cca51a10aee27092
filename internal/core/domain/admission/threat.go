package admission

import "time"

// Block reasons recorded on BlockRecords and returned in threat verdicts.
const (
	ReasonExcessiveRate = "excessive request rate"
	ReasonBotBehavior   = "bot-like behavior"
	ReasonAttackPattern = "attack pattern detected"
	ReasonManualBlock   = "manually blocked"
)

// BlockRecord is a time-boxed deny entry keyed by client IP. At most one is
// active per IP; a new block overwrites the prior one and resets its TTL.
type BlockRecord struct {
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blocked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at the given instant.
func (b BlockRecord) Expired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// ThreatVerdict is the outcome of threat evaluation for one request.
type ThreatVerdict struct {
	Blocked bool
	Reason  string
}

// PatternKind tags an attack signature with the class of attack it detects.
type PatternKind string

const (
	PatternPathTraversal   PatternKind = "path_traversal"
	PatternSQLInjection    PatternKind = "sql_injection"
	PatternShellInjection  PatternKind = "shell_injection"
	PatternScriptInjection PatternKind = "script_injection"
)

// PatternRule pairs a lowercase signature substring with its kind. Rules are
// checked in a flat loop; order carries no meaning.
type PatternRule struct {
	Signature string
	Kind      PatternKind
}
