package admission

import "fmt"

// Tier is the trust class of a caller, used to select a rate limit policy.
type Tier string

const (
	TierAnonymous     Tier = "anonymous"
	TierAuthenticated Tier = "authenticated"
	TierPremium       Tier = "premium"
	TierAdmin         Tier = "admin"
)

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	switch t {
	case TierAnonymous, TierAuthenticated, TierPremium, TierAdmin:
		return true
	default:
		return false
	}
}

// ClientIdentity identifies the caller of a single request. It is derived
// per request and never persisted.
type ClientIdentity struct {
	IP     string
	UserID string // empty for anonymous callers
	Tier   Tier
}

// Authenticated reports whether the identity carries a verified principal.
func (c ClientIdentity) Authenticated() bool {
	return c.UserID != ""
}

// Key returns the counting key for this client. Authenticated abuse is bound
// to the account even behind shared IPs; anonymous traffic is keyed by IP.
func (c ClientIdentity) Key() string {
	if c.Authenticated() {
		return fmt.Sprintf("user:%s:%s", c.UserID, c.IP)
	}
	return fmt.Sprintf("ip:%s", c.IP)
}
