package policy

import "strings"

// WhitelistGate answers membership checks against the configured exemption
// set. Reddit usernames are case-insensitive, so entries and lookups are
// folded to lower case. Immutable after construction, safe for concurrent
// reads.
type WhitelistGate struct {
	users map[string]struct{}
}

func NewWhitelistGate(usernames []string) *WhitelistGate {
	users := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		users[strings.ToLower(name)] = struct{}{}
	}
	return &WhitelistGate{users: users}
}

// IsExempt reports whether username is excluded from enforcement.
func (g *WhitelistGate) IsExempt(username string) bool {
	if g == nil {
		return false
	}
	_, ok := g.users[strings.ToLower(strings.TrimSpace(username))]
	return ok
}

// Len returns the number of whitelisted users.
func (g *WhitelistGate) Len() int {
	if g == nil {
		return 0
	}
	return len(g.users)
}
