package gateway

import (
	"context"

	"raffler/service"
)

// StaticEligibilityGate answers participation checks from a fixed blocklist
// of alias IDs, typically loaded from configuration at startup
type StaticEligibilityGate struct {
	blocked map[string]struct{}
}

// NewStaticEligibilityGate creates an eligibility gate blocking the given alias IDs
func NewStaticEligibilityGate(blockedAliasIDs []string) service.EligibilityGate {
	blocked := make(map[string]struct{}, len(blockedAliasIDs))
	for _, id := range blockedAliasIDs {
		blocked[id] = struct{}{}
	}
	return &StaticEligibilityGate{blocked: blocked}
}

func (g *StaticEligibilityGate) CanParticipate(ctx context.Context, aliasID string) (bool, error) {
	if aliasID == "" {
		return false, nil
	}
	_, blocked := g.blocked[aliasID]
	return !blocked, nil
}
