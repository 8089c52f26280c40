package model

import "github.com/mootai/moot/pkg/domain/types"

// PersonaConfig selects the policy fragments rendered into the instruction.
// Temperament only matters for the judge; the strategies only matter for the
// parties.
type PersonaConfig struct {
	CurrentRole      types.Role
	JudgeTemperament types.JudgeTemperament
	UserIdentity     types.Role
	UserStrategy     types.Strategy
	OpponentStrategy types.Strategy
}

// PartyStrategy returns the strategy governing the current role: the user's
// own choice when the current role is the user's identity, the opponent
// strategy otherwise. Unset or unknown values fall back to balanced.
func (p PersonaConfig) PartyStrategy() types.Strategy {
	if p.CurrentRole.Normalize() == p.UserIdentity.Normalize() {
		return p.UserStrategy.Normalize()
	}
	return p.OpponentStrategy.Normalize()
}
