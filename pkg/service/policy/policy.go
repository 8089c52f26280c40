package policy

import (
	_ "embed"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
)

//go:embed policy.toml
var defaultPolicy []byte

// Table is the persona policy: fixed sentences keyed by role, judge
// temperament and advocacy strategy. A Table is immutable after Parse, so it
// is safe for concurrent use.
type Table struct {
	Version        string            `toml:"version"`
	Generic        string            `toml:"generic"`
	StrategyPrefix string            `toml:"strategy_prefix"`
	RoleLabels     map[string]string `toml:"role_labels"`
	Temperaments   map[string]string `toml:"temperaments"`
	Judge          JudgePolicy       `toml:"judge"`
	PartyDuties    map[string]string `toml:"party_duties"`
	Strategies     map[string]string `toml:"strategies"`
}

// JudgePolicy holds the duty and constraint clauses appended after the
// temperament sentence, one per line.
type JudgePolicy struct {
	Clauses []string `toml:"clauses"`
}

// Validate checks that every enum value has a non-empty sentence, so that
// rendering never has to guess.
func (t *Table) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return goerr.Wrap(ErrMissingVersion, "policy table has no version")
	}
	if strings.TrimSpace(t.Generic) == "" {
		return missing("generic", "generic")
	}
	if t.StrategyPrefix == "" {
		return missing("strategy_prefix", "strategy_prefix")
	}

	for _, role := range types.AllRoles() {
		if strings.TrimSpace(t.RoleLabels[role.String()]) == "" {
			return missing("role_labels", role.String())
		}
		if role.IsParty() && strings.TrimSpace(t.PartyDuties[role.String()]) == "" {
			return missing("party_duties", role.String())
		}
	}
	for _, temperament := range types.AllJudgeTemperaments() {
		if strings.TrimSpace(t.Temperaments[temperament.String()]) == "" {
			return missing("temperaments", temperament.String())
		}
	}
	for _, strategy := range types.AllStrategies() {
		if strings.TrimSpace(t.Strategies[strategy.String()]) == "" {
			return missing("strategies", strategy.String())
		}
	}

	if len(t.Judge.Clauses) == 0 {
		return missing("judge", "clauses")
	}
	for _, clause := range t.Judge.Clauses {
		if strings.TrimSpace(clause) == "" {
			return missing("judge", "clauses")
		}
	}

	return nil
}

func missing(section, entry string) error {
	return goerr.Wrap(ErrMissingClause, "policy entry is empty",
		goerr.V(SectionKey, section),
		goerr.V(EntryKey, entry))
}

// Parse decodes and validates a policy table
func Parse(data []byte) (*Table, error) {
	var table Table
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, goerr.Wrap(ErrInvalidPolicy, "failed to parse policy TOML", goerr.V("cause", err.Error()))
	}
	if err := table.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed")
	}
	return &table, nil
}

// LoadFile reads a policy table from a TOML file
func LoadFile(path string) (*Table, error) {
	// #nosec G304 - path is provided by CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V(PolicyPathKey, path))
	}

	table, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load policy file", goerr.V(PolicyPathKey, path))
	}
	return table, nil
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultPolicy)
})

// Default returns the built-in policy table
func Default() *Table {
	table, err := loadDefault()
	if err != nil {
		panic("built-in policy table is invalid: " + err.Error())
	}
	return table
}

// DefaultSource returns the built-in policy table as TOML
func DefaultSource() []byte {
	out := make([]byte, len(defaultPolicy))
	copy(out, defaultPolicy)
	return out
}

// RoleLabel localizes a role. Unknown roles pass through unchanged and an
// empty role is spoken by the judge.
func (t *Table) RoleLabel(role types.Role) string {
	normalized := role.Normalize()
	if normalized == "" {
		return t.RoleLabels[types.RoleJudge.String()]
	}
	if label, ok := t.RoleLabels[normalized.String()]; ok {
		return label
	}
	return string(role)
}

// Instruction renders the instruction text for a persona. It is total: any
// input, including unknown enum values, yields non-empty text.
func (t *Table) Instruction(persona model.PersonaConfig) string {
	role := persona.CurrentRole.Normalize()

	var b strings.Builder
	switch {
	case role == types.RoleJudge:
		b.WriteString(t.Temperaments[persona.JudgeTemperament.Normalize().String()])
		for _, clause := range t.Judge.Clauses {
			b.WriteString("\n")
			b.WriteString(clause)
		}

	case role.IsParty():
		b.WriteString(t.PartyDuties[role.String()])
		b.WriteString("\n")
		b.WriteString(t.StrategyPrefix)
		b.WriteString(t.Strategies[persona.PartyStrategy().String()])

	default:
		b.WriteString(t.Generic)
	}
	return b.String()
}
