package directive

import (
	"strings"

	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/policy"
)

// Section headings of a composed background
const (
	HeadingIdentity  = "【用户身份】"
	HeadingMaterials = "【庭前资料】"
	HeadingCase      = "【案件描述】"
)

// Compiler builds directives from a policy table. It holds no other state;
// Compile is a pure function of its input.
type Compiler struct {
	table *policy.Table
}

func New(table *policy.Table) *Compiler {
	return &Compiler{table: table}
}

// Version returns the policy table version stamped on every directive
func (c *Compiler) Version() string {
	return c.table.Version
}

// Compile assembles the four-field directive. The background is used as
// given.
func (c *Compiler) Compile(input model.DirectiveInput) *model.Directive {
	return &model.Directive{
		SchemaVersion: c.table.Version,
		AgentRole:     c.table.RoleLabel(input.Persona.CurrentRole),
		Background:    input.Background,
		Context:       input.Transcript.Serialize(),
		Instruction:   c.table.Instruction(input.Persona),
	}
}

// ComposeBackground renders the user's identity, the resolved case
// documents and the case narrative into one background text. Empty parts
// are left out.
func (c *Compiler) ComposeBackground(identity types.Role, bundle *model.ContentBundle, narrative string) string {
	sections := make([]string, 0, 3)

	if identity != "" {
		sections = append(sections, HeadingIdentity+c.table.RoleLabel(identity))
	}
	if bundle != nil {
		if materials := bundle.Render(); materials != "" {
			sections = append(sections, HeadingMaterials+"\n"+materials)
		}
	}
	if narrative = strings.TrimSpace(narrative); narrative != "" {
		sections = append(sections, HeadingCase+"\n"+narrative)
	}

	return strings.Join(sections, "\n\n")
}
