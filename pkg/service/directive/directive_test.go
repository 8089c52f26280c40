package directive_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/directive"
	"github.com/mootai/moot/pkg/service/policy"
)

func newInput() model.DirectiveInput {
	return model.DirectiveInput{
		Persona: model.PersonaConfig{
			CurrentRole:      types.RoleDefendant,
			UserIdentity:     types.RolePlaintiff,
			OpponentStrategy: types.StrategyConservative,
		},
		Background: "被告人涉嫌盗窃。",
		Transcript: model.Transcript{
			{SpeakerLabel: "审判员", RoleTag: "judge", Text: "现在开庭。"},
			{SpeakerLabel: "公诉人", RoleTag: "plaintiff", Text: ""},
			{SpeakerLabel: "公诉人", RoleTag: "plaintiff", Text: "起诉书已送达。"},
		},
	}
}

func TestCompile(t *testing.T) {
	c := directive.New(policy.Default())
	d := c.Compile(newInput())

	gt.V(t, d.AgentRole).Equal("辩护人")
	gt.V(t, d.Background).Equal("被告人涉嫌盗窃。")
	gt.V(t, d.Context).Equal("审判员: 现在开庭。\n公诉人: 起诉书已送达。")
	gt.S(t, d.Instruction).Contains("辩护人：维护辩护人权益")
	gt.S(t, d.Instruction).Contains("策略：保守：")
	gt.V(t, d.SchemaVersion).Equal(policy.Default().Version)
}

func TestCompile_IsPure(t *testing.T) {
	c := directive.New(policy.Default())

	first, err := json.Marshal(c.Compile(newInput()))
	gt.NoError(t, err).Required()
	for range 5 {
		again, err := json.Marshal(c.Compile(newInput()))
		gt.NoError(t, err).Required()
		gt.V(t, string(again)).Equal(string(first))
	}
}

func TestCompile_WireBodyHasExactlyFourFields(t *testing.T) {
	c := directive.New(policy.Default())

	body, err := json.Marshal(c.Compile(model.DirectiveInput{}))
	gt.NoError(t, err).Required()

	var fields map[string]any
	gt.NoError(t, json.Unmarshal(body, &fields)).Required()
	gt.V(t, len(fields)).Equal(4)
	for _, key := range []string{"agent_role", "background", "context", "instruction"} {
		v, ok := fields[key]
		gt.B(t, ok).True()
		_, isString := v.(string)
		gt.B(t, isString).True()
	}
}

func TestCompile_EmptyInput(t *testing.T) {
	d := directive.New(policy.Default()).Compile(model.DirectiveInput{})

	gt.V(t, d.AgentRole).Equal("审判员")
	gt.V(t, d.Background).Equal("")
	gt.V(t, d.Context).Equal("")
	gt.V(t, d.Instruction).Equal("保持专业严谨。")
}

func TestComposeBackground(t *testing.T) {
	c := directive.New(policy.Default())
	bundle := &model.ContentBundle{Entries: []model.ContentEntry{
		{RequestedName: "a.txt", Status: types.ContentStatusExtracted, Text: "alpha", Size: 5},
		{RequestedName: "missing.txt", Status: types.ContentStatusNotFound, Note: model.NoteNotFound},
		{RequestedName: "c.exe", Status: types.ContentStatusSizeOnly, Size: 42, Note: model.NoteBinary},
	}}

	bg := c.ComposeBackground(types.RoleDefendant, bundle, "  案情简介  ")

	gt.V(t, strings.HasPrefix(bg, "【用户身份】辩护人\n\n【庭前资料】\n文件名: a.txt\n内容:\nalpha")).Equal(true)
	gt.S(t, bg).Contains("文件名: c.exe\n文件大小: 42 字节")
	gt.S(t, bg).NotContains("missing.txt")
	gt.V(t, strings.HasSuffix(bg, "【案件描述】\n案情简介")).Equal(true)
}

func TestComposeBackground_OmitsEmptySections(t *testing.T) {
	c := directive.New(policy.Default())

	gt.V(t, c.ComposeBackground("", nil, "")).Equal("")
	gt.V(t, c.ComposeBackground("", &model.ContentBundle{}, "only narrative")).Equal("【案件描述】\nonly narrative")
}
