package policy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/policy"
)

const (
	professionalClause = "专业型审判员：讲话简洁，业务熟练，判决果断。"
	balancedClause     = "均衡：主张适中，证据充分，不过度激化，保持协商空间"
	aggressiveClause   = "激进：强硬立场，积极进攻，不轻易让步，质疑对方证据，强调己方优势"
	defensiveClause    = "防御：重点防守，回应质疑，保护核心利益，避免主动进攻"
)

func TestDefault_IsValid(t *testing.T) {
	table := policy.Default()
	gt.NoError(t, table.Validate()).Required()
	gt.V(t, table.Version).NotEqual("")
}

func TestInstruction_JudgeIsTotal(t *testing.T) {
	table := policy.Default()

	temperaments := append(types.AllJudgeTemperaments(), "", "unknown", "PROFESSIONAL")
	for _, temperament := range temperaments {
		t.Run(string(temperament), func(t *testing.T) {
			text := table.Instruction(model.PersonaConfig{
				CurrentRole:      types.RoleJudge,
				JudgeTemperament: temperament,
			})
			lines := strings.Split(text, "\n")
			gt.V(t, lines[0]).NotEqual("")
			gt.S(t, text).Contains("审判员职责：中立公正")
			gt.S(t, text).Contains("①总结双方辩论要点；②归纳案件争议焦点；③说明案件关键情节；④表明法庭的态度和判断")
			gt.S(t, text).Contains("绝对禁止重复之前已经说过的内容")
			gt.S(t, text).Contains("系统不存在\"最后陈述环节\"")
		})
	}
}

func TestInstruction_JudgeTemperamentFallback(t *testing.T) {
	table := policy.Default()

	testCases := []struct {
		name        string
		temperament types.JudgeTemperament
		wantFirst   string
	}{
		{name: "unset", temperament: "", wantFirst: professionalClause},
		{name: "unknown", temperament: "sleepy", wantFirst: professionalClause},
		{name: "irritable", temperament: types.TemperamentIrritable, wantFirst: "暴躁型审判员：急躁易怒，控制力强，常拍桌训人。"},
		{name: "partial-defendant", temperament: types.TemperamentPartialDefendant, wantFirst: "偏袒型审判员：习惯对辩护人宽容，倾向于支持辩护方。"},
		{name: "mixed case", temperament: "Lazy", wantFirst: "偷懒型审判员：粗略听案，嫌当事人啰嗦，不重视细节。"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := table.Instruction(model.PersonaConfig{
				CurrentRole:      "Judge",
				JudgeTemperament: tc.temperament,
			})
			gt.V(t, strings.SplitN(text, "\n", 2)[0]).Equal(tc.wantFirst)
		})
	}
}

func TestInstruction_PartyStrategy(t *testing.T) {
	table := policy.Default()

	testCases := []struct {
		name     string
		persona  model.PersonaConfig
		wantDuty string
		wantStr  string
	}{
		{
			name: "user's own seat uses user strategy",
			persona: model.PersonaConfig{
				CurrentRole:      types.RolePlaintiff,
				UserIdentity:     types.RolePlaintiff,
				UserStrategy:     types.StrategyAggressive,
				OpponentStrategy: types.StrategyDefensive,
			},
			wantDuty: "公诉人：",
			wantStr:  aggressiveClause,
		},
		{
			name: "opponent seat uses opponent strategy",
			persona: model.PersonaConfig{
				CurrentRole:      types.RoleDefendant,
				UserIdentity:     types.RolePlaintiff,
				UserStrategy:     types.StrategyAggressive,
				OpponentStrategy: types.StrategyDefensive,
			},
			wantDuty: "辩护人：",
			wantStr:  defensiveClause,
		},
		{
			name: "unset strategy defaults to balanced",
			persona: model.PersonaConfig{
				CurrentRole:  types.RoleDefendant,
				UserIdentity: types.RoleDefendant,
			},
			wantDuty: "辩护人：",
			wantStr:  balancedClause,
		},
		{
			name: "unknown strategy falls back to balanced",
			persona: model.PersonaConfig{
				CurrentRole:      types.RolePlaintiff,
				UserIdentity:     types.RoleDefendant,
				OpponentStrategy: "reckless",
			},
			wantDuty: "公诉人：",
			wantStr:  balancedClause,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := table.Instruction(tc.persona)
			lines := strings.Split(text, "\n")
			gt.A(t, lines).Length(2)
			gt.S(t, lines[0]).Contains(tc.wantDuty)
			gt.V(t, lines[1]).Equal("策略：" + tc.wantStr)
		})
	}
}

func TestInstruction_EveryStrategyIsRendered(t *testing.T) {
	table := policy.Default()
	seen := map[string]bool{}

	for _, strategy := range types.AllStrategies() {
		text := table.Instruction(model.PersonaConfig{
			CurrentRole:  types.RolePlaintiff,
			UserIdentity: types.RolePlaintiff,
			UserStrategy: strategy,
		})
		gt.S(t, text).Contains("策略：")
		gt.B(t, seen[text]).False()
		seen[text] = true
	}
}

func TestInstruction_GenericForOtherRoles(t *testing.T) {
	table := policy.Default()

	for _, role := range []types.Role{"", "clerk", "witness"} {
		text := table.Instruction(model.PersonaConfig{CurrentRole: role})
		gt.V(t, text).Equal("保持专业严谨。")
	}
}

func TestInstruction_Deterministic(t *testing.T) {
	table := policy.Default()
	persona := model.PersonaConfig{
		CurrentRole:      types.RoleJudge,
		JudgeTemperament: types.TemperamentWavering,
		UserIdentity:     types.RoleDefendant,
	}

	first := table.Instruction(persona)
	for range 10 {
		gt.V(t, table.Instruction(persona)).Equal(first)
	}
}

func TestRoleLabel(t *testing.T) {
	table := policy.Default()

	testCases := []struct {
		role types.Role
		want string
	}{
		{role: types.RoleJudge, want: "审判员"},
		{role: types.RolePlaintiff, want: "公诉人"},
		{role: "DEFENDANT", want: "辩护人"},
		{role: "", want: "审判员"},
		{role: "clerk", want: "clerk"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role), func(t *testing.T) {
			gt.V(t, table.RoleLabel(tc.role)).Equal(tc.want)
		})
	}
}

func TestParse_RejectsIncompleteTable(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		src := strings.Replace(string(policy.DefaultSource()), `version = "`, `old_version = "`, 1)
		_, err := policy.Parse([]byte(src))
		gt.Error(t, err).Is(policy.ErrMissingVersion)
	})

	t.Run("missing strategy", func(t *testing.T) {
		src := strings.Replace(string(policy.DefaultSource()), "defensive = ", "unused = ", 1)
		_, err := policy.Parse([]byte(src))
		gt.Error(t, err).Is(policy.ErrMissingClause)
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := policy.Parse([]byte("version = "))
		gt.Error(t, err).Is(policy.ErrInvalidPolicy)
	})
}

func TestLoadFile(t *testing.T) {
	src := strings.Replace(string(policy.DefaultSource()), "保持专业严谨。", "请保持专业。", 1)
	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(src), 0o600)).Required()

	table, err := policy.LoadFile(path)
	gt.NoError(t, err).Required()
	gt.V(t, table.Instruction(model.PersonaConfig{CurrentRole: "clerk"})).Equal("请保持专业。")

	_, err = policy.LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err)
}
