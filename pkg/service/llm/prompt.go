package llm

import (
	"fmt"
	"strings"

	"github.com/mootai/moot/pkg/domain/model"
)

var roleDefinitions = map[string]string{
	"审判员": "角色：审判员\n职责：主持庭审，引导辩论，确保程序公正",
	"公诉人": "角色：公诉人\n职责：代表国家行使公诉权，指控犯罪事实，出示并质证证据",
	"辩护人": "角色：辩护人\n职责：维护被告人的合法权益，针对指控提出辩护意见和反驳",
}

const generalRules = "【通用要求】\n" +
	"请根据你的角色定位，在法庭辩论中：\n" +
	"1. 根据对话历史理解当前辩论阶段和焦点\n" +
	"2. 根据角色标记（审判员/公诉人/辩护人）切换相应的语言风格\n" +
	"3. 遵循法庭辩论的逻辑顺序和程序规范\n" +
	"4. 基于事实和法律条文进行专业辩论"

func debateSystemPrompt(d *model.Directive) string {
	var sb strings.Builder
	sb.WriteString("你是一位专业的法律从业者，需要根据角色定位参与法庭辩论。\n\n")

	roleDef, ok := roleDefinitions[d.AgentRole]
	if !ok {
		roleDef = "角色：" + d.AgentRole
	}
	sb.WriteString("【角色定义】\n" + roleDef + "\n\n")

	if d.Background != "" {
		sb.WriteString("【案件背景】\n" + d.Background + "\n\n")
	}
	if d.Instruction != "" {
		sb.WriteString("【角色指令与策略】\n" + d.Instruction + "\n\n")
	}

	sb.WriteString(generalRules)
	return sb.String()
}

func debateUserPrompt(d *model.Directive) string {
	if d.Context == "" {
		return fmt.Sprintf("庭审刚刚开始，尚无对话记录。请以%s的身份发言。", d.AgentRole)
	}
	return fmt.Sprintf("【对话历史】\n%s\n\n请以%s的身份继续发言，只输出发言内容。", d.Context, d.AgentRole)
}

const summarySystemPrompt = `你是一位专业的法律助理，擅长分析和总结案件资料。请根据提供的文件信息，生成一份结构化的案件描述。

如果文件是试题或案例题，请提取其中描述的实际案件信息，忽略标题、注意事项、提交要求等非案件事实的内容。

输出格式：
案件基本情况：
[当事人、案由、时间、地点等]

争议焦点：
1. [焦点1]
...

相关法条：
[根据案件类型引用相关法条]

案件要素：
- [要素1]
...`

func identityText(identity string) string {
	if identity == "plaintiff" {
		return "原告"
	}
	return "被告"
}

func summaryUserPrompt(req *model.SummaryRequest) string {
	who := identityText(req.Identity)
	if len(req.FileContents) > 0 {
		return fmt.Sprintf("请根据以下%s上传的案件文件内容，生成一份详细的案件描述：\n\n%s\n\n请提取案件中的当事人、事件经过、时间、地点、争议焦点等实际案件要素。",
			who, strings.Join(req.FileContents, "\n\n"))
	}

	lines := make([]string, 0, len(req.FileNames))
	for _, name := range req.FileNames {
		lines = append(lines, "- "+name)
	}
	return fmt.Sprintf("请根据以下%s上传的案件文件，生成一份详细的案件描述：\n\n文件列表：\n%s\n\n如果无法从文件名推断具体内容，请根据常见的案件类型进行合理推测。",
		who, strings.Join(lines, "\n"))
}

const verdictSystemPrompt = `你是一位专业的法官，需要根据案件信息和庭审对话历史，生成一份完整的判决书。

判决书应包含：案件基本信息、审理经过、当事人诉讼请求和答辩、本院查明的事实、本院认为及判决结果。

要求使用正式的法律文书格式，语言严谨、专业，逻辑清晰。`

func verdictUserPrompt(req *model.VerdictRequest) string {
	lines := make([]string, 0, len(req.Messages))
	for _, turn := range req.Messages {
		if turn.Text == "" {
			continue
		}
		lines = append(lines, turn.SpeakerLabel+"："+turn.Text)
	}
	dialogue := strings.Join(lines, "\n")
	if dialogue == "" {
		dialogue = "（无详细对话记录）"
	}

	return fmt.Sprintf("请根据以下案件信息和庭审对话，生成一份完整的判决书：\n\n案件描述：\n%s\n\n庭审对话历史：\n%s",
		req.CaseDescription, dialogue)
}
