package http

import (
	"net/http"

	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/backend"
	"github.com/mootai/moot/pkg/usecase"
	"github.com/mootai/moot/pkg/utils/logging"
)

// DebateRequest is the wire form of a debate turn request. The compile
// command reads the same document from a file.
type DebateRequest struct {
	UserIdentity     string           `json:"userIdentity"`
	CurrentRole      string           `json:"currentRole"`
	Messages         model.Transcript `json:"messages"`
	JudgeType        string           `json:"judgeType"`
	CaseDescription  string           `json:"caseDescription"`
	OpponentStrategy string           `json:"opponentStrategy"`
	UserStrategy     string           `json:"userStrategy"`
	FileNames        []string         `json:"fileNames,omitempty"`
}

// ToUseCase converts the request for owner
func (x *DebateRequest) ToUseCase(owner model.OwnerID) *usecase.DebateRequest {
	return &usecase.DebateRequest{
		Owner: owner,
		Persona: model.PersonaConfig{
			CurrentRole:      types.Role(x.CurrentRole).Normalize(),
			JudgeTemperament: types.JudgeTemperament(x.JudgeType),
			UserIdentity:     types.Role(x.UserIdentity).Normalize(),
			UserStrategy:     types.Strategy(x.UserStrategy),
			OpponentStrategy: types.Strategy(x.OpponentStrategy),
		},
		Messages:        x.Messages,
		CaseDescription: x.CaseDescription,
		FileNames:       x.FileNames,
	}
}

type verdictRequest struct {
	CaseDescription string           `json:"caseDescription"`
	Messages        model.Transcript `json:"messages"`
	Identity        string           `json:"identity"`
}

type directiveResponse struct {
	Version   string           `json:"version"`
	Directive *model.Directive `json:"directive"`
}

func (s *Server) decodeDebate(w http.ResponseWriter, r *http.Request, prefix string) (*usecase.DebateRequest, bool) {
	owner, err := ownerOf(r)
	if err != nil {
		writeError(w, r, err, prefix)
		return nil, false
	}

	var req DebateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, prefix)
		return nil, false
	}
	return req.ToUseCase(owner), true
}

func (s *Server) handleDirective(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeDebate(w, r, "编译失败")
	if !ok {
		return
	}

	d, err := s.uc.Debate.Directive(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "编译失败")
		return
	}

	w.Header().Set(backend.DirectiveVersionHeader, d.SchemaVersion)
	writeOK(w, r, "编译成功", directiveResponse{Version: d.SchemaVersion, Directive: d})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeDebate(w, r, "生成失败")
	if !ok {
		return
	}

	text, err := s.uc.Debate.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "生成失败")
		return
	}

	writeOK(w, r, "生成成功", text)
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var req verdictRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "判决书生成失败")
		return
	}

	verdict, err := s.uc.Debate.Verdict(r.Context(), &usecase.VerdictInput{
		CaseDescription: req.CaseDescription,
		Messages:        req.Messages,
		Identity:        types.Role(req.Identity),
	})
	if err != nil {
		writeError(w, r, err, "判决书生成失败")
		return
	}

	writeOK(w, r, "判决书生成成功", verdict)
}

// handleBackendHealth always answers 200; the data field carries whether
// the backend is healthy.
func (s *Server) handleBackendHealth(w http.ResponseWriter, r *http.Request) {
	healthy := true
	if err := s.uc.Debate.Health(r.Context()); err != nil {
		logging.From(r.Context()).Warn("backend is unhealthy", "error", err)
		healthy = false
	}
	writeOK(w, r, "检查完成", healthy)
}

func (s *Server) handleModelInit(w http.ResponseWriter, r *http.Request) {
	status, err := s.uc.Debate.InitModel(r.Context())
	if err != nil {
		writeError(w, r, err, "模型初始化失败")
		return
	}
	writeOK(w, r, "模型初始化已启动", status)
}

func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.uc.Debate.ModelStatus(r.Context())
	if err != nil {
		writeError(w, r, err, "获取模型状态失败")
		return
	}
	writeOK(w, r, "获取状态成功", status)
}
