package api

import (
	"net/http"
	"strings"

	"github.com/sprite-ai/revchat/internal/analysis"
	"github.com/sprite-ai/revchat/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Format ---

type formatRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

type formatResponse struct {
	Mode     model.AgentMode `json:"mode"`
	Segments []model.Segment `json:"segments"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	mode, err := model.ParseAgentMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, formatResponse{
		Mode:     mode,
		Segments: s.cache.Get(req.Content, mode),
	})
}

// --- Analyze ---

type analyzeRequest struct {
	Code string   `json:"code"`
	Skip []string `json:"skip,omitempty"`
}

type analyzeResponse struct {
	IsDiff    bool          `json:"is_diff"`
	Findings  []findingJSON `json:"findings"`
	Summary   string        `json:"summary"`
	MaxRisk   string        `json:"max_risk"`
	Annotated string        `json:"annotated"`
}

type findingJSON struct {
	Pass     string `json:"pass"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Risk     string `json:"risk"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	src := analysis.FromSubmission(req.Code)
	results := analysis.Run(src, req.Skip)

	resp := analyzeResponse{
		IsDiff:    src.IsDiff,
		Findings:  make([]findingJSON, 0, len(results.Findings)),
		Summary:   results.Summary(),
		MaxRisk:   results.MaxRisk().String(),
		Annotated: results.Annotated(),
	}
	for _, f := range results.Findings {
		resp.Findings = append(resp.Findings, findingJSON{
			Pass:     f.Pass,
			File:     f.File,
			Line:     f.Line,
			Message:  f.Message,
			Severity: f.Severity.String(),
			Risk:     f.Risk.String(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
