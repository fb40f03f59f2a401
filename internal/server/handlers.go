package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "eda-copilot/internal/common/errors"
	"eda-copilot/internal/history"
	"eda-copilot/internal/intent"
)

type suggestRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

type suggestResponse struct {
	SessionID  string            `json:"session_id"`
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Suggestion intent.Suggestion `json:"suggestion"`
}

// handleSuggest runs the query pipeline for one turn. When a session has
// remembered context it participates in parameter assembly, and after a
// complete suggestion the merged entities are written back so the next
// follow-up can lean on them.
func (s *Server) handleSuggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "BAD_REQUEST",
			"message": "query is required",
		}})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	cc := s.loadContext(c.Request.Context(), sessionID)
	in := s.engine.Recognize(req.Query)
	sug := s.engine.BuildSuggestion(req.Query, cc)

	if s.contexts != nil && !sug.NeedsClarification() {
		if err := s.contexts.Save(c.Request.Context(), sessionID, cc.Merged(in.Entities)); err != nil {
			s.log.Warn("saving conversation context failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	s.recordHistory(c.Request.Context(), sessionID, req.Query, in, sug)

	c.JSON(http.StatusOK, suggestResponse{
		SessionID:  sessionID,
		Intent:     string(in.Type),
		Confidence: in.Confidence,
		Suggestion: sug,
	})
}

func (s *Server) loadContext(ctx context.Context, sessionID string) intent.ConversationContext {
	if s.contexts == nil {
		return intent.ConversationContext{}
	}
	cc, err := s.contexts.Load(ctx, sessionID)
	if err != nil {
		s.log.Warn("loading conversation context failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return intent.ConversationContext{}
	}
	return cc
}

func (s *Server) recordHistory(ctx context.Context, sessionID, query string, in intent.Intent, sug intent.Suggestion) {
	if s.histories == nil {
		return
	}
	rec := history.Record{
		SessionID:     sessionID,
		Query:         query,
		Intent:        string(in.Type),
		Confidence:    in.Confidence,
		SuggestedTool: sug.SuggestedTool,
	}
	if sug.SuggestedArguments != nil {
		if data, err := json.Marshal(sug.SuggestedArguments); err == nil {
			rec.Arguments = data
		}
	}
	if err := s.histories.Insert(ctx, rec); err != nil {
		s.log.Warn("recording query history failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

type executeRequest struct {
	Tool      string                 `json:"tool" binding:"required"`
	Arguments map[string]interface{} `json:"arguments"`
}

// handleExecute runs one confirmed tool. Declared defaults fill in any
// argument the caller left out, then the full set must pass the tool's
// schema before anything is spawned.
func (s *Server) handleExecute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "BAD_REQUEST",
			"message": "tool is required",
		}})
		return
	}

	spec, ok := s.reg.Tool(req.Tool)
	if !ok {
		respondError(c, http.StatusNotFound, apperrors.NewToolNotFoundError(req.Tool))
		return
	}

	args := spec.Defaults()
	for k, v := range req.Arguments {
		args[k] = v
	}
	if err := spec.ValidateArgs(args); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	argv := spec.BuildArgv(args)
	if s.dryRunOnly {
		c.JSON(http.StatusOK, gin.H{"dry_run": true, "tool": spec.Name, "argv": argv})
		return
	}
	if s.runner == nil {
		respondError(c, http.StatusServiceUnavailable, apperrors.NewExecutionDisabledError(req.Tool))
		return
	}

	runCtx, cancel := context.WithTimeout(c.Request.Context(), spec.ExecTimeout(s.execTimeout))
	defer cancel()

	res, err := s.runner.Run(runCtx, spec.Name, argv)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.CodeOf(err) == apperrors.ErrCodeToolTimeout {
			status = http.StatusGatewayTimeout
		}
		respondError(c, status, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": spec.Name, "result": res})
}

type toolInfo struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Required    []string               `json:"required"`
	Defaults    map[string]interface{} `json:"defaults"`
	Example     string                 `json:"example,omitempty"`
}

// handleTools lists the catalogue, joined with an example query for
// every tool an intent pattern points at.
func (s *Server) handleTools(c *gin.Context) {
	examples := make(map[string]string)
	for _, p := range s.engine.Patterns() {
		examples[p.Tool] = p.Example
	}

	out := make([]toolInfo, 0, s.reg.Len())
	for _, spec := range s.reg.Specs() {
		out = append(out, toolInfo{
			Name:        spec.Name,
			DisplayName: spec.DisplayName,
			Description: spec.Description,
			Category:    spec.Category,
			Required:    spec.Required(),
			Defaults:    spec.Defaults(),
			Example:     examples[spec.Name],
		})
	}
	c.JSON(http.StatusOK, gin.H{"version": s.reg.Version, "tools": out})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.histories == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{
			"code":    "HISTORY_DISABLED",
			"message": "query history is not enabled",
		}})
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "BAD_REQUEST",
			"message": "session_id is required",
		}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	recs, err := s.histories.ListBySession(c.Request.Context(), sessionID, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "records": recs})
}

func respondError(c *gin.Context, status int, err error) {
	if se, ok := err.(*apperrors.StandardError); ok {
		c.JSON(status, gin.H{"error": se})
		return
	}
	c.JSON(status, gin.H{"error": gin.H{"code": "INTERNAL", "message": err.Error()}})
}
