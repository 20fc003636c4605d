package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LJTian/Updevted/internal/llm"
	"github.com/gin-gonic/gin"
)

// AI 接口沿用 {"error": "..."} 的响应格式，前端按此解析

type explainCodeReq struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type compareTechReq struct {
	Technologies []string `json:"technologies"`
}

type learningPathReq struct {
	Technology string `json:"technology"`
}

// aiError 把 llm 的错误映射为状态码：参数错误 400，未配置 503，上游失败 500
func aiError(c *gin.Context, err error, failMsg string) {
	switch {
	case errors.Is(err, llm.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, llm.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GROQ API key is not configured"})
	default:
		slog.Warn("ai: request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
	}
}

func (s *Server) explainCode(c *gin.Context) {
	var req explainCodeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" || req.Language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code and language are required"})
		return
	}
	if s.ai == nil {
		aiError(c, llm.ErrNotConfigured, "")
		return
	}

	out, err := s.ai.ExplainCode(c.Request.Context(), req.Code, req.Language)
	if err != nil {
		aiError(c, err, "Failed to explain code")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) compareTech(c *gin.Context) {
	var req compareTechReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Technologies) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two technologies are required"})
		return
	}
	if s.ai == nil {
		aiError(c, llm.ErrNotConfigured, "")
		return
	}

	out, err := s.ai.CompareTech(c.Request.Context(), req.Technologies)
	if err != nil {
		aiError(c, err, "Failed to compare technologies")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) learningPath(c *gin.Context) {
	var req learningPathReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Technology == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Technology is required"})
		return
	}
	if s.ai == nil {
		aiError(c, llm.ErrNotConfigured, "")
		return
	}

	steps, err := s.ai.LearningPath(c.Request.Context(), req.Technology)
	if err != nil {
		aiError(c, err, "Failed to generate learning path")
		return
	}
	c.JSON(http.StatusOK, steps)
}

func (s *Server) testConnection(c *gin.Context) {
	if s.ai == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "GROQ API key is not configured",
			"status": "error",
		})
		return
	}
	if err := s.ai.TestConnection(c.Request.Context()); err != nil {
		slog.Warn("ai: test connection failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"status": "error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "GROQ API connection successful",
	})
}
