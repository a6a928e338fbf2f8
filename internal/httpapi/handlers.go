package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	"github.com/fpt/go-apod-agent/pkg/agent/domain"
)

const (
	defaultSearchCount   = 10
	defaultAnalyzedCount = 5
)

type askRequest struct {
	Question string `json:"question"`
	ImageURL string `json:"imageUrl"`
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
	Question string `json:"question"`
}

type infoResponse struct {
	Text  string     `json:"text"`
	Entry apod.Entry `json:"entry"`
}

// respondError maps missing/invalid input to 400 and everything else to 500.
func (s *Server) respondError(c *gin.Context, op string, err error) {
	if domain.IsInputError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.WithRequest(c.GetString(requestIDKey)).ErrorWithIcon("❌", op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) handleImageOfTheDay(c *gin.Context) {
	date := c.Query("date")
	hd := c.Query("hd") == "true"

	if c.Query("analyze") == "true" {
		result, err := s.agent.ImageOfTheDayWithAnalysis(c.Request.Context(), date, hd)
		if err != nil {
			s.respondError(c, "image of the day", err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	picture, err := s.pictures.Picture(c.Request.Context(), date, hd)
	if err != nil {
		s.respondError(c, "image of the day", err)
		return
	}
	c.JSON(http.StatusOK, agent.PictureAnalysis{Picture: picture})
}

func (s *Server) handleImageInfo(c *gin.Context) {
	entry, err := s.pictures.Info(c.Request.Context(), c.Param("date"))
	if err != nil {
		s.respondError(c, "image info", err)
		return
	}
	c.JSON(http.StatusOK, infoResponse{Text: apod.FormatInfo(entry), Entry: entry})
}

func (s *Server) handleSearch(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	count, _ := strconv.Atoi(c.Query("count"))

	if c.Query("analyze") == "true" {
		if count <= 0 {
			count = defaultAnalyzedCount
		}
		result, err := s.agent.SearchAndAnalyze(c.Request.Context(), startDate, endDate, count)
		if err != nil {
			s.respondError(c, "search and analyze", err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	if count <= 0 {
		count = defaultSearchCount
	}
	payload, err := s.pictures.Search(c.Request.Context(), startDate, endDate, count)
	if err != nil {
		s.respondError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.agent.AnswerQuestion(c.Request.Context(), req.Question, req.ImageURL)
	if err != nil {
		s.respondError(c, "ask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (s *Server) handleAnalyzeImage(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := s.agent.AnalyzeImage(c.Request.Context(), req.ImageURL, req.Question)
	if err != nil {
		s.respondError(c, "analyze image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (s *Server) handleContext(c *gin.Context) {
	picture, err := s.agent.ConversationContext(c.Request.Context())
	if err != nil {
		s.respondError(c, "context", err)
		return
	}
	c.JSON(http.StatusOK, picture)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAgentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.agent.AgentInfo())
}

func (s *Server) handleConfigStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"keyStatus":         s.settings.KeyStatus(),
		"setupInstructions": s.settings.SetupInstructions(),
		"validation":        s.settings.Validate(),
	})
}
