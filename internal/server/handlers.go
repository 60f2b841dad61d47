package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/logging"
)

type detectRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"spanglish_threshold"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Language Detector API",
		"version": serviceVersion,
		"endpoints": gin.H{
			"/detect":  "POST - detect the language of a text",
			"/health":  "GET - health check",
			"/metrics": "GET - Prometheus metrics",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

func (s *Server) handleDetect(c *gin.Context) {
	if s.cfg.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	}
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'text' is required"})
		return
	}
	threshold := detect.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	res := s.detect(c.Request.Context(), req.Text, threshold)
	logging.FromContext(c.Request.Context(), s.logger).Debug("detected",
		"verdict", res.Verdict(),
		"confidence", res.Confidence,
		"chars", len([]rune(req.Text)),
	)
	c.JSON(http.StatusOK, res)
}
