package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xhad/ezodus/internal/models"
	"github.com/xhad/ezodus/pkg/service"
)

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) brandVoiceHandler(c *gin.Context) {
	var req models.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &service.InputError{Field: "body", Message: service.MsgInvalidJSON}, err)
		return
	}

	result, err := s.svc.AnalyzeBrandVoice(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) postHandler(c *gin.Context) {
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &service.InputError{Field: "body", Message: service.MsgInvalidJSON}, err)
		return
	}

	s.logger.InfoContext(c.Request.Context(), "generating post",
		"request_id", c.GetString(requestIDKey),
		"custom_voice", req.BrandVoice != "",
	)

	result, err := s.svc.GeneratePost(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// fail writes the caller-safe form of err. Server-side failures are logged
// with their full cause; cause adds detail for client errors.
func (s *Server) fail(c *gin.Context, err, cause error) {
	status, message := service.StatusFor(err)

	attrs := []any{"request_id", c.GetString(requestIDKey), "path", c.FullPath(), "status", status}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed", append(attrs, "error", err)...)
	} else {
		if cause == nil {
			cause = err
		}
		s.logger.InfoContext(c.Request.Context(), "request rejected", append(attrs, "reason", cause)...)
	}

	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{Error: message})
}
