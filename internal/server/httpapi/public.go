package httpapi

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) health(c *gin.Context) {
	h := s.deps.Health.Probe(c.Request.Context())

	status, dbStatus, code := "healthy", "up", http.StatusOK
	if !h.Healthy {
		status, dbStatus, code = "unhealthy", "down", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"database": gin.H{
				"status":          dbStatus,
				"connectionState": h.State,
				"responseTime":    fmt.Sprintf("%dms", h.Latency.Milliseconds()),
			},
			"application": gin.H{
				"status":    "up",
				"goVersion": runtime.Version(),
				"uptime":    fmt.Sprintf("%ds", int(time.Since(s.startedAt).Seconds())),
			},
		},
	})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.deps.Stats.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "stats unavailable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalUsers":             st.TotalUsers,
			"totalMessages":          st.TotalMessages,
			"usersWithMessages":      st.UsersWithMessages,
			"acceptingUsers":         st.AcceptingUsers,
			"averageMessagesPerUser": st.AverageMessagesPerUser,
			"baselineApplied":        st.BaselineApplied,
		},
	})
}

// suggestMessage always answers 200; a malformed body falls back to defaults.
func (s *Server) suggestMessage(c *gin.Context) {
	var req suggestRequest
	_ = c.ShouldBindJSON(&req)

	out := s.deps.Suggestions.Suggest(c.Request.Context(), req.Username, req.Category)

	body := gin.H{
		"success":     true,
		"suggestions": out.Items,
		"source":      out.Source,
		"category":    out.Category,
	}
	if out.Error != "" {
		body["error"] = out.Error
	}
	c.JSON(http.StatusOK, body)
}
