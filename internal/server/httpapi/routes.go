package httpapi

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.requestLogger())
	if s.deps.Metrics != nil {
		r.Use(s.observe())
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	limited := s.limiter.Middleware(s.logger)

	api := r.Group("/api")
	{
		api.POST("/sign-up", limited, s.signUp)
		api.POST("/verify-code", s.verifyCode)
		api.POST("/resend-code", limited, s.resendCode)
		api.POST("/sign-in", s.signIn)

		// the misspelled path is the one existing clients call
		api.POST("/send-messaage", limited, s.sendMessage)
		api.POST("/send-message", limited, s.sendMessage)

		api.GET("/check-username-unique", s.checkUsernameUnique)
		api.GET("/check-user-status", s.checkUserStatus)
		api.GET("/health", s.health)
		api.GET("/stats", s.stats)
		api.POST("/suggest-message", limited, s.suggestMessage)
		api.GET("/dev/verification-code", s.devVerificationCode)
	}

	private := api.Group("", s.requireSession())
	{
		private.GET("/accept-messages", s.getAcceptMessages)
		private.POST("/accept-messages", s.setAcceptMessages)
		private.GET("/get-messages", s.getMessages)
		private.DELETE("/delete-message/:messageId", s.deleteMessage)
		private.PATCH("/messages/:messageId/read", s.markRead)
		private.POST("/session/refresh", s.refreshSession)
	}

	r.GET("/health", s.health)
	return r
}
