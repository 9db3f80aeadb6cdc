package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err), "")
		return
	}

	if _, err := s.deps.Accounts.SignUp(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		s.fail(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully. Please verify your email",
	})
}

func (s *Server) verifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err), "")
		return
	}

	if err := s.deps.Accounts.Verify(c.Request.Context(), req.Username, req.Code); err != nil {
		s.fail(c, err, "User not found or already verified")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account verified successfully"})
}

func (s *Server) resendCode(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err), "")
		return
	}

	if err := s.deps.Accounts.ResendCode(c.Request.Context(), req.Username); err != nil {
		s.fail(c, err, "User not found or already verified")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent successfully"})
}

func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err), "")
		return
	}

	session, err := s.deps.Auth.Authenticate(c.Request.Context(), req.identifier(), req.Password)
	if err != nil {
		s.fail(c, err, "No user found with this email or username")
		return
	}

	c.JSON(http.StatusOK, toSessionResponse("Signed in successfully", session))
}

func (s *Server) refreshSession(c *gin.Context) {
	id := identity(c)

	session, err := s.deps.Auth.Refresh(c.Request.Context(), id.AccountID)
	if err != nil {
		s.fail(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, toSessionResponse("Session refreshed", session))
}

func (s *Server) checkUsernameUnique(c *gin.Context) {
	err := s.deps.Accounts.CheckUsernameUnique(c.Request.Context(), c.Query("username"))
	if err != nil {
		s.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Username available"})
}

func (s *Server) checkUserStatus(c *gin.Context) {
	st, err := s.deps.Accounts.UserStatus(c.Request.Context(), c.Query("username"))
	if err != nil {
		status, _ := classify(err)
		if status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "exists": false, "message": "User not found"})
			return
		}
		s.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"exists":              st.Exists,
		"isAcceptingMessages": st.IsAcceptingMessages,
		"username":            st.Username,
	})
}

func (s *Server) devVerificationCode(c *gin.Context) {
	pc, err := s.deps.Accounts.DevVerificationCode(c.Request.Context(), c.Query("username"))
	if err != nil {
		s.fail(c, err, "No unverified user found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"username":  pc.Username,
		"email":     pc.Email,
		"code":      pc.Code,
		"expiresAt": pc.ExpiresAt,
	})
}
