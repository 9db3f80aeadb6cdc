package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err), "")
		return
	}

	res, err := s.deps.Messages.Send(c.Request.Context(), req.Username, req.Content, req.Category)
	if err != nil {
		s.fail(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message sent successfully",
		"data": gin.H{
			"recipient":    res.Recipient,
			"messageId":    res.MessageID,
			"messageCount": res.MessageCount,
			"timestamp":    res.Timestamp,
		},
	})
}

func (s *Server) getMessages(c *gin.Context) {
	f := services.InboxFilter{Query: c.Query("q")}

	if raw := c.Query("category"); raw != "" {
		cat, ok := models.ParseCategory(raw)
		if !ok {
			s.fail(c, common.NewValidationError("category", "Invalid category"), "")
			return
		}
		f.Category = cat
	}
	if raw := c.Query("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			s.fail(c, common.NewValidationError("unread", "unread must be a boolean"), "")
			return
		}
		f.UnreadOnly = unread
	}

	inbox, err := s.deps.Messages.List(c.Request.Context(), identity(c).AccountID, f)
	if err != nil {
		s.fail(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "Messages retrieved successfully",
		"messages":            toMessageResponses(inbox.Messages),
		"username":            inbox.Username,
		"isAcceptingMessages": inbox.IsAcceptingMessages,
		"totalCount":          inbox.TotalCount,
		"unreadCount":         inbox.UnreadCount,
		"categoryCounts":      inbox.CategoryCounts,
	})
}

func (s *Server) deleteMessage(c *gin.Context) {
	err := s.deps.Messages.Delete(c.Request.Context(), identity(c).AccountID, c.Param("messageId"))
	if err != nil {
		s.fail(c, err, "Message not found or already deleted")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted successfully"})
}

func (s *Server) markRead(c *gin.Context) {
	err := s.deps.Messages.MarkRead(c.Request.Context(), identity(c).AccountID, c.Param("messageId"))
	if err != nil {
		s.fail(c, err, "Message not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message marked as read"})
}

func (s *Server) getAcceptMessages(c *gin.Context) {
	on, err := s.deps.Messages.GetAccepting(c.Request.Context(), identity(c).AccountID)
	if err != nil {
		s.fail(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "isAcceptingMessages": on})
}

func (s *Server) setAcceptMessages(c *gin.Context) {
	var req acceptMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err), "")
		return
	}

	enabled := *req.IsAcceptingMessages
	if err := s.deps.Messages.SetAccepting(c.Request.Context(), identity(c).AccountID, enabled); err != nil {
		s.fail(c, err, "User not found for updating isAcceptingMessages status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "User's accepting message status updated successfully",
		"isAcceptingMessages": enabled,
	})
}
