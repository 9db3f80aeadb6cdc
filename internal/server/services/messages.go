package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/notify"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Notifier accepts background email jobs. *notify.Dispatcher implements it.
type Notifier interface {
	Enqueue(ctx context.Context, e notify.Email) bool
}

// SendResult describes an accepted anonymous message.
type SendResult struct {
	Recipient    string
	MessageID    string
	MessageCount int64
	Timestamp    time.Time
}

// InboxFilter narrows List results. Zero value returns everything.
type InboxFilter struct {
	Category   models.Category
	Query      string
	UnreadOnly bool
}

// Inbox is an account's messages plus summary counters. TotalCount and the
// per-category counts cover the whole inbox, Messages only the filtered view.
type Inbox struct {
	Messages            []*models.Message
	Username            string
	IsAcceptingMessages bool
	TotalCount          int
	UnreadCount         int
	CategoryCounts      map[models.Category]int
}

// MessageService runs message intake and the inbox query/mutation operations.
type MessageService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	notifier     Notifier
	logger       logging.Logger
	observer     Observer
	maxLength    int
	dashboardURL string
	now          func() time.Time
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, n Notifier, cfg *config.Config, logger logging.Logger, o Observer) *MessageService {
	return &MessageService{
		db:           db,
		repomanager:  m,
		notifier:     n,
		logger:       logger.With("module", "messages"),
		observer:     observerOrNop(o),
		maxLength:    cfg.MaxMessageLength,
		dashboardURL: strings.TrimRight(cfg.PublicBaseURL, "/") + "/dashboard",
		now:          time.Now,
	}
}

// Send appends an anonymous message to the recipient's inbox and schedules
// a best-effort email notification.
func (s *MessageService) Send(ctx context.Context, username, content, category string) (*SendResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		s.observer.MessageIntake("invalid")
		return nil, common.NewValidationError("username", "Username is required")
	}

	content, err := normalizeContent(content, s.maxLength)
	if err != nil {
		s.observer.MessageIntake("invalid")
		return nil, err
	}

	cat, ok := models.ParseCategory(category)
	if !ok {
		s.observer.MessageIntake("invalid")
		return nil, common.NewValidationError("category", "Invalid category")
	}

	recipient, err := s.repomanager.Accounts(s.db).FindVerifiedByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.observer.MessageIntake("not_found")
			return nil, common.ErrRecipientNotFound
		}
		return nil, err
	}

	if !recipient.IsAcceptingMessages {
		s.observer.MessageIntake("not_accepting")
		return nil, common.ErrRecipientNotAccepting
	}

	msgRepo := s.repomanager.Messages(s.db)
	msg, err := msgRepo.Create(ctx, &models.Message{
		AccountID: recipient.ID,
		Content:   content,
		Category:  cat,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.observer.MessageIntake("accepted")

	result := &SendResult{Recipient: recipient.Username, MessageID: msg.ID, Timestamp: msg.CreatedAt}

	total, unread, err := msgRepo.Count(ctx, recipient.ID)
	if err != nil {
		s.logger.Warn(ctx, "message count unavailable", "account_id", recipient.ID, "error", err)
		total, unread = 0, 0
	}
	result.MessageCount = total

	s.notify(ctx, recipient, msg, unread)
	return result, nil
}

func (s *MessageService) notify(ctx context.Context, recipient *models.Account, msg *models.Message, unread int64) {
	if s.notifier == nil {
		return
	}

	email, err := notify.NewMessageEmail(notify.NewMessage{
		To:           recipient.Email,
		Username:     recipient.Username,
		Content:      msg.Content,
		Category:     string(msg.Category),
		Unread:       unread,
		DashboardURL: s.dashboardURL,
	})
	if err != nil {
		s.logger.Warn(ctx, "render notification failed", "error", err)
		return
	}
	s.notifier.Enqueue(ctx, email)
}

// List returns the inbox newest first, skipping legacy entries without content.
func (s *MessageService) List(ctx context.Context, accountID string, f InboxFilter) (*Inbox, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	raw, err := s.repomanager.Messages(s.db).ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	valid := make([]*models.Message, 0, len(raw))
	for _, m := range raw {
		if m == nil || strings.TrimSpace(m.Content) == "" {
			continue
		}
		valid = append(valid, m)
	}

	// O(n log n); equal timestamps keep storage order.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].CreatedAt.After(valid[j].CreatedAt)
	})

	inbox := &Inbox{
		Messages:            make([]*models.Message, 0, len(valid)),
		Username:            account.Username,
		IsAcceptingMessages: account.IsAcceptingMessages,
		TotalCount:          len(valid),
		CategoryCounts:      make(map[models.Category]int, len(models.Categories)),
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	for _, m := range valid {
		cat := m.Category
		if cat == "" {
			cat = models.CategoryGeneral
		}
		inbox.CategoryCounts[cat]++
		if !m.IsRead {
			inbox.UnreadCount++
		}

		if !m.Matches(f.Category) {
			continue
		}
		if f.UnreadOnly && m.IsRead {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(m.Content), query) {
			continue
		}
		inbox.Messages = append(inbox.Messages, m)
	}

	return inbox, nil
}

// Delete removes one message from the account's inbox.
func (s *MessageService) Delete(ctx context.Context, accountID, messageID string) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return common.ErrorNotFound
	}
	if _, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.repomanager.Messages(s.db).Delete(ctx, accountID, messageID); err != nil {
		return err
	}
	s.logger.Info(ctx, "message deleted", "account_id", accountID, "message_id", messageID)
	return nil
}

// MarkRead flags one message as read.
func (s *MessageService) MarkRead(ctx context.Context, accountID, messageID string) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return common.ErrorNotFound
	}
	return s.repomanager.Messages(s.db).MarkRead(ctx, accountID, messageID)
}

// GetAccepting returns the current accept-messages flag.
func (s *MessageService) GetAccepting(ctx context.Context, accountID string) (bool, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.IsAcceptingMessages, nil
}

// SetAccepting overwrites the accept-messages flag.
func (s *MessageService) SetAccepting(ctx context.Context, accountID string, enabled bool) error {
	if err := s.repomanager.Accounts(s.db).SetAccepting(ctx, accountID, enabled); err != nil {
		return err
	}
	s.logger.Info(ctx, "accept-messages updated", "account_id", accountID, "enabled", enabled)
	return nil
}
