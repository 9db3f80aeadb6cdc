package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/auth"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Session is a freshly issued session token and the identity it carries.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  auth.Identity
}

// AuthService is the authentication gate: it checks credentials and issues
// stateless session tokens. There is no server-side session store, so
// logout is a client-side token discard.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	observer    Observer
	jwtSecret   []byte
	sessionTTL  time.Duration
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, o Observer) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "auth"),
		observer:    observerOrNop(o),
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
	}
}

// Authenticate accepts an email or a handle as identifier.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, &common.ValidationError{Fields: map[string]string{
			"identifier": "Email/username and password are required",
		}}
	}

	account, err := s.repomanager.Accounts(s.db).FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.observer.AuthAttempt("not_found")
		}
		return nil, err
	}

	if !account.IsVerified {
		s.observer.AuthAttempt("not_verified")
		return nil, common.ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.observer.AuthAttempt("bad_password")
		s.logger.Warn(ctx, "sign-in rejected", "account_id", account.ID)
		return nil, common.ErrInvalidCredential
	}

	session, err := s.issue(account)
	if err != nil {
		return nil, err
	}

	s.observer.AuthAttempt("success")
	s.logger.Info(ctx, "signed in", "account_id", account.ID)
	return session, nil
}

// Refresh re-issues a session carrying the account's current flags.
func (s *AuthService) Refresh(ctx context.Context, accountID string) (*Session, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

func (s *AuthService) issue(account *models.Account) (*Session, error) {
	id := auth.Identity{
		AccountID:           account.ID,
		Username:            account.Username,
		IsVerified:          account.IsVerified,
		IsAcceptingMessages: account.IsAcceptingMessages,
	}

	token, expiresAt, err := auth.GenerateToken(id, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Identity: id}, nil
}

// ParseSession validates a bearer token.
func (s *AuthService) ParseSession(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret)
}
