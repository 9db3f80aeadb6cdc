// Package services contains server-side business logic: the verification
// workflow, the authentication gate, message intake, inbox management,
// statistics and message suggestions.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/dbx"
	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/notify"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus is the public view of a handle.
type UserStatus struct {
	Exists              bool
	Username            string
	IsAcceptingMessages bool
}

// PendingCode exposes a pending verification code in development mode.
type PendingCode struct {
	Username  string
	Email     string
	Code      string
	ExpiresAt time.Time
}

// AccountService implements registration and the verification workflow.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      notify.Mailer
	logger      logging.Logger
	codeTTL     time.Duration
	devMode     bool
	bcryptCost  int
	now         func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, mailer notify.Mailer, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		mailer:      mailer,
		logger:      logger.With("module", "accounts"),
		codeTTL:     cfg.VerifyCodeTTL,
		devMode:     cfg.IsDevelopment(),
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// SignUp registers a pending account or refreshes an unverified one that
// holds the same email, then emails a fresh verification code.
func (s *AccountService) SignUp(ctx context.Context, username, email, password string) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if err := validateSignUp(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	code, err := common.MakeVerificationCode("")
	if err != nil {
		return nil, fmt.Errorf("%w: generate code: %v", common.ErrorInternal, err)
	}
	expires := s.now().Add(s.codeTTL)

	var account *models.Account
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		_, err := repo.FindVerifiedByUsername(ctx, username)
		switch {
		case err == nil:
			return common.ErrUsernameTaken
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		existing, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.IsVerified:
			return common.ErrEmailTaken
		case err == nil:
			if existing.VerifyCode == code {
				if code, err = common.MakeVerificationCode(existing.VerifyCode); err != nil {
					return err
				}
			}
			existing.Username = username
			existing.PasswordHash = string(hash)
			existing.VerifyCode = code
			existing.VerifyCodeExpires = expires
			if err := repo.UpdatePending(ctx, existing); err != nil {
				return err
			}
			account = existing
			return nil
		case errors.Is(err, common.ErrorNotFound):
			account, err = repo.Create(ctx, &models.Account{
				Username:          username,
				Email:             email,
				PasswordHash:      string(hash),
				VerifyCode:        code,
				VerifyCodeExpires: expires,
			})
			if errors.Is(err, common.ErrConflict) {
				return common.ErrEmailTaken
			}
			return err
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendCode(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID, "username", account.Username)
	return account, nil
}

// Verify confirms a pending account. Expiry is checked before the code so an
// expired code is reported as such regardless of its correctness.
func (s *AccountService) Verify(ctx context.Context, username, code string) error {
	if strings.TrimSpace(code) == "" {
		return common.NewValidationError("code", "Verification code is required")
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindUnverifiedByUsername(ctx, username)
	if err != nil {
		return err
	}

	if account.CodeExpired(s.now()) {
		return common.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(account.VerifyCode), []byte(strings.TrimSpace(code))) != 1 {
		return common.ErrInvalidCode
	}

	if err := repo.MarkVerified(ctx, account.ID); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return common.ErrUsernameTaken
		}
		return err
	}

	s.logger.Info(ctx, "account verified", "account_id", account.ID)
	return nil
}

// ResendCode issues a new code (always different from the previous one) to a
// pending account and emails it.
func (s *AccountService) ResendCode(ctx context.Context, username string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindUnverifiedByUsername(ctx, username)
	if err != nil {
		return err
	}

	code, err := common.MakeVerificationCode(account.VerifyCode)
	if err != nil {
		return fmt.Errorf("%w: generate code: %v", common.ErrorInternal, err)
	}
	expires := s.now().Add(s.codeTTL)

	if err := repo.UpdateCode(ctx, account.ID, code, expires); err != nil {
		return err
	}
	account.VerifyCode = code
	account.VerifyCodeExpires = expires

	return s.sendCode(ctx, account)
}

// CheckUsernameUnique returns nil when no verified account owns username.
func (s *AccountService) CheckUsernameUnique(ctx context.Context, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}

	_, err := s.repomanager.Accounts(s.db).FindVerifiedByUsername(ctx, username)
	switch {
	case err == nil:
		return common.ErrUsernameTaken
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

// UserStatus looks up a verified handle for the public profile page.
func (s *AccountService) UserStatus(ctx context.Context, username string) (*UserStatus, error) {
	if strings.TrimSpace(username) == "" {
		return nil, common.NewValidationError("username", "Username is required")
	}

	account, err := s.repomanager.Accounts(s.db).FindVerifiedByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return &UserStatus{
		Exists:              true,
		Username:            account.Username,
		IsAcceptingMessages: account.IsAcceptingMessages,
	}, nil
}

// DevVerificationCode reveals a pending code. Only available in development.
func (s *AccountService) DevVerificationCode(ctx context.Context, username string) (*PendingCode, error) {
	if !s.devMode {
		return nil, common.ErrForbidden
	}
	if strings.TrimSpace(username) == "" {
		return nil, common.NewValidationError("username", "Username is required")
	}

	account, err := s.repomanager.Accounts(s.db).FindUnverifiedByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return &PendingCode{
		Username:  account.Username,
		Email:     account.Email,
		Code:      account.VerifyCode,
		ExpiresAt: account.VerifyCodeExpires,
	}, nil
}

func (s *AccountService) sendCode(ctx context.Context, account *models.Account) error {
	email, err := notify.VerificationEmail(account.Email, account.Username, account.VerifyCode, s.codeTTL)
	if err != nil {
		return fmt.Errorf("%w: render verification email: %v", common.ErrorInternal, err)
	}

	err = s.mailer.Send(ctx, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notify.ErrNotConfigured):
		s.logger.Warn(ctx, "verification email not sent, SMTP is not configured", "username", account.Username)
		return nil
	default:
		s.logger.Error(ctx, "verification email failed", "username", account.Username, "error", err)
		return fmt.Errorf("%w: error sending verification email", common.ErrDependency)
	}
}
