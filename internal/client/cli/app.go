package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/client/api"
	"github.com/dmitrijs2005/ghostnote/internal/client/config"
	"github.com/dmitrijs2005/ghostnote/internal/client/session"
	"github.com/dmitrijs2005/ghostnote/internal/common"
)

// Backend is the subset of the HTTP API the CLI drives.
type Backend interface {
	SignUp(ctx context.Context, username, email, password string) (string, error)
	VerifyCode(ctx context.Context, username, code string) error
	ResendCode(ctx context.Context, username string) error
	CheckUsernameUnique(ctx context.Context, username string) error
	SignIn(ctx context.Context, identifier, password string) (*api.Session, error)
	Refresh(ctx context.Context, token string) (*api.Session, error)
	UserStatus(ctx context.Context, username string) (*api.UserStatus, error)
	Send(ctx context.Context, username, content, category string) (*api.SendResult, error)
	Inbox(ctx context.Context, token string, f api.InboxFilter) (*api.Inbox, error)
	Delete(ctx context.Context, token, messageID string) error
	MarkRead(ctx context.Context, token, messageID string) error
	Accepting(ctx context.Context, token string) (bool, error)
	SetAccepting(ctx context.Context, token string, on bool) error
	Suggest(ctx context.Context, username, category string) (*api.Suggestions, error)
	Stats(ctx context.Context) (*api.Stats, error)
}

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	Load() (*api.Session, error)
	Save(*api.Session) error
	Clear() error
}

type App struct {
	config  *config.Config
	backend Backend
	store   SessionStore
	session *api.Session
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerURL == "" {
		return nil, errors.New("server URL is empty")
	}

	return &App{
		config:  c,
		backend: api.New(c.ServerURL, c.RequestTimeout),
		store:   session.NewStore(c.SessionDir),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.restoreSession()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

// restoreSession picks up a saved, unexpired session.
func (a *App) restoreSession() {
	s, err := a.store.Load()
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			log.Printf("ignoring saved session: %v", err)
		}
		return
	}
	if s.Expired(a.now()) {
		_ = a.store.Clear()
		return
	}
	a.session = s
}

func (a *App) setSession(s *api.Session) {
	a.session = s
	if err := a.store.Save(s); err != nil {
		log.Printf("session not saved: %v", err)
	}
}

func (a *App) dropSession() {
	a.session = nil
	if err := a.store.Clear(); err != nil {
		log.Printf("error clearing session: %v", err)
	}
}

// authorized runs fn with the current token. A 401 means the saved session
// is no longer valid, so it is discarded.
func (a *App) authorized(fn func(token string) error) error {
	if a.session == nil {
		return errNotLoggedIn
	}
	err := fn(a.session.Token)
	if api.IsUnauthorized(err) {
		a.dropSession()
		return fmt.Errorf("%w: %v", errSessionExpired, err)
	}
	return err
}

func (a *App) shareLink(username string) string {
	if a.config == nil {
		return ""
	}
	return fmt.Sprintf("%s/u/%s", trimSlash(a.config.ServerURL), username)
}
