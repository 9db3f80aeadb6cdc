package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/dbx"
	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/notify"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/messages"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory stand-in for both Postgres repositories.
type memStore struct {
	mu       sync.Mutex
	now      func() time.Time
	seq      int
	accounts []*models.Account
	messages []*models.Message

	statsErr error
	listErr  error
	countErr error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{now: now}
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

func copyMessage(m *models.Message) *models.Message {
	c := *m
	return &c
}

func (s *memStore) find(pred func(a *models.Account) bool) *models.Account {
	var best *models.Account
	for _, a := range s.accounts {
		if !pred(a) {
			continue
		}
		switch {
		case best == nil:
			best = a
		case a.IsVerified != best.IsVerified:
			if a.IsVerified {
				best = a
			}
		case a.CreatedAt.After(best.CreatedAt):
			best = a
		}
	}
	return best
}

func (s *memStore) byID(id string) *models.Account {
	return s.find(func(a *models.Account) bool { return a.ID == id })
}

// accounts.Repository

func (s *memStore) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(func(x *models.Account) bool { return strings.EqualFold(x.Email, a.Email) }) != nil {
		return nil, fmt.Errorf("%w: accounts_email_key", common.ErrConflict)
	}

	s.seq++
	c := copyAccount(a)
	c.ID = fmt.Sprintf("acc-%d", s.seq)
	c.IsAcceptingMessages = true
	c.CreatedAt = s.now().Add(time.Duration(s.seq) * time.Millisecond)
	s.accounts = append(s.accounts, c)
	return copyAccount(c), nil
}

func (s *memStore) UpdatePending(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.byID(a.ID)
	if cur == nil || cur.IsVerified {
		return common.ErrorNotFound
	}
	cur.Username = a.Username
	cur.PasswordHash = a.PasswordHash
	cur.VerifyCode = a.VerifyCode
	cur.VerifyCodeExpires = a.VerifyCodeExpires
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.byID(id); a != nil {
		return copyAccount(a), nil
	}
	return nil, common.ErrorNotFound
}

func (s *memStore) FindVerifiedByUsername(ctx context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.find(func(a *models.Account) bool { return a.IsVerified && strings.EqualFold(a.Username, username) }); a != nil {
		return copyAccount(a), nil
	}
	return nil, common.ErrorNotFound
}

func (s *memStore) FindUnverifiedByUsername(ctx context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.find(func(a *models.Account) bool { return !a.IsVerified && strings.EqualFold(a.Username, username) }); a != nil {
		return copyAccount(a), nil
	}
	return nil, common.ErrorNotFound
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.find(func(a *models.Account) bool { return strings.EqualFold(a.Email, email) }); a != nil {
		return copyAccount(a), nil
	}
	return nil, common.ErrorNotFound
}

func (s *memStore) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(func(a *models.Account) bool {
		return strings.EqualFold(a.Email, identifier) || strings.EqualFold(a.Username, identifier)
	})
	if a == nil {
		return nil, common.ErrorNotFound
	}
	return copyAccount(a), nil
}

func (s *memStore) MarkVerified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.byID(id)
	if cur == nil || cur.IsVerified {
		return common.ErrorNotFound
	}
	if s.find(func(a *models.Account) bool { return a.IsVerified && strings.EqualFold(a.Username, cur.Username) }) != nil {
		return fmt.Errorf("%w: accounts_username_verified_key", common.ErrConflict)
	}
	cur.IsVerified = true
	return nil
}

func (s *memStore) UpdateCode(ctx context.Context, id, code string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.byID(id)
	if cur == nil || cur.IsVerified {
		return common.ErrorNotFound
	}
	cur.VerifyCode = code
	cur.VerifyCodeExpires = expires
	return nil
}

func (s *memStore) SetAccepting(ctx context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.byID(id)
	if cur == nil {
		return common.ErrorNotFound
	}
	cur.IsAcceptingMessages = enabled
	return nil
}

func (s *memStore) Stats(ctx context.Context) (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statsErr != nil {
		return nil, s.statsErr
	}

	st := &models.Stats{}
	for _, a := range s.accounts {
		if !a.IsVerified {
			continue
		}
		st.TotalUsers++
		if a.IsAcceptingMessages {
			st.AcceptingUsers++
		}
		n := int64(0)
		for _, m := range s.messages {
			if m.AccountID == a.ID && strings.TrimSpace(m.Content) != "" {
				n++
			}
		}
		st.TotalMessages += n
		if n > 0 {
			st.UsersWithMessages++
		}
	}
	return st, nil
}

// messages.Repository, reached through memMessages to avoid the Create clash.

type memMessages struct{ s *memStore }

func (r memMessages) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := copyMessage(m)
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	r.s.messages = append(r.s.messages, c)
	return copyMessage(c), nil
}

func (r memMessages) ListByAccount(ctx context.Context, accountID string) ([]*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listErr != nil {
		return nil, r.s.listErr
	}

	var out []*models.Message
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		if m := r.s.messages[i]; m.AccountID == accountID {
			out = append(out, copyMessage(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memMessages) Count(ctx context.Context, accountID string) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.countErr != nil {
		return 0, 0, r.s.countErr
	}

	var total, unread int64
	for _, m := range r.s.messages {
		if m.AccountID != accountID || strings.TrimSpace(m.Content) == "" {
			continue
		}
		total++
		if !m.IsRead {
			unread++
		}
	}
	return total, unread, nil
}

func (r memMessages) Delete(ctx context.Context, accountID, messageID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, m := range r.s.messages {
		if m.ID == messageID && m.AccountID == accountID {
			r.s.messages = append(r.s.messages[:i], r.s.messages[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memMessages) MarkRead(ctx context.Context, accountID, messageID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.messages {
		if m.ID == messageID && m.AccountID == accountID {
			m.IsRead = true
			return nil
		}
	}
	return common.ErrorNotFound
}

// seedVerified inserts a verified account with a bcrypt(MinCost) password.
func (s *memStore) seedVerified(t *testing.T, username, email, password string) *models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	a, err := s.Create(context.Background(), &models.Account{Username: username, Email: email, PasswordHash: string(hash)})
	if err != nil {
		t.Fatalf("seed create: %v", err)
	}
	if err := s.MarkVerified(context.Background(), a.ID); err != nil {
		t.Fatalf("seed verify: %v", err)
	}
	a.IsVerified = true
	return a
}

// seedMessage stores a message directly, bypassing validation.
func (s *memStore) seedMessage(accountID, content string, cat models.Category, at time.Time) *models.Message {
	m, _ := memMessages{s}.Create(context.Background(), &models.Message{
		AccountID: accountID, Content: content, Category: cat, CreatedAt: at,
	})
	return m
}

type fakeRepoManager struct{ store *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return m.store }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return memMessages{m.store} }

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []notify.Email
}

func (f *fakeMailer) Send(ctx context.Context, e notify.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeMailer) last(t *testing.T) notify.Email {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no email sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeNotifier struct {
	jobs []notify.Email
}

func (f *fakeNotifier) Enqueue(ctx context.Context, e notify.Email) bool {
	f.jobs = append(f.jobs, e)
	return true
}

type fakeObserver struct {
	auth, intake, suggest []string
}

func (o *fakeObserver) AuthAttempt(r string)   { o.auth = append(o.auth, r) }
func (o *fakeObserver) MessageIntake(r string) { o.intake = append(o.intake, r) }
func (o *fakeObserver) Suggestion(s string)    { o.suggest = append(o.suggest, s) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

// newTxDB returns a sqlmock-backed *sql.DB that accepts n transactions in
// any order, each ending in either commit or rollback.
func newTxDB(t *testing.T, n int) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	clock    *fakeClock
	store    *memStore
	mailer   *fakeMailer
	notifier *fakeNotifier
	observer *fakeObserver
	cfg      *config.Config

	accounts    *AccountService
	auth        *AuthService
	messages    *MessageService
	stats       *StatsService
	suggestions *SuggestionService
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemStore(clock.Now)
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db := newTxDB(t, 10)
	rm := &fakeRepoManager{store: store}
	logger := logging.NewNopLogger()

	f := &fixture{
		clock:    clock,
		store:    store,
		mailer:   &fakeMailer{},
		notifier: &fakeNotifier{},
		observer: &fakeObserver{},
		cfg:      cfg,
	}

	f.accounts = NewAccountService(db, rm, f.mailer, cfg, logger)
	f.accounts.bcryptCost = bcrypt.MinCost
	f.accounts.now = clock.Now

	f.auth = NewAuthService(db, rm, cfg, logger, f.observer)

	f.messages = NewMessageService(db, rm, f.notifier, cfg, logger, f.observer)
	f.messages.now = clock.Now

	f.stats = NewStatsService(db, rm, cfg)
	f.suggestions = NewSuggestionService(nil, cfg, logger, f.observer)
	return f
}

func isErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

type accountSeed struct {
	username, email, code string
	expires               time.Time
}

func (s accountSeed) model() *models.Account {
	return &models.Account{
		Username:          s.username,
		Email:             s.email,
		PasswordHash:      "x",
		VerifyCode:        s.code,
		VerifyCodeExpires: s.expires,
	}
}
