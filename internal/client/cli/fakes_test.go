package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/client/api"
	"github.com/dmitrijs2005/ghostnote/internal/client/config"
	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/netx"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func errStatus(code int, msg string) error {
	return &netx.StatusError{Code: code, Message: msg}
}

var errUnauthorized = errStatus(http.StatusUnauthorized, "Session expired")

type fakeBackend struct {
	signUpArgs []string
	signUpErr  error

	verified []string
	verifyErr error

	resent string

	takenUsernames map[string]bool

	signInID   string
	signInPass string
	signInOut  *api.Session
	signInErr  error

	refreshOut *api.Session
	refreshErr error

	statuses map[string]*api.UserStatus

	sent    []string
	sendErr error

	inbox     *api.Inbox
	inboxErr  error
	lastToken string
	filters   []api.InboxFilter

	deleted  []string
	markRead []string

	accepting bool
	setCalls  []bool

	suggestCategory string
	suggestUser     string
	suggestions     *api.Suggestions

	stats *api.Stats
}

func (f *fakeBackend) SignUp(_ context.Context, username, email, password string) (string, error) {
	f.signUpArgs = []string{username, email, password}
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	return "User registered successfully. Please verify your email", nil
}

func (f *fakeBackend) VerifyCode(_ context.Context, username, code string) error {
	f.verified = []string{username, code}
	return f.verifyErr
}

func (f *fakeBackend) ResendCode(_ context.Context, username string) error {
	f.resent = username
	return nil
}

func (f *fakeBackend) CheckUsernameUnique(_ context.Context, username string) error {
	if f.takenUsernames[username] {
		return errStatus(http.StatusBadRequest, "Username already exists")
	}
	return nil
}

func (f *fakeBackend) SignIn(_ context.Context, identifier, password string) (*api.Session, error) {
	f.signInID, f.signInPass = identifier, password
	return f.signInOut, f.signInErr
}

func (f *fakeBackend) Refresh(_ context.Context, token string) (*api.Session, error) {
	f.lastToken = token
	return f.refreshOut, f.refreshErr
}

func (f *fakeBackend) UserStatus(_ context.Context, username string) (*api.UserStatus, error) {
	if st, ok := f.statuses[strings.ToLower(username)]; ok {
		return st, nil
	}
	return &api.UserStatus{Username: username}, nil
}

func (f *fakeBackend) Send(_ context.Context, username, content, category string) (*api.SendResult, error) {
	f.sent = []string{username, content, category}
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &api.SendResult{Recipient: username, MessageID: "m-new", MessageCount: 4, Timestamp: testNow}, nil
}

func (f *fakeBackend) Inbox(_ context.Context, token string, flt api.InboxFilter) (*api.Inbox, error) {
	f.lastToken = token
	f.filters = append(f.filters, flt)
	if f.inboxErr != nil {
		return nil, f.inboxErr
	}
	return f.inbox, nil
}

func (f *fakeBackend) Delete(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) MarkRead(_ context.Context, _ string, id string) error {
	f.markRead = append(f.markRead, id)
	return nil
}

func (f *fakeBackend) Accepting(context.Context, string) (bool, error) { return f.accepting, nil }

func (f *fakeBackend) SetAccepting(_ context.Context, _ string, on bool) error {
	f.setCalls = append(f.setCalls, on)
	f.accepting = on
	return nil
}

func (f *fakeBackend) Suggest(_ context.Context, username, category string) (*api.Suggestions, error) {
	f.suggestUser, f.suggestCategory = username, category
	return f.suggestions, nil
}

func (f *fakeBackend) Stats(context.Context) (*api.Stats, error) { return f.stats, nil }

type fakeStore struct {
	saved   *api.Session
	loadErr error
	cleared int
}

func (s *fakeStore) Load() (*api.Session, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.saved == nil {
		return nil, common.ErrorNotFound
	}
	return s.saved, nil
}

func (s *fakeStore) Save(sess *api.Session) error {
	cp := *sess
	s.saved = &cp
	return nil
}

func (s *fakeStore) Clear() error {
	s.saved = nil
	s.cleared++
	return nil
}

func aliceSession() *api.Session {
	return &api.Session{
		Token:     "tok-alice",
		ExpiresAt: testNow.Add(24 * time.Hour),
		User:      api.Identity{AccountID: "a1", Username: "alice", IsVerified: true, IsAcceptingMessages: true},
	}
}

// newTestApp builds an App reading the given input lines.
func newTestApp(t *testing.T, input ...string) (*App, *fakeBackend, *fakeStore, *bytes.Buffer) {
	t.Helper()
	b := &fakeBackend{}
	s := &fakeStore{}
	out := &bytes.Buffer{}
	a := &App{
		config:  &config.Config{ServerURL: "https://ghostnote.example/"},
		backend: b,
		store:   s,
		reader:  bufio.NewReader(strings.NewReader(strings.Join(input, "\n") + "\n")),
		out:     out,
		now:     func() time.Time { return testNow },
	}
	return a, b, s, out
}

func loggedIn(a *App) *App {
	a.session = aliceSession()
	return a
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func sampleInbox() *api.Inbox {
	return &api.Inbox{
		Username:            "alice",
		IsAcceptingMessages: true,
		TotalCount:          3,
		UnreadCount:         1,
		CategoryCounts:      map[string]int{"general": 2, "question": 1},
		Messages: []api.Message{
			{ID: "3c9d1e2f-0000-4000-8000-000000000003", Content: "newest one", Category: "question", CreatedAt: testNow},
			{ID: "2b8c0d1e-0000-4000-8000-000000000002", Content: "middle", Category: "general", IsRead: true, CreatedAt: testNow.Add(-time.Hour)},
			{ID: "2b8f0000-0000-4000-8000-000000000001", Content: "oldest", Category: "general", IsRead: true, CreatedAt: testNow.Add(-2 * time.Hour)},
		},
	}
}
