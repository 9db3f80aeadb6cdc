package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/auth"
	"github.com/dmitrijs2005/ghostnote/internal/server/database"
	"github.com/dmitrijs2005/ghostnote/internal/server/metrics"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/services"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	signUpErr    error
	verifyErr    error
	resendErr    error
	uniqueErr    error
	status       *services.UserStatus
	statusErr    error
	pending      *services.PendingCode
	pendingErr   error
	lastSignUp   [3]string
	lastVerify   [2]string
	lastUsername string
}

func (f *fakeAccounts) SignUp(ctx context.Context, username, email, password string) (*models.Account, error) {
	f.lastSignUp = [3]string{username, email, password}
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.Account{ID: "acc-1", Username: username, Email: email}, nil
}

func (f *fakeAccounts) Verify(ctx context.Context, username, code string) error {
	f.lastVerify = [2]string{username, code}
	return f.verifyErr
}

func (f *fakeAccounts) ResendCode(ctx context.Context, username string) error {
	f.lastUsername = username
	return f.resendErr
}

func (f *fakeAccounts) CheckUsernameUnique(ctx context.Context, username string) error {
	f.lastUsername = username
	return f.uniqueErr
}

func (f *fakeAccounts) UserStatus(ctx context.Context, username string) (*services.UserStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeAccounts) DevVerificationCode(ctx context.Context, username string) (*services.PendingCode, error) {
	return f.pending, f.pendingErr
}

type fakeAuth struct {
	session      *services.Session
	authErr      error
	lastIdent    string
	identities   map[string]*auth.Identity
	refreshedFor string
}

func (f *fakeAuth) Authenticate(ctx context.Context, identifier, password string) (*services.Session, error) {
	f.lastIdent = identifier
	return f.session, f.authErr
}

func (f *fakeAuth) Refresh(ctx context.Context, accountID string) (*services.Session, error) {
	f.refreshedFor = accountID
	return f.session, f.authErr
}

func (f *fakeAuth) ParseSession(token string) (*auth.Identity, error) {
	if token == "expired" {
		return nil, common.ErrTokenExpired
	}
	if id, ok := f.identities[token]; ok {
		return id, nil
	}
	return nil, common.ErrInvalidToken
}

type fakeMessages struct {
	sendRes   *services.SendResult
	sendErr   error
	inbox     *services.Inbox
	listErr   error
	lastQuery services.InboxFilter
	deleteErr error
	readErr   error
	accepting bool
	acceptErr error
	lastCall  []string
}

func (f *fakeMessages) Send(ctx context.Context, username, content, category string) (*services.SendResult, error) {
	f.lastCall = []string{username, content, category}
	return f.sendRes, f.sendErr
}

func (f *fakeMessages) List(ctx context.Context, accountID string, filter services.InboxFilter) (*services.Inbox, error) {
	f.lastCall = []string{accountID}
	f.lastQuery = filter
	return f.inbox, f.listErr
}

func (f *fakeMessages) Delete(ctx context.Context, accountID, messageID string) error {
	f.lastCall = []string{accountID, messageID}
	return f.deleteErr
}

func (f *fakeMessages) MarkRead(ctx context.Context, accountID, messageID string) error {
	f.lastCall = []string{accountID, messageID}
	return f.readErr
}

func (f *fakeMessages) GetAccepting(ctx context.Context, accountID string) (bool, error) {
	return f.accepting, f.acceptErr
}

func (f *fakeMessages) SetAccepting(ctx context.Context, accountID string, enabled bool) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.accepting = enabled
	return nil
}

type fakeStats struct {
	out *services.PublicStats
	err error
}

func (f *fakeStats) Stats(ctx context.Context) (*services.PublicStats, error) { return f.out, f.err }

type fakeSuggestions struct {
	out  *services.Suggestions
	last [2]string
}

func (f *fakeSuggestions) Suggest(ctx context.Context, username, category string) *services.Suggestions {
	f.last = [2]string{username, category}
	return f.out
}

type fakeHealth struct{ h database.Health }

func (f *fakeHealth) Probe(ctx context.Context) database.Health { return f.h }

type harness struct {
	srv         *Server
	accounts    *fakeAccounts
	auth        *fakeAuth
	messages    *fakeMessages
	stats       *fakeStats
	suggestions *fakeSuggestions
	health      *fakeHealth
	metrics     *metrics.Metrics
}

const bobToken = "bob-token"

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()

	h := &harness{
		accounts: &fakeAccounts{},
		auth: &fakeAuth{identities: map[string]*auth.Identity{
			bobToken: {AccountID: "acc-bob", Username: "bob", IsVerified: true, IsAcceptingMessages: true},
		}},
		messages:    &fakeMessages{},
		stats:       &fakeStats{},
		suggestions: &fakeSuggestions{},
		health:      &fakeHealth{h: database.Health{Healthy: true, State: "connected", Latency: 3 * time.Millisecond}},
		metrics:     metrics.New(),
	}

	o := Options{Address: ":0"}
	for _, fn := range opts {
		fn(&o)
	}

	h.srv = NewServer(o, Deps{
		Accounts:    h.accounts,
		Auth:        h.auth,
		Messages:    h.messages,
		Stats:       h.stats,
		Suggestions: h.suggestions,
		Health:      h.health,
		Metrics:     h.metrics,
	}, logging.NewNopLogger())
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}
