package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contents(ms []*models.Message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Content)
	}
	return out
}

func TestSend_DeliversToInboxAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")

	res, err := f.messages.Send(ctx, "bob", "  hello there  ", "")
	require.NoError(t, err)
	assert.Equal(t, "bob", res.Recipient)
	assert.EqualValues(t, 1, res.MessageCount)
	assert.Equal(t, f.clock.Now(), res.Timestamp)
	_, err = uuid.Parse(res.MessageID)
	assert.NoError(t, err)

	inbox, err := f.messages.List(ctx, bob.ID, InboxFilter{})
	require.NoError(t, err)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, "hello there", inbox.Messages[0].Content)
	assert.Equal(t, models.CategoryGeneral, inbox.Messages[0].Category)

	require.Len(t, f.notifier.jobs, 1)
	job := f.notifier.jobs[0]
	assert.Equal(t, "bob@example.com", job.To)
	assert.Contains(t, job.Text, "hello there")
	assert.Contains(t, job.Text, "http://localhost:8080/dashboard")
	assert.Equal(t, []string{"accepted"}, f.observer.intake)
}

func TestSend_CountFailureStillNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.seedVerified(t, "bob", "bob@example.com", "password123")
	f.store.countErr = errors.New("count timeout")

	res, err := f.messages.Send(ctx, "bob", "still delivered", "")
	require.NoError(t, err)
	assert.Zero(t, res.MessageCount)
	assert.NotEmpty(t, res.MessageID)

	require.Len(t, f.notifier.jobs, 1)
	assert.Equal(t, "bob@example.com", f.notifier.jobs[0].To)
	assert.Contains(t, f.notifier.jobs[0].Text, "still delivered")
	assert.NotContains(t, f.notifier.jobs[0].Text, "unread")
}

func TestSend_SignUpVerifySendScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.SignUp(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.accounts.Verify(ctx, "alice", pendingCode(t, f, "alice")))

	_, err = f.messages.Send(ctx, "alice", "first note", "appreciation")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	res, err := f.messages.Send(ctx, "alice", "second note", "question")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.MessageCount)

	s, err := f.auth.Authenticate(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	inbox, err := f.messages.List(ctx, s.Identity.AccountID, InboxFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"second note", "first note"}, contents(inbox.Messages))
}

func TestSend_Rejections(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.MaxMessageLength = 20 })
	ctx := context.Background()
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")
	f.store.seedVerified(t, "dave", "dave@example.com", "password123")
	require.NoError(t, f.store.SetAccepting(ctx, bob.ID, false))
	_, err := f.accounts.SignUp(ctx, "carol", "carol@example.com", "password123")
	require.NoError(t, err)

	tests := []struct {
		name, username, content, category string
		want                              error
	}{
		{"missing handle", "", "hello", "", common.ErrValidation},
		{"blank content", "dave", "   ", "", common.ErrValidation},
		{"one char", "dave", " a ", "", common.ErrValidation},
		{"too long", "dave", strings.Repeat("x", 21), "", common.ErrValidation},
		{"bad category", "dave", "hello", "spam", common.ErrValidation},
		{"unknown recipient", "nobody", "hello", "", common.ErrRecipientNotFound},
		{"unverified recipient", "carol", "hello", "", common.ErrRecipientNotFound},
		{"not accepting", "bob", "hello", "", common.ErrRecipientNotAccepting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.messages.Send(ctx, tt.username, tt.content, tt.category)
			isErr(t, err, tt.want)
		})
	}

	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.notifier.jobs)
}

func TestSend_LengthBoundaries(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.MaxMessageLength = 20 })
	f.store.seedVerified(t, "dave", "dave@example.com", "password123")

	_, err := f.messages.Send(context.Background(), "dave", "ok", "")
	require.NoError(t, err)
	_, err = f.messages.Send(context.Background(), "dave", strings.Repeat("é", 20), "")
	require.NoError(t, err)

	_, err = f.messages.Send(context.Background(), "dave", strings.Repeat("x", 21), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message is too long (max 20 characters)")
}

func TestList_OrderFiltersAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")
	base := f.clock.Now()

	f.store.seedMessage(bob.ID, "Great talk yesterday", models.CategoryAppreciation, base.Add(1*time.Minute))
	q := f.store.seedMessage(bob.ID, "What is your stack?", models.CategoryQuestion, base.Add(3*time.Minute))
	f.store.seedMessage(bob.ID, "legacy entry", "", base.Add(2*time.Minute))
	f.store.seedMessage(bob.ID, "   ", models.CategoryGeneral, base.Add(4*time.Minute))
	f.store.seedMessage(bob.ID, "Try smaller PRs", models.CategorySuggestion, base)
	require.NoError(t, memMessages{f.store}.MarkRead(ctx, bob.ID, q.ID))

	inbox, err := f.messages.List(ctx, bob.ID, InboxFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"What is your stack?", "legacy entry", "Great talk yesterday", "Try smaller PRs"}, contents(inbox.Messages))
	assert.Equal(t, "bob", inbox.Username)
	assert.True(t, inbox.IsAcceptingMessages)
	assert.Equal(t, 4, inbox.TotalCount)
	assert.Equal(t, 3, inbox.UnreadCount)

	wantCounts := map[models.Category]int{
		models.CategoryQuestion:     1,
		models.CategoryGeneral:      1,
		models.CategoryAppreciation: 1,
		models.CategorySuggestion:   1,
	}
	if diff := cmp.Diff(wantCounts, inbox.CategoryCounts); diff != "" {
		t.Fatalf("category counts mismatch (-want +got):\n%s", diff)
	}

	general, err := f.messages.List(ctx, bob.ID, InboxFilter{Category: models.CategoryGeneral})
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy entry"}, contents(general.Messages))
	assert.Equal(t, 4, general.TotalCount)

	search, err := f.messages.List(ctx, bob.ID, InboxFilter{Query: "TALK"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Great talk yesterday"}, contents(search.Messages))

	unread, err := f.messages.List(ctx, bob.ID, InboxFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy entry", "Great talk yesterday", "Try smaller PRs"}, contents(unread.Messages))
}

func TestList_EmptyInbox(t *testing.T) {
	f := newFixture(t)
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")

	inbox, err := f.messages.List(context.Background(), bob.ID, InboxFilter{})
	require.NoError(t, err)
	assert.NotNil(t, inbox.Messages)
	assert.Empty(t, inbox.Messages)
	assert.Zero(t, inbox.TotalCount)

	_, err = f.messages.List(context.Background(), "missing", InboxFilter{})
	isErr(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")
	dave := f.store.seedVerified(t, "dave", "dave@example.com", "password123")

	keep := f.store.seedMessage(bob.ID, "keep me", models.CategoryGeneral, f.clock.Now())
	drop := f.store.seedMessage(bob.ID, "drop me", models.CategoryGeneral, f.clock.Now().Add(time.Second))

	// another account cannot delete bob's message
	isErr(t, f.messages.Delete(ctx, dave.ID, drop.ID), common.ErrorNotFound)
	isErr(t, f.messages.Delete(ctx, bob.ID, "not-a-uuid"), common.ErrorNotFound)
	isErr(t, f.messages.Delete(ctx, bob.ID, uuid.NewString()), common.ErrorNotFound)

	require.NoError(t, f.messages.Delete(ctx, bob.ID, drop.ID))
	isErr(t, f.messages.Delete(ctx, bob.ID, drop.ID), common.ErrorNotFound)

	inbox, err := f.messages.List(ctx, bob.ID, InboxFilter{})
	require.NoError(t, err)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, keep.ID, inbox.Messages[0].ID)
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")
	dave := f.store.seedVerified(t, "dave", "dave@example.com", "password123")
	m := f.store.seedMessage(bob.ID, "hello bob", models.CategoryGeneral, f.clock.Now())

	isErr(t, f.messages.MarkRead(ctx, dave.ID, m.ID), common.ErrorNotFound)
	isErr(t, f.messages.MarkRead(ctx, bob.ID, "bogus"), common.ErrorNotFound)
	require.NoError(t, f.messages.MarkRead(ctx, bob.ID, m.ID))

	inbox, err := f.messages.List(ctx, bob.ID, InboxFilter{})
	require.NoError(t, err)
	assert.Zero(t, inbox.UnreadCount)
	assert.True(t, inbox.Messages[0].IsRead)
}

func TestAcceptToggle_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.store.seedVerified(t, "bob", "bob@example.com", "password123")

	on, err := f.messages.GetAccepting(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, f.messages.SetAccepting(ctx, bob.ID, false))
	on, err = f.messages.GetAccepting(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = f.messages.Send(ctx, "bob", "are you there?", "")
	isErr(t, err, common.ErrRecipientNotAccepting)

	require.NoError(t, f.messages.SetAccepting(ctx, bob.ID, true))
	_, err = f.messages.Send(ctx, "bob", "are you there?", "")
	require.NoError(t, err)

	isErr(t, f.messages.SetAccepting(ctx, "missing", true), common.ErrorNotFound)
	_, err = f.messages.GetAccepting(ctx, "missing")
	isErr(t, err, common.ErrorNotFound)
}
