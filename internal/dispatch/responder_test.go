package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keetrykee/Kilua/internal/completion"
	"github.com/keetrykee/Kilua/internal/session"
)

type fakeCompleter struct {
	reply   string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, userID int64, prompt string) (string, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.err
}

func newTestResponder(completer Completer) (*Responder, *session.History, *session.Cooldowns) {
	history := session.NewHistory(20)
	cooldowns := session.NewCooldowns(3 * time.Second)
	dispatcher := NewDispatcher(2000, 0, zap.NewNop())
	return NewResponder(completer, history, cooldowns, dispatcher, zap.NewNop()), history, cooldowns
}

func TestRespondSuccessAppendsAndSetsCooldown(t *testing.T) {
	r, history, cooldowns := newTestResponder(&fakeCompleter{reply: "a fine answer"})

	var sent []string
	handled := r.Respond(context.Background(), 1, "a fine question", collectSend(&sent))

	assert.True(t, handled)
	assert.Equal(t, []string{"a fine answer"}, sent)

	turns := history.Get(1)
	require.Len(t, turns, 2)
	assert.Equal(t, "a fine question", turns[0].Content)
	assert.Equal(t, "a fine answer", turns[1].Content)

	assert.True(t, cooldowns.OnCooldown(1))
}

func TestRespondFailureSendsOneFallback(t *testing.T) {
	r, history, cooldowns := newTestResponder(&fakeCompleter{
		err: &completion.Error{Kind: completion.KindBadStatus},
	})

	var sent []string
	handled := r.Respond(context.Background(), 1, "doomed question", collectSend(&sent))

	assert.True(t, handled)
	require.Len(t, sent, 1, "exactly one fallback line")
	assert.Contains(t, FallbackLines, sent[0])

	assert.Empty(t, history.Get(1), "no orphan user turn on failure")
	assert.False(t, cooldowns.OnCooldown(1), "failed completion must not set the cooldown")
}

func TestRespondDropsConcurrentSameUser(t *testing.T) {
	completer := &fakeCompleter{
		reply:   "slow answer",
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	r, _, _ := newTestResponder(completer)

	var sent []string
	done := make(chan bool)
	go func() {
		done <- r.Respond(context.Background(), 1, "first", collectSend(&sent))
	}()
	<-completer.started

	var dropped []string
	assert.False(t, r.Respond(context.Background(), 1, "second", collectSend(&dropped)))
	assert.Empty(t, dropped)

	close(completer.release)
	assert.True(t, <-done)
}

func TestRespondAllowsConcurrentDifferentUsers(t *testing.T) {
	completer := &fakeCompleter{
		reply:   "answer",
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	r, _, _ := newTestResponder(completer)

	done := make(chan bool, 2)
	var aSent, bSent []string
	go func() { done <- r.Respond(context.Background(), 1, "q", collectSend(&aSent)) }()
	<-completer.started
	go func() { done <- r.Respond(context.Background(), 2, "q", collectSend(&bSent)) }()
	<-completer.started

	close(completer.release)
	assert.True(t, <-done)
	assert.True(t, <-done)
}
