package core

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rorical/QuickPane/internal/chat"
	"github.com/Rorical/QuickPane/internal/config"
	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/history"
	"github.com/Rorical/QuickPane/internal/models"
)

// fakeClient scripts model responses. Each expected request must be armed
// with expectStream before the submit that triggers it.
type fakeClient struct {
	mu       sync.Mutex
	streams  []chan chat.Event
	requests [][]models.Turn
	reply    string
	replyErr error
}

func (f *fakeClient) expectStream() chan chat.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan chat.Event, 16)
	f.streams = append(f.streams, ch)
	return ch
}

func (f *fakeClient) StreamChat(_ context.Context, _ string, turns []models.Turn) <-chan chat.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, turns)
	if len(f.streams) == 0 {
		ch := make(chan chat.Event)
		close(ch)
		return ch
	}
	ch := f.streams[0]
	f.streams = f.streams[1:]
	return ch
}

func (f *fakeClient) Complete(_ context.Context, _ string, turns []models.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, turns)
	return f.reply, f.replyErr
}

func (f *fakeClient) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeClient) request(i int) []models.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func newTestService(t *testing.T) (*Service, *fakeClient, *history.Store) {
	t.Helper()
	t.Setenv("QUICKPANE_HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MODEL", "")
	t.Setenv("QUICKPANE_NO_STREAM", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	store := history.NewStoreAt(filepath.Join(t.TempDir(), "history.json"))
	bus := eventbus.NewBus()
	fake := &fakeClient{}
	return NewServiceWithClient(cfg, store, bus, fake), fake, store
}

func waitIdle(t *testing.T, svc *Service) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !svc.state.IsStreaming()
	}, 2*time.Second, 5*time.Millisecond, "stream never finished")
}

func roles(turns []models.Turn) []models.Role {
	out := make([]models.Role, len(turns))
	for i, turn := range turns {
		out[i] = turn.Role
	}
	return out
}

func TestService_EmptySubmitIgnored(t *testing.T) {
	svc, fake, _ := newTestService(t)

	svc.processSubmit("")
	svc.processSubmit("   \n\t ")

	require.Empty(t, svc.state.Turns(), "whitespace submit appended a turn")
	require.Zero(t, fake.requestCount(), "whitespace submit reached the client")
}

func TestService_SubmitStreamsAndCommits(t *testing.T) {
	svc, fake, store := newTestService(t)
	stream := fake.expectStream()

	svc.processSubmit("Hello")

	// The user turn is committed and on disk before the response lands.
	require.Equal(t, []models.Role{models.RoleUser}, roles(svc.state.Turns()))
	_, onDisk := store.Load()
	require.Len(t, onDisk, 1)

	stream <- chat.Event{Delta: "Hi "}
	stream <- chat.Event{Delta: "there"}
	stream <- chat.Event{Done: true}
	close(stream)

	waitIdle(t, svc)

	turns := svc.state.Turns()
	require.Equal(t, []models.Role{models.RoleUser, models.RoleAssistant}, roles(turns))
	require.Equal(t, "Hello", turns[0].Content)
	require.Equal(t, "Hi there", turns[1].Content)
	require.Equal(t, models.StatusIdle, svc.state.Status())

	// The exact pair survives a reload from disk.
	_, reloaded := store.Load()
	require.Len(t, reloaded, 2)
	require.Equal(t, "Hello", reloaded[0].Content)
	require.Equal(t, models.RoleUser, reloaded[0].Role)
	require.Equal(t, "Hi there", reloaded[1].Content)
	require.Equal(t, models.RoleAssistant, reloaded[1].Role)
}

func TestService_SubmitWhileStreamingRejected(t *testing.T) {
	svc, fake, _ := newTestService(t)
	stream := fake.expectStream()

	svc.processSubmit("first")
	svc.processSubmit("second")

	require.Equal(t, 1, fake.requestCount(), "second submit started a concurrent request")
	require.Equal(t, []models.Role{models.RoleUser}, roles(svc.state.Turns()),
		"rejected submit must not append a turn")

	stream <- chat.Event{Delta: "ok"}
	stream <- chat.Event{Done: true}
	close(stream)
	waitIdle(t, svc)

	// After the stream finishes a new submit goes through.
	next := fake.expectStream()
	svc.processSubmit("second again")
	require.Equal(t, 2, fake.requestCount())
	next <- chat.Event{Done: true}
	close(next)
	waitIdle(t, svc)
}

func TestService_ClearMidStreamDiscardsResult(t *testing.T) {
	svc, fake, store := newTestService(t)
	stream := fake.expectStream()

	svc.processSubmit("Hello")
	stream <- chat.Event{Delta: "partial "}

	svc.clearHistory()
	require.Empty(t, svc.state.Turns())

	// The stream finishes after the clear; its result must be discarded.
	stream <- chat.Event{Delta: "response"}
	stream <- chat.Event{Done: true}
	close(stream)

	require.Never(t, func() bool {
		return len(svc.state.Turns()) != 0
	}, 200*time.Millisecond, 10*time.Millisecond, "late stream result was committed")

	_, turns := store.Load()
	require.Empty(t, turns, "late stream result reached disk")
	_, err := os.Stat(store.Path())
	require.True(t, os.IsNotExist(err), "history file should stay absent after clear")
}

func TestService_ClearHistoryIdempotent(t *testing.T) {
	svc, fake, store := newTestService(t)
	stream := fake.expectStream()
	svc.processSubmit("Hello")
	stream <- chat.Event{Done: true}
	close(stream)
	waitIdle(t, svc)

	svc.clearHistory()
	svc.clearHistory()

	require.Empty(t, svc.state.Turns())
	_, err := os.Stat(store.Path())
	require.True(t, os.IsNotExist(err))
}

func TestService_StreamErrorKeepsConversationConsistent(t *testing.T) {
	svc, fake, store := newTestService(t)
	stream := fake.expectStream()

	svc.processSubmit("Hello")
	stream <- chat.Event{Delta: "doomed "}
	stream <- chat.Event{Err: context.DeadlineExceeded}
	close(stream)

	waitIdle(t, svc)

	// The failed response is not committed; the user turn stays for retry.
	require.Equal(t, []models.Role{models.RoleUser}, roles(svc.state.Turns()))
	require.Error(t, svc.state.LastError())
	require.Equal(t, models.StatusError, svc.state.Status())

	_, onDisk := store.Load()
	require.Equal(t, []models.Role{models.RoleUser}, roles(onDisk))

	// The error is visible in the transcript as a system notice.
	var found bool
	for _, m := range svc.state.Messages() {
		if m.Type == models.System && len(m.Content) > 6 && m.Content[:6] == "Error:" {
			found = true
		}
	}
	require.True(t, found, "no error notice in transcript")

	// Retry works.
	next := fake.expectStream()
	svc.processSubmit("Hello again")
	require.Equal(t, 2, fake.requestCount())
	next <- chat.Event{Delta: "better"}
	next <- chat.Event{Done: true}
	close(next)
	waitIdle(t, svc)
	require.Equal(t, models.StatusIdle, svc.state.Status())
	require.NoError(t, svc.state.LastError())
}

func TestService_RequestCarriesSystemPromptAndWindow(t *testing.T) {
	svc, fake, _ := newTestService(t)

	// Seed a long conversation.
	var seed []models.Turn
	for i := 0; i < 30; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		seed = append(seed, models.NewTurn(role, "turn"))
	}
	svc.state.LoadFromHistory(seed)

	stream := fake.expectStream()
	svc.processSubmit("latest question")

	req := fake.request(0)
	require.Len(t, req, maxContextTurns+1, "request should be system prompt plus capped window")
	require.Equal(t, models.RoleSystem, req[0].Role)
	require.Equal(t, "latest question", req[len(req)-1].Content, "newest turn must close the request")

	stream <- chat.Event{Done: true}
	close(stream)
	waitIdle(t, svc)
}

func TestService_SwitchModelPersistsAcrossRestart(t *testing.T) {
	svc, _, store := newTestService(t)

	svc.switchModel("o4-mini")
	require.Equal(t, "o4-mini", svc.config.GetModel())

	model, _ := store.Load()
	require.Equal(t, "o4-mini", model)

	// A fresh service over a reloaded profile adopts the saved selection.
	cfg2, err := config.LoadConfig()
	require.NoError(t, err)
	svc2 := NewServiceWithClient(cfg2, store, eventbus.NewBus(), &fakeClient{})
	require.Equal(t, "o4-mini", svc2.config.GetModel())
}

func TestService_NoClientRejectsSubmit(t *testing.T) {
	t.Setenv("QUICKPANE_HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MODEL", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	store := history.NewStoreAt(filepath.Join(t.TempDir(), "history.json"))
	svc := NewService(cfg, store, eventbus.NewBus())

	require.False(t, svc.IsReady())
	svc.processSubmit("hello?")
	require.Empty(t, svc.state.Turns(), "submit without a client appended a turn")
}

func TestService_BlockingCompletionMode(t *testing.T) {
	t.Setenv("QUICKPANE_NO_STREAM", "1")
	t.Setenv("QUICKPANE_HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MODEL", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	store := history.NewStoreAt(filepath.Join(t.TempDir(), "history.json"))
	fake := &fakeClient{reply: "Hi there"}
	svc := NewServiceWithClient(cfg, store, eventbus.NewBus(), fake)

	svc.processSubmit("Hello")
	waitIdle(t, svc)

	turns := svc.state.Turns()
	require.Equal(t, []models.Role{models.RoleUser, models.RoleAssistant}, roles(turns))
	require.Equal(t, "Hi there", turns[1].Content)
}

func TestService_ShutdownMidStreamExitsCleanly(t *testing.T) {
	svc, fake, store := newTestService(t)
	stream := fake.expectStream()

	svc.Start()
	svc.processSubmit("Hello")
	require.True(t, svc.state.IsStreaming())

	// Application shutdown order: stop the service, close the bus. The
	// pump is still delivering; its late pushes must land as ErrClosed, not
	// a send-on-closed-channel panic.
	svc.Stop()
	svc.bus.Close()

	stream <- chat.Event{Delta: "Hi "}
	stream <- chat.Event{Delta: "there"}
	stream <- chat.Event{Done: true}
	close(stream)

	waitIdle(t, svc)

	// The drained exchange still committed before exit.
	_, reloaded := store.Load()
	require.Len(t, reloaded, 2)
	require.Equal(t, "Hi there", reloaded[1].Content)
}
