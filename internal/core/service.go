// Package core holds the chat session coordinator: it owns the conversation,
// serializes submits, consumes the token stream off the UI loop and commits
// completed exchanges to the history store.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Rorical/QuickPane/internal/chat"
	"github.com/Rorical/QuickPane/internal/config"
	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/history"
	"github.com/Rorical/QuickPane/internal/models"
)

const systemPrompt = "You are a concise, helpful assistant. Your name is QuickPane. " +
	"Avoid long paragraphs; quick, concise sentences are best."

// maxContextTurns caps how many conversation turns are sent per request.
const maxContextTurns = 20

// Completer is the remote model collaborator. chat.Client implements it;
// tests substitute a scripted fake.
type Completer interface {
	StreamChat(ctx context.Context, model string, turns []models.Turn) <-chan chat.Event
	Complete(ctx context.Context, model string, turns []models.Turn) (string, error)
}

type Service struct {
	client Completer // nil when no API key is configured
	config *config.Config
	store  *history.Store
	state  *State
	bus    *eventbus.Bus
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService wires the coordinator. A missing API key does not fail
// construction; the service reports the problem and rejects submits so the
// user can fix configuration without restarting into a crash.
func NewService(cfg *config.Config, store *history.Store, bus *eventbus.Bus) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		config: cfg,
		store:  store,
		state:  NewState(),
		bus:    bus,
		ctx:    ctx,
		cancel: cancel,
	}

	if c := chat.NewClient(cfg.GetAPIKey(), cfg.GetBaseURL()); c != nil {
		s.client = c
	}

	// Reload the persisted conversation. The history envelope records the
	// model it was written with, but the profile file is what selects the
	// model; both switchers save there.
	_, turns := store.Load()
	s.state.LoadFromHistory(turns)

	s.addWelcomeNotices()
	return s
}

// NewServiceWithClient is NewService with an injected model client. Tests
// use it to script streams.
func NewServiceWithClient(cfg *config.Config, store *history.Store, bus *eventbus.Bus, client Completer) *Service {
	s := NewService(cfg, store, bus)
	s.client = client
	return s
}

func (s *Service) IsReady() bool {
	return s.client != nil
}

// Start runs the coordinator event loop in a goroutine and pushes the
// initial state so the UI has a transcript before the first toggle.
func (s *Service) Start() {
	s.pushStateToUI()
	go s.eventLoop()
}

func (s *Service) Stop() {
	s.cancel()
}

func (s *Service) eventLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-s.bus.UIToCore():
			s.handleUIEvent(event)
		}
	}
}

func (s *Service) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SubmitEvent:
		s.processSubmit(e.Text)
	case eventbus.ClearHistoryEvent:
		s.clearHistory()
	case eventbus.SwitchModelEvent:
		s.switchModel(e.Model)
	case eventbus.RefreshEvent:
		s.pushStateToUI()
	}
}

func (s *Service) processSubmit(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if s.config.Settings().Debug {
		s.state.AddSystemNotice(fmt.Sprintf("[debug] Submit: %.60s", text))
	}

	if s.client == nil {
		s.state.AddSystemNotice("No API key configured. Set OPENAI_API_KEY or run: quickpane profile add")
		s.pushStateToUI()
		return
	}

	// One outstanding request per conversation: a submit while a response
	// is streaming is rejected, not queued.
	if s.state.IsStreaming() {
		s.state.AddSystemNotice("A response is still streaming; wait for it to finish.")
		s.pushStateToUI()
		return
	}

	s.state.StartStreamingWithUserTurn(text)
	s.saveHistory()
	s.pushStateToUI()

	gen := s.state.Generation()
	model := s.config.GetModel()
	request := s.requestTurns()

	if s.config.Settings().NoStream {
		go s.completeBlocking(gen, model, request)
		return
	}
	go s.pump(gen, s.client.StreamChat(s.ctx, model, request))
}

// requestTurns assembles the request payload: the fixed system prompt plus
// the most recent conversation turns, oldest first.
func (s *Service) requestTurns() []models.Turn {
	turns := s.state.Turns()
	if len(turns) > maxContextTurns {
		turns = turns[len(turns)-maxContextTurns:]
	}
	request := make([]models.Turn, 0, len(turns)+1)
	request = append(request, models.Turn{Role: models.RoleSystem, Content: systemPrompt})
	return append(request, turns...)
}

// pump consumes the token stream on its own goroutine so the coordinator's
// event loop stays responsive (a ClearHistory mid-stream must not wait for
// the stream to end).
func (s *Service) pump(gen int, events <-chan chat.Event) {
	for ev := range events {
		switch {
		case ev.Err != nil:
			s.fail(gen, ev.Err)
			return
		case ev.Done:
			s.commit(gen)
			return
		default:
			if s.state.AppendPending(gen, ev.Delta) {
				s.pushStateToUI()
			}
		}
	}
	// Stream closed without a terminal marker; treat as complete.
	s.commit(gen)
}

func (s *Service) completeBlocking(gen int, model string, request []models.Turn) {
	text, err := s.client.Complete(s.ctx, model, request)
	if err != nil {
		s.fail(gen, err)
		return
	}
	s.state.AppendPending(gen, text)
	s.commit(gen)
}

func (s *Service) commit(gen int) {
	if s.state.CommitPending(gen) {
		s.saveHistory()
	}
	s.pushStateToUI()
}

func (s *Service) fail(gen int, err error) {
	if s.state.FinishWithError(gen, err) {
		s.pushStateToUI()
	}
}

func (s *Service) clearHistory() {
	s.state.Clear()
	if err := s.store.Clear(); err != nil {
		s.state.AddSystemNotice("Could not remove history file: " + err.Error())
	} else {
		s.state.AddSystemNotice("History cleared.")
	}
	s.pushStateToUI()
}

func (s *Service) switchModel(model string) {
	if model == "" {
		return
	}
	s.config.SetModel(model)
	// Persist promptly so the selection survives a restart.
	if err := s.config.Save(); err != nil {
		log.Printf("Warning: failed to save config: %v", err)
	}
	s.saveHistory()
	if s.config.Settings().Debug {
		s.state.AddSystemNotice("[debug] Model switched to " + model)
	}
	s.pushStateToUI()
}

func (s *Service) saveHistory() {
	if err := s.store.Save(s.config.GetModel(), s.state.Turns()); err != nil {
		log.Printf("Warning: failed to save history: %v", err)
	}
}

func (s *Service) pushStateToUI() {
	err := s.bus.SendToUI(eventbus.StateUpdateEvent{
		Messages: s.state.Messages(),
		Status:   s.state.Status(),
		Model:    s.config.GetModel(),
		Err:      s.state.LastError(),
	})
	if errors.Is(err, eventbus.ErrClosed) {
		// Shutdown; late pushes from a draining stream are expected.
		return
	}
	if err != nil {
		// The UI loop is wedged or gone; nothing useful to do but log.
		log.Printf("Error sending state to UI: %v", err)
	}
}

// AddSystemNotice lets the app layer surface startup notices (hotkey
// registration outcome, configuration warnings) in the transcript.
func (s *Service) AddSystemNotice(text string) {
	s.state.AddSystemNotice(text)
}

func (s *Service) addWelcomeNotices() {
	s.state.AddProgramNotice("-- QUICKPANE --")
	if s.IsReady() {
		s.state.AddProgramNotice(fmt.Sprintf("Profile: %s | Model: %s", s.config.ActiveProfile, s.config.GetModel()))
		s.state.AddProgramNotice("Enter sends, Shift+Enter inserts a newline, Esc hides.")
	} else {
		s.state.AddProgramNotice(fmt.Sprintf("Profile: %s [NOT CONFIGURED]", s.config.ActiveProfile))
		s.state.AddProgramNotice("Set OPENAI_API_KEY or run: quickpane profile add <name>")
	}
}
