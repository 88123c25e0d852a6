package core

import (
	"strings"
	"sync"

	"github.com/Rorical/QuickPane/internal/models"
)

// reloadTurns is how many persisted turns are rendered into the transcript
// after a restart; the full conversation is still held for requests.
const reloadTurns = 10

// State is the single source of truth for the conversation. It is mutated
// by the core service goroutine and the stream pump; the mutex covers that
// pair plus snapshot reads for the UI.
//
// Two parallel structures are kept: turns, the committed conversation that
// is persisted and sent to the model, and transcript, the display list that
// additionally carries UI-only notices in chronological order. The pending
// assistant text lives outside both until the stream completes.
type State struct {
	mu         sync.RWMutex
	turns      []models.Turn
	transcript []models.Message

	pending       strings.Builder
	pendingActive bool

	streaming bool
	lastErr   error

	// generation increments on Clear. A stream pump started under an older
	// generation discards its result instead of committing into a
	// conversation that no longer exists.
	generation int
}

func NewState() *State {
	return &State{}
}

// LoadFromHistory seeds the conversation with persisted turns and renders
// the most recent of them into the transcript.
func (s *State) LoadFromHistory(turns []models.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns[:0], turns...)

	start := len(turns) - reloadTurns
	if start < 0 {
		start = 0
	}
	for _, t := range turns[start:] {
		s.transcript = append(s.transcript, turnMessage(t))
	}
}

func turnMessage(t models.Turn) models.Message {
	mt := models.System
	switch t.Role {
	case models.RoleUser:
		mt = models.User
	case models.RoleAssistant:
		mt = models.Assistant
	}
	return models.Message{Content: t.Content, Type: mt}
}

// Turns returns a copy of the committed conversation, oldest first.
func (s *State) Turns() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Messages returns the display transcript, with the live pending assistant
// text appended last when a response is streaming.
func (s *State) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.transcript), len(s.transcript)+1)
	copy(out, s.transcript)
	if s.pendingActive {
		out = append(out, models.Message{
			Content: s.pending.String(),
			Type:    models.Assistant,
			Pending: true,
		})
	}
	return out
}

func (s *State) Status() models.GenerationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.streaming:
		return models.StatusStreaming
	case s.lastErr != nil:
		return models.StatusError
	}
	return models.StatusIdle
}

func (s *State) IsStreaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streaming
}

func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *State) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// AddProgramNotice appends a banner line that is always rendered.
func (s *State) AddProgramNotice(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.Message{Content: content, Type: models.Program})
}

// AddSystemNotice appends a runtime notice. System notices are hidden when
// the user turns system-message visibility off.
func (s *State) AddSystemNotice(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, models.Message{Content: content, Type: models.System})
}

// StartStreamingWithUserTurn atomically commits the user's turn and enters
// the streaming state.
func (s *State) StartStreamingWithUserTurn(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := models.NewTurn(models.RoleUser, content)
	s.turns = append(s.turns, turn)
	s.transcript = append(s.transcript, turnMessage(turn))
	s.streaming = true
	s.lastErr = nil
	s.pending.Reset()
	s.pendingActive = false
}

// AppendPending adds a streamed delta to the uncommitted assistant turn.
// Returns false (and does nothing) when gen is stale.
func (s *State) AppendPending(gen int, delta string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.pending.WriteString(delta)
	s.pendingActive = true
	return true
}

// CommitPending turns the streamed text into a committed assistant turn and
// leaves the streaming state. Returns false when gen is stale: the cleared
// conversation stays empty and the result is discarded.
func (s *State) CommitPending(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}

	turn := models.NewTurn(models.RoleAssistant, s.pending.String())
	s.turns = append(s.turns, turn)
	s.transcript = append(s.transcript, turnMessage(turn))
	s.pending.Reset()
	s.pendingActive = false
	s.streaming = false
	s.lastErr = nil
	return true
}

// FinishWithError leaves the streaming state without committing anything.
// The user's turn stays in the conversation so a retry is a plain resubmit.
func (s *State) FinishWithError(gen int, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}

	s.pending.Reset()
	s.pendingActive = false
	s.streaming = false
	s.lastErr = err
	s.transcript = append(s.transcript, models.Message{
		Content: "Error: " + err.Error(),
		Type:    models.System,
	})
	return true
}

// Clear empties the conversation and transcript and invalidates any
// in-flight stream.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.turns = nil
	s.transcript = nil
	s.pending.Reset()
	s.pendingActive = false
	s.streaming = false
	s.lastErr = nil
}
