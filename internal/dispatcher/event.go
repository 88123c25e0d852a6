// Package dispatcher marshals background events into the Bubble Tea loop.
// Core state pushes and hotkey triggers both arrive as ordinary tea.Msg
// values, so every mutation of UI state happens on the UI goroutine.
package dispatcher

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/hotkey"
	"github.com/Rorical/QuickPane/internal/update"
)

type EventDispatcher struct {
	bus      *eventbus.Bus
	listener *hotkey.Listener // nil when the hotkey feature is unavailable
}

func NewEventDispatcher(bus *eventbus.Bus, listener *hotkey.Listener) *EventDispatcher {
	return &EventDispatcher{bus: bus, listener: listener}
}

func (d *EventDispatcher) Bus() *eventbus.Bus {
	return d.bus
}

// ListenForCoreEvents blocks on the core-to-UI channel and re-emits the
// next event as a tea.Msg. The model re-issues it after every received
// event, keeping exactly one listener outstanding.
func (d *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-d.bus.CoreToUI():
			return update.CoreEventMsg{Event: event}
		case <-d.bus.Done():
			return nil
		}
	}
}

// ListenForToggles re-emits hotkey triggers as ToggleMsg. Returns nil when
// no hotkey is registered; the in-app binding and tray-style command remain
// the fallback.
func (d *EventDispatcher) ListenForToggles() tea.Cmd {
	if d.listener == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-d.listener.Toggles():
			return update.ToggleMsg{}
		case <-d.listener.Done():
			return nil
		}
	}
}
