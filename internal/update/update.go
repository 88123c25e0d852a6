// Package update contains the Bubble Tea message handlers: keyboard input,
// animation ticks, and events marshaled in from the core service and the
// hotkey listener.
package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/internal/popup"
)

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// ToggleMsg is a show/hide request: the global hotkey fired or the in-app
// binding was pressed. Processed in arrival order by the UI loop.
type ToggleMsg struct{}

// FrameMsg drives the popup animation at popup.FPS while a transition is in
// flight.
type FrameMsg time.Time

// TickMsg drives the slow generating indicator.
type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func FrameCmd() tea.Cmd {
	return tea.Tick(time.Second/popup.FPS, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// HandleUpdate routes everything except the dispatcher messages, which the
// app model handles itself so it can re-arm the listeners.
func HandleUpdate(appModel *models.AppModel, ctl *popup.Controller, msg tea.Msg, bus *eventbus.Bus) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(appModel, ctl, msg, bus)
	case tea.WindowSizeMsg:
		appModel.Width = msg.Width
		appModel.Height = msg.Height
		return nil
	case TickMsg:
		return HandleTickMsg(appModel)
	}
	return nil
}

// errorStatusTicks is how long a stream error stays in the status bar, in
// ticks of TickCmd. The transcript notice remains either way.
const errorStatusTicks = 6

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	if appModel.Generation == models.StatusStreaming {
		appModel.SpinnerPos = (appModel.SpinnerPos + 1) % 4
	}
	if appModel.ErrorTicks > 0 {
		appModel.ErrorTicks--
		if appModel.ErrorTicks == 0 && appModel.Generation == models.StatusError {
			appModel.Generation = models.StatusIdle
			appModel.Status = "Ready"
		}
	}
	return TickCmd()
}

// HandleCoreEvent applies a core state push to the UI model.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Messages = event.Messages
		appModel.Generation = event.Status
		appModel.Model = event.Model

		switch {
		case event.Err != nil:
			appModel.Status = "Error: " + event.Err.Error()
			appModel.ErrorTicks = errorStatusTicks
		case event.Status == models.StatusStreaming:
			appModel.Status = "Generating"
			appModel.ErrorTicks = 0
		default:
			appModel.Status = "Ready"
			appModel.ErrorTicks = 0
		}
	}
	return nil
}
