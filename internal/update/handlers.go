package update

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/internal/popup"
)

// HandleKeyMsg implements the input contract: Enter submits, Shift+Enter
// (or Alt+Enter on terminals without the extended keyboard protocol)
// inserts a newline, Esc hides the popup, and typing only reaches the input
// field while the popup is shown.
func HandleKeyMsg(appModel *models.AppModel, ctl *popup.Controller, keyMsg tea.KeyMsg, bus *eventbus.Bus) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c", "ctrl+q":
		return tea.Quit
	case "ctrl+t":
		// In-app equivalent of the global hotkey / tray show-hide command.
		return ToggleFrame(ctl)
	}

	if ctl.State() != popup.Shown {
		return nil
	}

	switch keyMsg.String() {
	case "esc":
		return escapeFrame(ctl)
	case "enter":
		return submitInput(appModel, bus)
	case "shift+enter", "alt+enter", "ctrl+j":
		appModel.Input += "\n"
	case "ctrl+l":
		if err := bus.SendToCore(eventbus.ClearHistoryEvent{}); err != nil {
			appModel.Status = "Error clearing history: " + err.Error()
		}
	case "ctrl+o":
		appModel.ShowSystem = !appModel.ShowSystem
	case "ctrl+p":
		return cycleModel(appModel, bus)
	case "backspace":
		appModel.Input = trimLastRune(appModel.Input)
	case "space":
		appModel.Input += " "
	case "tab":
		appModel.Input += "\t"
	default:
		if s := keyMsg.String(); utf8.RuneCountInString(s) == 1 {
			appModel.Input += s
		}
	}
	return nil
}

// ToggleFrame flips popup visibility and schedules a frame loop only when
// one is not already running. A toggle landing mid-animation coalesces into
// the active transition; starting a second loop would double the frame rate.
func ToggleFrame(ctl *popup.Controller) tea.Cmd {
	wasAnimating := ctl.Animating()
	ctl.Toggle()
	if !wasAnimating && ctl.Animating() {
		return FrameCmd()
	}
	return nil
}

func escapeFrame(ctl *popup.Controller) tea.Cmd {
	wasAnimating := ctl.Animating()
	ctl.Escape()
	if !wasAnimating && ctl.Animating() {
		return FrameCmd()
	}
	return nil
}

func submitInput(appModel *models.AppModel, bus *eventbus.Bus) tea.Cmd {
	// Whitespace-only input is never submitted.
	if strings.TrimSpace(appModel.Input) == "" {
		return nil
	}
	if !appModel.ChatReady {
		appModel.Input = ""
		appModel.Status = "Chat service not available"
		return nil
	}
	if err := bus.SendToCore(eventbus.SubmitEvent{Text: appModel.Input}); err != nil {
		appModel.Status = "Error sending message: " + err.Error()
		return nil
	}
	appModel.Input = ""
	return nil
}

func cycleModel(appModel *models.AppModel, bus *eventbus.Bus) tea.Cmd {
	if len(appModel.Models) == 0 {
		return nil
	}
	next := appModel.Models[0]
	for i, m := range appModel.Models {
		if m == appModel.Model {
			next = appModel.Models[(i+1)%len(appModel.Models)]
			break
		}
	}
	if err := bus.SendToCore(eventbus.SwitchModelEvent{Model: next}); err != nil {
		appModel.Status = "Error switching model: " + err.Error()
	}
	return nil
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
