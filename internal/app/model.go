package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/QuickPane/internal/dispatcher"
	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/internal/popup"
	"github.com/Rorical/QuickPane/internal/update"
	"github.com/Rorical/QuickPane/ui/components"
)

// AppModel is the Bubble Tea model. It owns the popup controller and the UI
// state; all chat state arrives as pushes from the core service.
type AppModel struct {
	appModel   models.AppModel
	popup      *popup.Controller
	dispatcher *dispatcher.EventDispatcher
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForCoreEvents(),
		m.dispatcher.ListenForToggles(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case update.CoreEventMsg:
		cmd := update.HandleCoreEvent(&m.appModel, msg)
		// Re-arm the core listener so the next push is delivered.
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())

	case update.ToggleMsg:
		return m, tea.Batch(update.ToggleFrame(m.popup), m.dispatcher.ListenForToggles())

	case update.FrameMsg:
		m.popup.Advance()
		if m.popup.Animating() {
			return m, update.FrameCmd()
		}
		return m, nil
	}

	return m, update.HandleUpdate(&m.appModel, m.popup, msg, m.dispatcher.Bus())
}

func (m *AppModel) View() string {
	if !m.popup.Visible() {
		return components.RenderResident(&m.appModel)
	}
	return components.RenderPopup(&m.appModel, m.popup)
}
