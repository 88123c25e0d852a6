// Package app assembles the pieces: config, history store, event bus, chat
// service, hotkey listener, popup controller and the Bubble Tea program.
package app

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/Rorical/QuickPane/internal/config"
	"github.com/Rorical/QuickPane/internal/core"
	"github.com/Rorical/QuickPane/internal/dispatcher"
	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/history"
	"github.com/Rorical/QuickPane/internal/hotkey"
	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/internal/popup"
)

// Application manages the complete application lifecycle
type Application struct {
	config   *config.Config
	bus      *eventbus.Bus
	service  *core.Service
	listener *hotkey.Listener // nil when registration failed
	model    *AppModel
}

func NewApplication() (*Application, error) {
	// Optional .env next to the working directory; absence is normal.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The data directory is the only unrecoverable startup dependency.
	store, err := history.NewStore()
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewBus()
	service := core.NewService(cfg, store, bus)

	settings := cfg.Settings()
	listener, err := hotkey.Listen(settings.Hotkey)
	if err != nil {
		// Non-fatal: the in-app binding still shows the popup.
		log.Printf("Hotkey unavailable: %v", err)
		service.AddSystemNotice(fmt.Sprintf("Global hotkey %q unavailable: %v. Use ctrl+t inside the app.", settings.Hotkey, err))
		listener = nil
	} else {
		service.AddSystemNotice(fmt.Sprintf("Global hotkey registered (%s): %s", listener.Kind(), listener.Combo()))
	}

	if !service.IsReady() {
		log.Printf("No API key configured; chat disabled until one is set")
	}

	disp := dispatcher.NewEventDispatcher(bus, listener)

	ctl := popup.New()
	ctl.OnShown = func() {
		// Entering Shown re-requests the transcript so the popup always
		// renders current conversation state.
		if err := bus.SendToCore(eventbus.RefreshEvent{}); err != nil {
			log.Printf("Error requesting refresh: %v", err)
		}
	}

	model := &AppModel{
		appModel:   initialAppModel(cfg, service, listener),
		popup:      ctl,
		dispatcher: disp,
	}

	return &Application{
		config:   cfg,
		bus:      bus,
		service:  service,
		listener: listener,
		model:    model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Stop releases everything the process holds globally; the hotkey
// unregistration in particular must happen before exit.
func (app *Application) Stop() {
	app.service.Stop()
	if app.listener != nil {
		app.listener.Close()
	}
	app.bus.Close()
}

func initialAppModel(cfg *config.Config, service *core.Service, listener *hotkey.Listener) models.AppModel {
	settings := cfg.Settings()

	desc := "disabled"
	if listener != nil {
		desc = listener.Combo().String()
	}

	return models.AppModel{
		Messages:   make([]models.Message, 0), // core pushes the transcript
		Status:     "Ready",
		Model:      cfg.GetModel(),
		Models:     modelChoices(cfg),
		ShowSystem: settings.ShowSystem,
		ChatReady:  service.IsReady(),
		HotkeyDesc: desc,
	}
}

// modelChoices is the in-UI switcher list: the configured model first, then
// the stock options it may not include.
func modelChoices(cfg *config.Config) []string {
	choices := []string{cfg.GetModel()}
	for _, m := range []string{"gpt-4o-mini", "gpt-5", "o4-mini"} {
		if m != cfg.GetModel() {
			choices = append(choices, m)
		}
	}
	return choices
}
