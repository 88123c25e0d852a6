package app

import (
	"testing"
	"time"

	"github.com/Rorical/QuickPane/internal/dispatcher"
	"github.com/Rorical/QuickPane/internal/eventbus"
	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/internal/popup"
	"github.com/Rorical/QuickPane/internal/update"
)

func newTestModel() *AppModel {
	return &AppModel{
		appModel:   models.AppModel{Status: "Ready"},
		popup:      popup.New(),
		dispatcher: dispatcher.NewEventDispatcher(eventbus.NewBus(), nil),
	}
}

// settle drives the frame loop the way the running program does, through
// Update, until the popup comes to rest.
func settle(t *testing.T, m *AppModel) {
	t.Helper()
	for i := 0; m.popup.Animating(); i++ {
		if i > 10*popup.FPS {
			t.Fatal("popup never settled")
		}
		m.Update(update.FrameMsg(time.Time{}))
	}
}

func TestAppModel_ToggleMsgShowsPopup(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(update.ToggleMsg{})
	if m.popup.State() != popup.Appearing {
		t.Fatalf("state after toggle = %v, want Appearing", m.popup.State())
	}
	if cmd == nil {
		t.Fatal("toggle scheduled no follow-up commands")
	}

	settle(t, m)
	if m.popup.State() != popup.Shown {
		t.Fatalf("state after settling = %v, want Shown", m.popup.State())
	}
}

func TestAppModel_ToggleMsgBurstCoalesces(t *testing.T) {
	m := newTestModel()

	// A burst of hotkey triggers while the popup is still in flight: the
	// first starts the transition, the second queues one reversal, the rest
	// are dropped.
	m.Update(update.ToggleMsg{})
	m.Update(update.ToggleMsg{})
	m.Update(update.ToggleMsg{})

	settle(t, m)
	if m.popup.State() != popup.Hidden {
		t.Fatalf("state after burst = %v, want Hidden", m.popup.State())
	}
}
