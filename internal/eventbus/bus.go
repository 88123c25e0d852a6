// Package eventbus carries typed events between the UI event loop and the
// core chat service. Background producers never touch UI state directly;
// everything crosses this bus and is applied by the owning goroutine.
package eventbus

import (
	"errors"
	"sync"

	"github.com/Rorical/QuickPane/internal/models"
)

// ErrClosed is returned by sends after Close. Late producers (a stream pump
// finishing during shutdown) treat it as a signal to stop, not a failure.
var ErrClosed = errors.New("event bus is closed")

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// SubmitEvent - UI asks core to send the user's input to the model
type SubmitEvent struct {
	Text string
}

func (e SubmitEvent) UIEvent() {}

// ClearHistoryEvent - UI asks core to drop the conversation, in memory and
// on disk. Safe to send while a response is streaming; the late result is
// discarded.
type ClearHistoryEvent struct{}

func (e ClearHistoryEvent) UIEvent() {}

// SwitchModelEvent - UI changed the selected model; effective next submit
type SwitchModelEvent struct {
	Model string
}

func (e SwitchModelEvent) UIEvent() {}

// RefreshEvent - UI wants a full state push (sent when the popup is shown)
type RefreshEvent struct{}

func (e RefreshEvent) UIEvent() {}

// StateUpdateEvent - Core pushes its current transcript and status to the UI
type StateUpdateEvent struct {
	Messages []models.Message
	Status   models.GenerationStatus
	Model    string
	Err      error
}

func (e StateUpdateEvent) CoreEvent() {}

// Bus joins the two domains with buffered channels. Sends never block: a
// full channel is an error the caller reports instead of stalling its event
// loop.
type Bus struct {
	uiToCore  chan UIEvent
	coreToUI  chan CoreEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewBus() *Bus {
	return &Bus{
		uiToCore: make(chan UIEvent, 100),
		coreToUI: make(chan CoreEvent, 100),
		done:     make(chan struct{}),
	}
}

func (b *Bus) SendToCore(event UIEvent) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.uiToCore <- event:
		return nil
	default:
		return errors.New("UI to Core channel is full")
	}
}

func (b *Bus) SendToUI(event CoreEvent) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.coreToUI <- event:
		return nil
	default:
		return errors.New("Core to UI channel is full")
	}
}

func (b *Bus) UIToCore() <-chan UIEvent {
	return b.uiToCore
}

func (b *Bus) CoreToUI() <-chan CoreEvent {
	return b.coreToUI
}

// Done is closed when the bus shuts down; blocked receivers select on it to
// unblock.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Close shuts the bus down without closing the event channels. Producers on
// other goroutines may still be mid-send when the app exits; they get
// ErrClosed instead of a panic. Safe to call more than once.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}
